// Package parser parses dice notation into an AST.
//
// Parsing happens in two stages:
//   - Tokenize splits the expression into integers, letters and punctuation
//   - the dice grammar, an operator precedence table, turns the tokens into
//     an Abstract Syntax Tree, resolving dice separators through a registry
//
// # Example
//
//	expr, err := parser.Parse("4d6h3")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ast := expr.AST()
//
// Several expressions may be given at once, separated by ";", with ParseAll.
package parser

import (
	"errors"
	"fmt"

	"github.com/sandrolain/godice/pkg/dice"
	"github.com/sandrolain/godice/pkg/precedence"
	"github.com/sandrolain/godice/pkg/types"
)

const defaultMaxDepth = 256

var defaultGrammar = func() *precedence.Grammar[node] {
	g, err := newGrammar(dice.Default, defaultMaxDepth)
	if err != nil {
		panic(fmt.Sprintf("parser: %v", err))
	}
	return g
}()

// Parse parses a dice notation expression and returns the compiled Expression.
//
// If parsing fails, it returns a *types.Error with position information.
//
// Example:
//
//	expr, err := parser.Parse("2d6+3")
//	if err != nil {
//	    fmt.Println(types.PrettyPrint(err.(*types.Error)))
//	    return
//	}
func Parse(query string) (*types.Expression, error) {
	return Compile(query)
}

// Compile parses query with the given options.
func Compile(query string, opts ...CompileOption) (*types.Expression, error) {
	g, err := grammarFor(opts)
	if err != nil {
		return nil, err
	}
	tokens, err := Tokenize(query)
	if err != nil {
		return nil, err
	}
	return parseTokens(g, query, tokens)
}

// ParseAll parses ";" separated expressions. Every expression keeps its own
// source text, so error positions are relative to that expression.
func ParseAll(query string, opts ...CompileOption) ([]*types.Expression, error) {
	g, err := grammarFor(opts)
	if err != nil {
		return nil, err
	}
	tokens, err := Tokenize(query)
	if err != nil {
		return nil, err
	}

	var exprs []*types.Expression
	start := 0
	for i, tok := range tokens {
		if !tok.EOF() && (tok.Kind != precedence.TokenPunct || tok.Text != ";") {
			continue
		}
		segment := tokens[start:i]
		start = i + 1
		if len(segment) == 0 {
			return nil, types.Errorf(query, tok.Offset, types.ErrEmptyExpression, "Empty expression")
		}

		from, to := segment[0].Offset, segment[len(segment)-1].End()
		rebased := make([]precedence.Token, 0, len(segment)+1)
		for _, t := range segment {
			t.Offset -= from
			rebased = append(rebased, t)
		}
		rebased = append(rebased, precedence.Token{Kind: precedence.TokenEOF, Offset: to - from})

		expr, err := parseTokens(g, query[from:to], rebased)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func parseTokens(g *precedence.Grammar[node], src string, tokens []precedence.Token) (*types.Expression, error) {
	if len(tokens) == 0 || tokens[0].EOF() {
		return nil, types.Errorf(src, len(src), types.ErrEmptyExpression, "Empty expression")
	}
	ast, err := g.Parse(src, tokens)
	if err != nil {
		return nil, parseError(src, err)
	}
	return types.NewExpression(ast, src), nil
}

func parseError(src string, err error) *types.Error {
	var derr *types.Error
	if errors.As(err, &derr) {
		if derr.Source == "" {
			derr.Source = src
		}
		return derr
	}

	var serr *precedence.SyntaxError
	if !errors.As(err, &serr) {
		return types.Errorf(src, 0, types.ErrUnexpectedToken, "%v", err).WithCause(err)
	}
	switch {
	case serr.Reason != "":
		return types.Errorf(src, serr.Offset, types.ErrNestingTooDeep,
			"Expression nested too deeply").WithToken(serr.Found.Text).WithCause(err)
	case serr.Found.EOF():
		return types.Errorf(src, serr.Offset, types.ErrUnexpectedEnd,
			"Unexpected end of expression").WithCause(err)
	default:
		return types.Errorf(src, serr.Offset, types.ErrUnexpectedToken,
			"Unexpected %q", serr.Found.Text).WithToken(serr.Found.Text).WithCause(err)
	}
}

func grammarFor(opts []CompileOption) (*precedence.Grammar[node], error) {
	if len(opts) == 0 {
		return defaultGrammar, nil
	}
	o := CompileOptions{
		MaxDepth: defaultMaxDepth,
		Registry: dice.Default,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxDepth == defaultMaxDepth && o.Registry == dice.Default {
		return defaultGrammar, nil
	}
	g, err := newGrammar(o.Registry, o.MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("build grammar: %w", err)
	}
	return g, nil
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits the nesting of parenthesized sub-expressions.
	MaxDepth int
	// Registry resolves dice separators. Defaults to dice.Default.
	Registry *dice.Registry
}

// WithMaxDepth sets the maximum parenthesis nesting depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}

// WithRegistry resolves dice separators through reg instead of dice.Default.
func WithRegistry(reg *dice.Registry) CompileOption {
	return func(opts *CompileOptions) {
		opts.Registry = reg
	}
}
