// Package precedence builds expression parsers from an operator table.
//
// A grammar is described by an atomic parser for the primary operands and an
// ordered list of rules. The order of the list is the precedence: the first
// rule binds tightest. Each rule wraps the level built before it, so every
// level parses "operand (op operand)*" style productions over the level
// directly below, and parenthesized sub-expressions recurse to the top.
//
// # Example
//
//	g := precedence.MustNew(integer, []precedence.Rule[int]{
//	    {Op: precedence.Literal("*"), Arity: 2, Assoc: precedence.Left, Build: mul},
//	    {Op: precedence.Literal("+"), Arity: 2, Assoc: precedence.Left, Build: add},
//	})
//	v, err := g.Parse(src, tokens)
//
// Accumulation is iterative and every (level, position) pair is memoized, so
// long operator chains neither recurse per operator nor re-parse operands
// when a production backtracks.
package precedence

import (
	"errors"
	"fmt"
)

// Assoc is the associativity of a rule.
type Assoc int

const (
	Left Assoc = iota
	Right
)

// String returns the string representation of the associativity.
func (a Assoc) String() string {
	switch a {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Assoc(%d)", int(a))
	}
}

// Atom parses a primary operand at the current stream position. It reports
// ok=false without consuming input when it does not match.
type Atom[T any] func(s *Stream) (v T, ok bool, err error)

// BuildFunc turns a matched production into a node. pos is the source
// offset of the match, operands the parsed operands in order and ops the
// operator tokens that joined them.
type BuildFunc[T any] func(src string, pos int, operands []T, ops []Token) (T, error)

// Rule describes one precedence level.
type Rule[T any] struct {
	// Op matches the operator.
	Op Matcher
	// Arity is 1 for unary and 2 for binary operators.
	Arity int
	// Assoc selects postfix/prefix for unary rules and the fold direction
	// for binary ones.
	Assoc Assoc
	// Build is invoked for every matched production.
	Build BuildFunc[T]
	// Extra is an alternative operand accepted by this level only.
	Extra Atom[T]
}

// Errors returned by New for malformed rule tables.
var (
	ErrInvalidArity = errors.New("arity must be unary (1) or binary (2)")
	ErrInvalidAssoc = errors.New("associativity must be left or right")
	ErrMissingRule  = errors.New("rule needs an operator matcher and a build function")
)

// Option configures a Grammar.
type Option func(*options)

type options struct {
	maxDepth int
	open     Matcher
	close    Matcher
}

// WithMaxDepth bounds the nesting of parenthesized sub-expressions.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithParens replaces the tokens that open and close a sub-expression.
func WithParens(open, close Matcher) Option {
	return func(o *options) {
		o.open = open
		o.close = close
	}
}

// Grammar is a compiled operator precedence parser.
type Grammar[T any] struct {
	base  Atom[T]
	rules []Rule[T]
	opts  options
}

// New validates rules and builds a grammar over base.
func New[T any](base Atom[T], rules []Rule[T], opts ...Option) (*Grammar[T], error) {
	o := options{
		maxDepth: 256,
		open:     Literal("("),
		close:    Literal(")"),
	}
	for _, opt := range opts {
		opt(&o)
	}

	for i, r := range rules {
		if r.Arity < 1 || r.Arity > 2 {
			return nil, fmt.Errorf("rule %d: %w", i, ErrInvalidArity)
		}
		if r.Assoc != Left && r.Assoc != Right {
			return nil, fmt.Errorf("rule %d: %w", i, ErrInvalidAssoc)
		}
		if r.Op == nil || r.Build == nil {
			return nil, fmt.Errorf("rule %d: %w", i, ErrMissingRule)
		}
	}

	return &Grammar[T]{
		base:  base,
		rules: rules,
		opts:  o,
	}, nil
}

// MustNew is like New but panics on an invalid rule table.
func MustNew[T any](base Atom[T], rules []Rule[T], opts ...Option) *Grammar[T] {
	g, err := New(base, rules, opts...)
	if err != nil {
		panic(fmt.Sprintf("precedence: %v", err))
	}
	return g
}

// SyntaxError reports input the grammar could not match.
type SyntaxError struct {
	Offset int
	Found  Token
	Reason string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s at offset %d", e.Reason, e.Offset)
	}
	if e.Found.EOF() {
		return fmt.Sprintf("unexpected end of expression at offset %d", e.Offset)
	}
	return fmt.Sprintf("unexpected %q at offset %d", e.Found.Text, e.Offset)
}

// Parse matches the whole token slice against the grammar. tokens must end
// with an EOF token.
func (g *Grammar[T]) Parse(src string, tokens []Token) (T, error) {
	var zero T
	p := &run[T]{
		g:    g,
		s:    newStream(src, tokens),
		memo: make(map[memoKey]memoEntry[T]),
	}

	v, ok, err := p.level(len(g.rules)-1, 0)
	if err != nil {
		return zero, err
	}
	if !ok || !p.s.AtEOF() {
		return zero, p.s.syntaxError()
	}
	return v, nil
}

type memoKey struct {
	level int
	pos   int
}

type memoEntry[T any] struct {
	v   T
	ok  bool
	end int
}

type run[T any] struct {
	g    *Grammar[T]
	s    *Stream
	memo map[memoKey]memoEntry[T]
}

// level parses the production of rule i, falling back to the levels below.
// Level -1 is the primary production.
func (p *run[T]) level(i, depth int) (T, bool, error) {
	if i < 0 {
		return p.primary(depth)
	}

	key := memoKey{level: i, pos: p.s.pos}
	if m, ok := p.memo[key]; ok {
		if m.ok {
			p.s.pos = m.end
		}
		return m.v, m.ok, nil
	}

	v, ok, err := p.parseRule(i, depth)
	if err != nil {
		var zero T
		return zero, false, err
	}
	if ok {
		p.memo[key] = memoEntry[T]{v: v, ok: true, end: p.s.pos}
	} else {
		p.memo[key] = memoEntry[T]{}
	}
	return v, ok, nil
}

func (p *run[T]) primary(depth int) (T, bool, error) {
	var zero T
	start := p.s.pos

	if n, ok := p.g.opts.open(p.s.tokens, p.s.pos); ok {
		if depth >= p.g.opts.maxDepth {
			return zero, false, &SyntaxError{
				Offset: p.s.tokens[p.s.pos].Offset,
				Found:  p.s.tokens[p.s.pos],
				Reason: "expression nested too deeply",
			}
		}
		p.s.pos += n
		v, ok, err := p.level(len(p.g.rules)-1, depth+1)
		if err != nil || !ok {
			p.s.fail()
			p.s.pos = start
			return zero, false, err
		}
		n, ok = p.g.opts.close(p.s.tokens, p.s.pos)
		if !ok {
			p.s.fail()
			p.s.pos = start
			return zero, false, nil
		}
		p.s.pos += n
		return v, true, nil
	}

	v, ok, err := p.g.base(p.s)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		p.s.fail()
		p.s.pos = start
	}
	return v, ok, nil
}

// operand parses the level below rule i, or the rule's Extra alternative.
// extra reports that the operand came from the alternative.
func (p *run[T]) operand(i, depth int) (v T, ok, extra bool, err error) {
	v, ok, err = p.level(i-1, depth)
	if err != nil || ok {
		return v, ok, false, err
	}
	if x := p.g.rules[i].Extra; x != nil {
		start := p.s.pos
		v, ok, err = x(p.s)
		if err != nil {
			return v, false, false, err
		}
		if ok {
			return v, true, true, nil
		}
		p.s.fail()
		p.s.pos = start
	}
	return v, false, false, nil
}

// matchOp consumes the operator of rule i if it is next.
func (p *run[T]) matchOp(i int) (Token, bool) {
	n, ok := p.g.rules[i].Op(p.s.tokens, p.s.pos)
	if !ok {
		p.s.fail()
		return Token{}, false
	}
	tok := p.s.span(n)
	p.s.pos += n
	return tok, true
}

func (p *run[T]) parseRule(i, depth int) (T, bool, error) {
	r := p.g.rules[i]
	switch {
	case r.Arity == 1 && r.Assoc == Right:
		return p.prefix(i, depth)
	case r.Arity == 1:
		return p.postfix(i, depth)
	case r.Assoc == Right:
		return p.infixRight(i, depth)
	default:
		return p.infixLeft(i, depth)
	}
}

// prefix parses "op+ operand", applying the operators innermost first.
func (p *run[T]) prefix(i, depth int) (T, bool, error) {
	var zero T
	start := p.s.pos

	var ops []Token
	for {
		tok, ok := p.matchOp(i)
		if !ok {
			break
		}
		ops = append(ops, tok)
	}
	if len(ops) == 0 {
		return p.level(i-1, depth)
	}

	v, ok, _, err := p.operand(i, depth)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		p.s.pos = start
		return p.level(i-1, depth)
	}

	build := p.g.rules[i].Build
	for j := len(ops) - 1; j >= 0; j-- {
		v, err = build(p.s.src, ops[j].Offset, []T{v}, ops[j:j+1])
		if err != nil {
			return zero, false, err
		}
	}
	return v, true, nil
}

// postfix parses "operand op+", applying the operators left to right.
func (p *run[T]) postfix(i, depth int) (T, bool, error) {
	var zero T
	start := p.s.pos

	v, ok, extra, err := p.operand(i, depth)
	if err != nil || !ok {
		return zero, false, err
	}
	pos := p.s.tokens[start].Offset

	applied := 0
	build := p.g.rules[i].Build
	for {
		tok, ok := p.matchOp(i)
		if !ok {
			break
		}
		v, err = build(p.s.src, pos, []T{v}, []Token{tok})
		if err != nil {
			return zero, false, err
		}
		applied++
	}

	if applied == 0 && extra {
		p.s.pos = start
		return zero, false, nil
	}
	return v, true, nil
}

// pairs parses "operand (op operand)*" and returns what it found.
func (p *run[T]) pairs(i, depth int) (operands []T, ops []Token, extra bool, err error) {
	v, ok, extra, err := p.operand(i, depth)
	if err != nil || !ok {
		return nil, nil, false, err
	}
	operands = append(operands, v)

	for {
		mark := p.s.pos
		tok, ok := p.matchOp(i)
		if !ok {
			break
		}
		rhs, ok, _, err := p.operand(i, depth)
		if err != nil {
			return nil, nil, false, err
		}
		if !ok {
			p.s.pos = mark
			break
		}
		operands = append(operands, rhs)
		ops = append(ops, tok)
	}
	return operands, ops, extra, nil
}

// infixLeft parses "operand (op operand)+" and hands the flat operand list
// to a single Build call.
func (p *run[T]) infixLeft(i, depth int) (T, bool, error) {
	var zero T
	start := p.s.pos

	operands, ops, extra, err := p.pairs(i, depth)
	if err != nil || operands == nil {
		return zero, false, err
	}
	if len(ops) == 0 {
		if extra {
			p.s.pos = start
			return zero, false, nil
		}
		return operands[0], true, nil
	}

	v, err := p.g.rules[i].Build(p.s.src, p.s.tokens[start].Offset, operands, ops)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// infixRight parses "operand (op operand)+" and folds it from the right.
func (p *run[T]) infixRight(i, depth int) (T, bool, error) {
	var zero T
	start := p.s.pos

	operands, ops, extra, err := p.pairs(i, depth)
	if err != nil || operands == nil {
		return zero, false, err
	}
	if len(ops) == 0 {
		if extra {
			p.s.pos = start
			return zero, false, nil
		}
		return operands[0], true, nil
	}

	build := p.g.rules[i].Build
	v := operands[len(operands)-1]
	for j := len(ops) - 1; j >= 0; j-- {
		v, err = build(p.s.src, ops[j].Offset, []T{operands[j], v}, ops[j:j+1])
		if err != nil {
			return zero, false, err
		}
	}
	return v, true, nil
}
