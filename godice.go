// Package godice rolls dice written in tabletop dice notation.
//
// Expressions combine dice with arithmetic and post-roll operators:
//   - 4d6h3: roll four six-sided dice and keep the highest three
//   - d%: roll one hundred-sided die
//   - 2d6rr1 + 3: reroll ones until they are gone, then add three
//   - 4dF - 2: roll four fudge dice
//   - 3w6: roll wild dice
//
// # Quick Start
//
//	// Simple roll
//	result, err := godice.Roll("4d6h3")
//
//	// Lowest and highest possible results
//	lo, _ := godice.RollMin("2d6+3")
//	hi, _ := godice.RollMax("2d6+3")
//
//	// Reproducible rolls
//	result, err := godice.Roll("10d10x",
//	    godice.WithRandom(roller.NewSeeded(42)),
//	)
//
// # Results
//
// Roll returns a types.Value: a types.Integer, a types.IntegerList or a
// types.Roll. A list holding a single value is returned as an Integer unless
// WithSingle(false) is given. WithRaw(true) returns the parsed
// *types.Expression instead of rolling it.
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/sandrolain/godice/pkg/parser
//   - Evaluator: github.com/sandrolain/godice/pkg/evaluator
//   - Roll engine: github.com/sandrolain/godice/pkg/roller
//   - Types: github.com/sandrolain/godice/pkg/types
package godice

import (
	"context"
	"fmt"

	"github.com/sandrolain/godice/pkg/evaluator"
	"github.com/sandrolain/godice/pkg/parser"
	"github.com/sandrolain/godice/pkg/types"
)

// Version returns the current version of godice.
func Version() string {
	return "v0.1.0-dev"
}

// Evaluation options.
var (
	WithSingle        = evaluator.WithSingle
	WithRaw           = evaluator.WithRaw
	WithMaxDice       = evaluator.WithMaxDice
	WithMaxExplosions = evaluator.WithMaxExplosions
	WithForceExtreme  = evaluator.WithForceExtreme
	WithRandom        = evaluator.WithRandom
	WithLogger        = evaluator.WithLogger
	WithDebug         = evaluator.WithDebug
)

// Compile parses a dice expression for repeated rolling.
//
// Example:
//
//	expr, err := godice.Compile("4d6h3")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ev := evaluator.New()
//	first, _ := ev.EvalFresh(ctx, expr)
//	second, _ := ev.EvalFresh(ctx, expr)
func Compile(expression string, opts ...parser.CompileOption) (*types.Expression, error) {
	return parser.Compile(expression, opts...)
}

// MustCompile is like Compile but panics if the expression cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(expression string) *types.Expression {
	expr, err := Compile(expression)
	if err != nil {
		panic(fmt.Sprintf("godice: Compile(%q): %v", expression, err))
	}
	return expr
}

// Roll parses and rolls expression.
//
// Errors are *types.Error values pointing at the part of the expression
// responsible; types.PrettyPrint renders them.
//
// Example:
//
//	result, err := godice.Roll("2d6+3")
func Roll(expression string, opts ...evaluator.EvalOption) (interface{}, error) {
	return RollWithContext(context.Background(), expression, opts...)
}

// RollWithContext is like Roll with a custom context.
func RollWithContext(ctx context.Context, expression string, opts ...evaluator.EvalOption) (interface{}, error) {
	expr, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	return rollExpr(ctx, evaluator.New(opts...), expr)
}

// RollMin returns the lowest result expression can produce.
func RollMin(expression string, opts ...evaluator.EvalOption) (interface{}, error) {
	return Roll(expression, append(opts, WithForceExtreme(types.ExtremeMin))...)
}

// RollMax returns the highest result expression can produce.
func RollMax(expression string, opts ...evaluator.EvalOption) (interface{}, error) {
	return Roll(expression, append(opts, WithForceExtreme(types.ExtremeMax))...)
}

// RollAll rolls every ";" separated expression in order and returns one
// result per expression. Every expression is parsed before any is rolled.
func RollAll(expressions string, opts ...evaluator.EvalOption) ([]interface{}, error) {
	exprs, err := parser.ParseAll(expressions)
	if err != nil {
		return nil, err
	}

	ev := evaluator.New(opts...)
	results := make([]interface{}, 0, len(exprs))
	for _, expr := range exprs {
		v, err := rollExpr(context.Background(), ev, expr)
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, nil
}

func rollExpr(ctx context.Context, ev *evaluator.Evaluator, expr *types.Expression) (interface{}, error) {
	if ev.Options().Raw {
		return expr, nil
	}
	return ev.Eval(ctx, expr)
}
