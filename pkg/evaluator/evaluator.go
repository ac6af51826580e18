// Package evaluator implements the dice notation evaluation engine.
//
// The evaluator receives a parsed Abstract Syntax Tree (AST) from the parser
// and rolls it. It supports:
//   - Memoized evaluation: a node is rolled once and keeps its result
//   - Fresh evaluation, re-rolling every node without touching the memo
//   - Force-extreme mode, replacing every draw by the lowest or highest face
//   - Injectable random sources
//
// # Example
//
//	ev := evaluator.New(evaluator.WithRandom(roller.NewSeeded(7)))
//	result, err := ev.Eval(ctx, expr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Caching
//
// Eval fills the memo slot of every node it visits, so evaluating the same
// Expression twice returns the same rolls. EvalFresh rolls again and leaves
// the memo alone.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sandrolain/godice/pkg/roller"
	"github.com/sandrolain/godice/pkg/types"
)

// Evaluator evaluates dice expressions.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Single unwraps a result list holding exactly one value.
	Single bool
	// Raw asks callers to hand back the parsed expression instead of a
	// result. The evaluator itself ignores it.
	Raw bool
	// MaxDice caps the amount of dice a single element may roll.
	MaxDice int
	// MaxExplosions caps the dice added by exploding rolls.
	MaxExplosions int
	// ForceExtreme replaces every draw by the lowest or highest face.
	ForceExtreme types.Extreme
	// Random is the source of every draw. Defaults to roller.Default().
	Random roller.Source
	// Debug enables debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
}

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		Single:        true,
		MaxDice:       roller.DefaultMaxDice,
		MaxExplosions: roller.DefaultMaxExplosions,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Random == nil {
		options.Random = roller.Default()
	}

	return &Evaluator{
		opts:   options,
		logger: options.Logger,
	}
}

// Options returns the resolved options of the evaluator.
func (e *Evaluator) Options() EvalOptions {
	return e.opts
}

// Eval evaluates an expression, memoizing every node it rolls.
func (e *Evaluator) Eval(ctx context.Context, expr *types.Expression) (types.Value, error) {
	return e.eval(ctx, expr, true)
}

// EvalFresh evaluates an expression again, ignoring and preserving memoized
// results.
func (e *Evaluator) EvalFresh(ctx context.Context, expr *types.Expression) (types.Value, error) {
	return e.eval(ctx, expr, false)
}

func (e *Evaluator) eval(ctx context.Context, expr *types.Expression, cached bool) (types.Value, error) {
	if expr == nil || expr.AST() == nil {
		return nil, fmt.Errorf("invalid expression")
	}

	v, err := e.EvalNode(ctx, expr.Source(), expr.AST(), cached)
	if err != nil {
		return nil, err
	}
	if e.opts.Single {
		v = types.Single(v)
	}
	return v, nil
}

// EvalNode evaluates node, a tree parsed from src. Error positions refer to
// src. Single is not applied.
func (e *Evaluator) EvalNode(ctx context.Context, src string, node *types.ASTNode, cached bool) (types.Value, error) {
	r := &run{
		ctx:    ctx,
		src:    src,
		cached: cached,
		debug:  e.opts.Debug,
		logger: e.logger,
		roll: roller.New(e.opts.Random,
			roller.WithExtreme(e.opts.ForceExtreme),
			roller.WithMaxDice(e.opts.MaxDice),
			roller.WithMaxExplosions(e.opts.MaxExplosions),
		),
		maxExplosions: e.opts.MaxExplosions,
	}
	return r.eval(node)
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithSingle enables or disables unwrapping of one-element results.
func WithSingle(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Single = enabled
	}
}

// WithRaw asks for the parsed expression instead of a result.
func WithRaw(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Raw = enabled
	}
}

// WithMaxDice sets the maximum amount of dice a single element may roll.
// The default, roller.DefaultMaxDice, is a safety cap rather than a limit of
// the notation: raise it to roll larger pools.
func WithMaxDice(n int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDice = n
	}
}

// WithMaxExplosions sets the maximum number of dice exploding rolls may add.
func WithMaxExplosions(n int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxExplosions = n
	}
}

// WithForceExtreme forces every roll to its lowest or highest face.
func WithForceExtreme(x types.Extreme) EvalOption {
	return func(opts *EvalOptions) {
		opts.ForceExtreme = x
	}
}

// WithRandom sets the random source used for every draw.
func WithRandom(src roller.Source) EvalOption {
	return func(opts *EvalOptions) {
		opts.Random = src
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}
