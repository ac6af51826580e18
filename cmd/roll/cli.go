package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/sandrolain/godice"
	"github.com/sandrolain/godice/internal/config"
	"github.com/sandrolain/godice/pkg/evaluator"
	"github.com/sandrolain/godice/pkg/format"
	"github.com/sandrolain/godice/pkg/parser"
	"github.com/sandrolain/godice/pkg/roller"
	"github.com/sandrolain/godice/pkg/types"
)

const description = `
Roll dice written in dice notation, e.g. "4d6h3", "2d6 + 3" or "d%".

Several expressions may be separated by ";", each result is printed on its
own line.
`

// CLI holds the flags of the roll command.
type CLI struct {
	Expression []string `arg:"" help:"Dice expression."`

	Min           bool             `help:"Roll the lowest possible result." xor:"extreme"`
	Max           bool             `help:"Roll the highest possible result." xor:"extreme"`
	MaxDice       int              `help:"Maximum number of dice rolled at once." default:"${max_dice}"`
	MaxExplosions int              `help:"Maximum number of dice added by exploding rolls." default:"${max_explosions}"`
	Seed          int64            `help:"Seed of the random source, 0 picks one." default:"${seed}"`
	Verbose       bool             `short:"v" help:"Show how the result was rolled."`
	AST           bool             `name:"ast" help:"Print the parsed tree instead of rolling."`
	Version       kong.VersionFlag `short:"V" help:"Show the version."`
}

// Validate checks the limits.
func (c *CLI) Validate() error {
	if c.MaxDice < 0 {
		return errors.New("--max-dice must not be negative")
	}
	if c.MaxExplosions < 0 {
		return errors.New("--max-explosions must not be negative")
	}
	return nil
}

// newParser builds the command line parser, taking flag defaults from cfg.
func newParser(cli *CLI, cfg config.Roll, opts ...kong.Option) (*kong.Kong, error) {
	opts = append([]kong.Option{
		kong.Name("roll"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Vars{
			"max_dice":       strconv.Itoa(cfg.MaxDice),
			"max_explosions": strconv.Itoa(cfg.MaxExplosions),
			"seed":           strconv.FormatInt(cfg.Seed, 10),
			"version":        "roll " + godice.Version(),
		},
	}, opts...)
	return kong.New(cli, opts...)
}

// Run rolls the expressions and writes one result per line to out.
func (c *CLI) Run(ctx context.Context, out io.Writer, logger *slog.Logger) error {
	exprs, err := parser.ParseAll(strings.Join(c.Expression, " "))
	if err != nil {
		return err
	}

	if c.AST {
		p := repr.New(out, repr.Indent("  "), repr.OmitEmpty(true), repr.IgnorePrivate())
		for _, expr := range exprs {
			p.Println(expr.AST())
		}
		return nil
	}

	seed := c.Seed
	if seed == 0 {
		if seed, err = roller.NewSeed(); err != nil {
			return fmt.Errorf("pick seed: %w", err)
		}
	}
	logger.Debug("rolling", "expressions", len(exprs), "seed", seed)

	opts := []evaluator.EvalOption{
		godice.WithMaxDice(c.MaxDice),
		godice.WithMaxExplosions(c.MaxExplosions),
		godice.WithRandom(roller.NewSeeded(seed)),
		godice.WithLogger(logger),
		godice.WithDebug(logger.Enabled(ctx, slog.LevelDebug)),
	}
	switch {
	case c.Min:
		opts = append(opts, godice.WithForceExtreme(types.ExtremeMin))
	case c.Max:
		opts = append(opts, godice.WithForceExtreme(types.ExtremeMax))
	}

	ev := evaluator.New(opts...)
	for _, expr := range exprs {
		result, err := ev.Eval(ctx, expr)
		if err != nil {
			return err
		}
		if c.Verbose {
			fmt.Fprintln(out, format.Verbose(expr.AST()))
			fmt.Fprint(out, "Result: ")
		}
		fmt.Fprintln(out, result)
	}
	return nil
}

// report writes err to w, with a caret under the offending part of the
// expression when there is one.
func report(w io.Writer, err error) {
	var derr *types.Error
	if !errors.As(err, &derr) {
		fmt.Fprintf(w, "roll: error: %v\n", err)
		return
	}
	fmt.Fprintln(w, types.PrettyPrint(derr))
	fmt.Fprintf(w, "roll: %s: %s (%s)\n", derr.Kind(), derr.Message, derr.Code)
}
