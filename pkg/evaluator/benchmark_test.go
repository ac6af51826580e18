package evaluator

// Run with:
//
//	go test -bench=. -benchmem ./pkg/evaluator/

import (
	"context"
	"testing"

	"github.com/sandrolain/godice/pkg/parser"
	"github.com/sandrolain/godice/pkg/roller"
)

var benchExpressions = map[string]string{
	"Simple":    "3d6",
	"Keep":      "4d6h3",
	"Arith":     "2d6 + 1d8 * 2 - 3",
	"Explode":   "10d6x",
	"Lists":     "(4d6h3, 4d6h3, 4d6h3, 4d6h3, 4d6h3, 4d6h3)s",
	"ManyDice":  "1000d20",
	"Successes": "20d10e7",
}

func BenchmarkParse(b *testing.B) {
	for name, src := range benchExpressions {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := parser.Parse(src); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEvalFresh(b *testing.B) {
	ctx := context.Background()
	ev := New(WithRandom(roller.NewSeeded(1)))

	for name, src := range benchExpressions {
		expr, err := parser.Parse(src)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := ev.EvalFresh(ctx, expr); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEvalCached(b *testing.B) {
	ctx := context.Background()
	expr, err := parser.Parse(benchExpressions["Lists"])
	if err != nil {
		b.Fatal(err)
	}
	ev := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ev.Eval(ctx, expr); err != nil {
			b.Fatal(err)
		}
	}
}
