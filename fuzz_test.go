package godice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandrolain/godice/pkg/types"
)

func FuzzRoll(f *testing.F) {
	seeds := []string{
		`4d6h3`,
		`d%`,
		`3w6`,
		`4dF - 2`,
		`6d6x`,
		`2d6rr1`,
		`(1,2,3).+1d4`,
		`1/0`,
		`6d6d6`,
		`99999999999d6`,
		``,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_, err := RollWithContext(ctx, input, WithMaxDice(1000), WithMaxExplosions(1000))
		if err == nil || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		var derr *types.Error
		if !errors.As(err, &derr) {
			t.Fatalf("Roll(%q) error %v is not a *types.Error", input, err)
		}
		if derr.Position < 0 || derr.Position > len(input) {
			t.Fatalf("Roll(%q) error position %d out of range", input, derr.Position)
		}
	})
}
