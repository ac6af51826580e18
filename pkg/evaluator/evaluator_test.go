package evaluator

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/godice/pkg/parser"
	"github.com/sandrolain/godice/pkg/roller"
	"github.com/sandrolain/godice/pkg/types"
)

func compile(t *testing.T, src string) *types.Expression {
	t.Helper()
	expr, err := parser.Parse(src)
	require.NoError(t, err, "parse %q", src)
	return expr
}

func evaluate(t *testing.T, src string, opts ...EvalOption) (types.Value, error) {
	t.Helper()
	opts = append([]EvalOption{WithRandom(roller.NewSeeded(1))}, opts...)
	return New(opts...).Eval(context.Background(), compile(t, src))
}

func requireCode(t *testing.T, err error, code types.ErrorCode, pos int) {
	t.Helper()
	var derr *types.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, code, derr.Code, derr.Message)
	assert.Equal(t, pos, derr.Position)
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"1 + 2 * 3", 7},
		{"16 / 8 * 4 + 2 - 1", 9},
		{"16 - 8 + 4 * 2 / 1", 16},
		{"10 - 3 + 2", 9},
		{"2 * 3 * 4", 24},
		{"100 / 5 / 2", 10},
		{"7 / 2", 3},
		{"-7 / 2", -4},
		{"7 / -2", -4},
		{"-7 % 3", 2},
		{"7 % -3", -2},
		{"1d1+1d1+1d1", 3},
		{"1d1-1d1-1d1", -1},
		{"1d1*1d1", 1},
		{"1d1/1d1", 1},
		{"2d1 * 3", 6},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := evaluate(t, tt.src)
			require.NoError(t, err)
			assert.Equal(t, types.Integer(tt.want), got)
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	tests := []struct {
		src string
		pos int
	}{
		{"1/0", 2},
		{"1/(0*1)", 3},
		{"5%0", 2},
		{"4/2/0", 4},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := evaluate(t, tt.src)
			requireCode(t, err, types.ErrDivisionByZero, tt.pos)
		})
	}
}

func TestIntegerOverflow(t *testing.T) {
	tests := []struct {
		src string
		pos int
	}{
		{"2d6*4611686018427387904*4", 4},
		{"9223372036854775807 + 1", 22},
		{"0 - 9223372036854775807 - 2", 26},
		{"(0-9223372036854775807-1)/(0-1)", 27},
		{"(1,9223372036854775807).+1", 25},
		{"(9223372036854775807,1)t", 1},
		{"-(0-9223372036854775807-1)", 2},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := evaluate(t, tt.src)
			requireCode(t, err, types.ErrIntegerOverflow, tt.pos)
		})
	}

	got, err := evaluate(t, "0 - 9223372036854775807 - 1")
	require.NoError(t, err)
	assert.Equal(t, types.Integer(math.MinInt), got)
}

func TestCachedEvaluation(t *testing.T) {
	ev := New(WithRandom(roller.NewSeeded(1)))
	expr := compile(t, "10d1000")

	first, err := ev.Eval(context.Background(), expr)
	require.NoError(t, err)
	second, err := ev.Eval(context.Background(), expr)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	fresh, err := ev.EvalFresh(context.Background(), expr)
	require.NoError(t, err)
	assert.NotEqual(t, types.Ints(first), types.Ints(fresh))

	again, err := ev.Eval(context.Background(), expr)
	require.NoError(t, err)
	assert.Equal(t, first, again, "fresh evaluation must not overwrite the memo")
}

func TestEvaluatedOperands(t *testing.T) {
	expr := compile(t, "4d6h3")
	_, err := New().Eval(context.Background(), expr)
	require.NoError(t, err)

	evaluated := expr.AST().Evaluated
	require.Len(t, evaluated, 2)
	assert.IsType(t, types.Roll{}, evaluated[0])
	assert.Equal(t, types.Integer(3), evaluated[1])

	dice := expr.AST().Operands[0]
	assert.Equal(t, []types.Value{types.Integer(4), types.Integer(6)}, dice.Evaluated)
}

func TestForceExtreme(t *testing.T) {
	tests := []struct {
		src      string
		min, max int
	}{
		{"3d6", 3, 18},
		{"d%", 1, 100},
		{"4dF", -4, 4},
		{"2u3", -6, 6},
		{"3w6", 3, 18},
		{"4d6h3", 3, 18},
		{"2d6x", 2, 12},
		{"(2d6)d6", 2, 72},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			lo, err := evaluate(t, tt.src, WithForceExtreme(types.ExtremeMin))
			require.NoError(t, err)
			assert.Equal(t, tt.min, lo.Sum())

			hi, err := evaluate(t, tt.src, WithForceExtreme(types.ExtremeMax))
			require.NoError(t, err)
			assert.Equal(t, tt.max, hi.Sum())
		})
	}
}

func TestRollBounds(t *testing.T) {
	ev := New(WithRandom(roller.NewSeeded(42)))
	tests := []struct {
		src      string
		min, max int
	}{
		{"4dF", -1, 1},
		{"6d6", 1, 6},
		{"5u2", -2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			expr := compile(t, tt.src)
			for i := 0; i < 100; i++ {
				v, err := ev.EvalFresh(context.Background(), expr)
				require.NoError(t, err)
				roll, ok := v.(types.Roll)
				require.True(t, ok, "got %T", v)
				assert.Equal(t, tt.min, roll.Min)
				assert.Equal(t, tt.max, roll.Max)
				for _, x := range roll.Values {
					assert.GreaterOrEqual(t, x, tt.min)
					assert.LessOrEqual(t, x, tt.max)
				}
			}
		})
	}
}

func TestRandomElementErrors(t *testing.T) {
	tests := []struct {
		src  string
		opts []EvalOption
		code types.ErrorCode
		pos  int
	}{
		{"10d6", []EvalOption{WithMaxDice(5)}, types.ErrTooManyDice, 0},
		{"(-1)d6", nil, types.ErrNegativeAmount, 1},
		{"1d(1-1)", nil, types.ErrInvertedRange, 3},
		{"2u(0-1)", nil, types.ErrInvertedRange, 3},
		{"1u4611686018427387904", nil, types.ErrRangeTooLarge, 2},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := evaluate(t, tt.src, tt.opts...)
			requireCode(t, err, tt.code, tt.pos)
		})
	}
}

func TestSelection(t *testing.T) {
	tests := []struct {
		src  string
		want []int
	}{
		{"(1,5,3,2,4)h2", []int{4, 5}},
		{"(1,5,3,2,4)h", []int{2, 3, 4, 5}},
		{"(1,5,3,2,4)h-1", []int{2, 3, 4, 5}},
		{"(1,5,3,2,4)h9", []int{1, 2, 3, 4, 5}},
		{"(1,5,3,2,4)h0", []int{}},
		{"(1,5,3,2,4)l2", []int{1, 2}},
		{"(1,5,3,2,4)l", []int{1, 2, 3, 4}},
		{"(1,5,3,2,4)o3", []int{2, 3, 4}},
		{"(1,5,3,2,4)o", []int{2, 3, 4}},
		{"(1,5,3,2,4)o2", []int{2, 3}},
		{"(1,5)o", []int{5}},
		{"(3,1,2)s", []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := evaluate(t, tt.src, WithSingle(false))
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, types.Ints(got))
		})
	}
}

func TestSelectionKeepsRoll(t *testing.T) {
	got, err := evaluate(t, "4d6h3")
	require.NoError(t, err)
	roll, ok := got.(types.Roll)
	require.True(t, ok, "got %T", got)
	assert.Len(t, roll.Values, 3)
	assert.Equal(t, 6, roll.Max)
}

func TestSortOrder(t *testing.T) {
	got, err := evaluate(t, "(3,1,2)s")
	require.NoError(t, err)
	assert.Equal(t, types.IntegerList{1, 2, 3}, got)

	scalar, err := evaluate(t, "5s")
	require.NoError(t, err)
	assert.Equal(t, types.Integer(5), scalar)
}

func TestSuccesses(t *testing.T) {
	tests := []struct {
		src  string
		opts []EvalOption
		want int
	}{
		{"(1,5,6,2)e5", nil, 2},
		{"(1,5,6,2)f5", nil, 1},
		{"5e3", nil, 1},
		{"4d6e5", []EvalOption{WithForceExtreme(types.ExtremeMax)}, 4},
		{"4d6f5", []EvalOption{WithForceExtreme(types.ExtremeMin)}, -4},
		{"4d6f1", []EvalOption{WithForceExtreme(types.ExtremeMin)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := evaluate(t, tt.src, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, types.Integer(tt.want), got)
		})
	}
}

func TestExplode(t *testing.T) {
	got, err := evaluate(t, "10d6x")
	require.NoError(t, err)
	roll, ok := got.(types.Roll)
	require.True(t, ok, "got %T", got)

	sixes := 0
	for _, v := range roll.Values[:10] {
		if v == 6 {
			sixes++
		}
	}
	assert.GreaterOrEqual(t, len(roll.Values), 10+sixes)
}

func TestRerolls(t *testing.T) {
	tests := []struct {
		src  string
		opts []EvalOption
		want int
	}{
		{"4d6r1", []EvalOption{WithForceExtreme(types.ExtremeMin)}, 4},
		{"4d6rr1", []EvalOption{WithForceExtreme(types.ExtremeMin)}, 8},
		{"4d6rr", []EvalOption{WithForceExtreme(types.ExtremeMin)}, 8},
		{"4d6rr3", []EvalOption{WithForceExtreme(types.ExtremeMax)}, 24},
		{"1d1r", nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := evaluate(t, tt.src, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Sum())
		})
	}
}

func TestAgain(t *testing.T) {
	got, err := evaluate(t, "(6,2,6)a6")
	require.NoError(t, err)
	assert.Equal(t, types.IntegerList{6, 6, 2, 6, 6}, got)

	maxed, err := evaluate(t, "2d6a", WithForceExtreme(types.ExtremeMax))
	require.NoError(t, err)
	assert.Equal(t, []int{6, 6, 6, 6}, types.Ints(maxed))
	assert.IsType(t, types.Roll{}, maxed)
}

func TestArrays(t *testing.T) {
	tests := []struct {
		src  string
		want types.Value
	}{
		{"1, 2, 3", types.IntegerList{1, 2, 3}},
		{"1d1, 2d1", types.IntegerList{1, 2}},
		{"1,2|3", types.IntegerList{1, 2, 3}},
		{"3d1|2", types.IntegerList{1, 1, 1, 2}},
		{"(1,2).+1", types.IntegerList{2, 3}},
		{"(1,2).-1", types.IntegerList{0, 1}},
		{"(1,2,3)t", types.Integer(6)},
		{"+-(1,2,3)", types.IntegerList{-1, 2, -3}},
		{"+-3", types.Integer(-3)},
		{"+-4", types.Integer(4)},
		{"-(1,2)", types.IntegerList{-1, -2}},
		{"-d1", types.Integer(-1)},
		{"+5", types.Integer(5)},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := evaluate(t, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSingle(t *testing.T) {
	got, err := evaluate(t, "1d1")
	require.NoError(t, err)
	assert.Equal(t, types.Integer(1), got)

	kept, err := evaluate(t, "1d1", WithSingle(false))
	require.NoError(t, err)
	assert.IsType(t, types.Roll{}, kept)
}

func TestOperatorErrors(t *testing.T) {
	tests := []struct {
		src  string
		opts []EvalOption
		code types.ErrorCode
		pos  int
	}{
		{"6d6x1", nil, types.ErrExplodeThreshold, 4},
		{"1d1x", nil, types.ErrExplodeThreshold, 0},
		{"1000d1000x2", nil, types.ErrTooManyExplosions, 0},
		{"5x", nil, types.ErrNotARoll, 0},
		{"5r1", nil, types.ErrNotARoll, 0},
		{"5a", nil, types.ErrNotARoll, 0},
		{"4d6rr6", nil, types.ErrRerollThreshold, 5},
		{"1d1rr", nil, types.ErrRerollThreshold, 0},
		{"4d6e7", nil, types.ErrSuccessThreshold, 4},
		{"5h1", nil, types.ErrNotASequence, 0},
		{"3.+1", nil, types.ErrNotASequence, 0},
		{"4d(1d6)e3", nil, types.ErrNestedDice, 0},
		{"4d(1d6)x", nil, types.ErrNestedDice, 0},
		{"4d(1d6)a", nil, types.ErrNestedDice, 0},
		{"4d(1d6)rr1", nil, types.ErrNestedDice, 0},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := evaluate(t, tt.src, tt.opts...)
			requireCode(t, err, tt.code, tt.pos)
		})
	}
}

func TestErrorSource(t *testing.T) {
	_, err := evaluate(t, "1/0")
	var derr *types.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "1/0", derr.Source)
	assert.Equal(t, types.KindFatal, derr.Kind())
}

func TestContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Eval(ctx, compile(t, "1d6"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestInvalidExpression(t *testing.T) {
	_, err := New().Eval(context.Background(), nil)
	require.Error(t, err)
}

func TestDefaultOptions(t *testing.T) {
	opts := New().Options()
	assert.True(t, opts.Single)
	assert.False(t, opts.Raw)
	assert.Equal(t, roller.DefaultMaxDice, opts.MaxDice)
	assert.Equal(t, roller.DefaultMaxExplosions, opts.MaxExplosions)
	assert.Equal(t, types.ExtremeNone, opts.ForceExtreme)
	assert.NotNil(t, opts.Random)
	assert.NotNil(t, opts.Logger)
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := evaluate(t, "1d1+2", WithDebug(true), WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(buf.String(), "evaluated node"))
	assert.Contains(t, buf.String(), "type=Dice")

	buf.Reset()
	_, err = evaluate(t, "1d1+2", WithLogger(logger))
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestFloorHelpers(t *testing.T) {
	tests := []struct {
		a, b     int
		div, mod int
	}{
		{7, 2, 3, 1},
		{-7, 2, -4, 1},
		{7, -2, -4, -1},
		{-7, -2, 3, -1},
		{6, 3, 2, 0},
		{-6, 3, -2, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.div, floorDiv(tt.a, tt.b), "floorDiv(%d, %d)", tt.a, tt.b)
		assert.Equal(t, tt.mod, floorMod(tt.a, tt.b), "floorMod(%d, %d)", tt.a, tt.b)
	}
}

func TestCheckedHelpers(t *testing.T) {
	tests := []struct {
		name string
		fn   func(a, b int) (int, bool)
		a, b int
		want int
		ok   bool
	}{
		{"add", addInt, 2, 3, 5, true},
		{"add max", addInt, math.MaxInt, 1, 0, false},
		{"add min", addInt, math.MinInt, -1, 0, false},
		{"sub", subInt, 2, 3, -1, true},
		{"sub min", subInt, -1, math.MinInt, math.MaxInt, true},
		{"sub min overflow", subInt, 0, math.MinInt, 0, false},
		{"mul", mulInt, -4, 5, -20, true},
		{"mul zero", mulInt, 0, math.MinInt, 0, true},
		{"mul overflow", mulInt, 1 << 62, 2, 0, false},
		{"mul min by -1", mulInt, math.MinInt, -1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.fn(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
