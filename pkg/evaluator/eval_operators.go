package evaluator

import (
	"math"
	"slices"

	"github.com/sandrolain/godice/pkg/types"
)

// evalArithmetic folds integer operands from the left. Results that do not
// fit in an int fail at the operand that overflowed.
func (r *run) evalArithmetic(node *types.ASTNode, operands []types.Value) (types.Value, error) {
	acc := operands[0].Sum()
	for i, operand := range operands[1:] {
		x := operand.Sum()
		ok := true
		switch node.Type {
		case types.NodeAdd:
			acc, ok = addInt(acc, x)
		case types.NodeSub:
			acc, ok = subInt(acc, x)
		case types.NodeMul:
			acc, ok = mulInt(acc, x)
		case types.NodeDiv, types.NodeMod:
			if x == 0 {
				zero := node.Operands[i+1]
				return nil, types.Errorf(r.src, zero.Position, types.ErrDivisionByZero,
					"Division by zero").WithToken(zero.String())
			}
			if node.Type == types.NodeDiv {
				ok = acc != math.MinInt || x != -1
				acc = floorDiv(acc, x)
			} else {
				acc = floorMod(acc, x)
			}
		}
		if !ok {
			return nil, r.overflow(node.Operands[i+1])
		}
	}
	return types.Integer(acc), nil
}

func addInt(a, b int) (int, bool) {
	c := a + b
	return c, (c > a) == (b > 0)
}

func subInt(a, b int) (int, bool) {
	if b == math.MinInt {
		return a - b, a < 0
	}
	return addInt(a, -b)
}

func mulInt(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) || c/b != a {
		return c, false
	}
	return c, true
}

// floorDiv divides rounding towards negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// floorMod returns a remainder with the sign of b.
func floorMod(a, b int) int {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

// withValues replaces the values of v, keeping it a Roll when it was one.
func withValues(v types.Value, values []int) types.Value {
	if roll, ok := v.(types.Roll); ok {
		return roll.WithValues(values)
	}
	return types.IntegerList(values)
}

func evalSort(v types.Value) types.Value {
	seq, ok := v.(types.Sequence)
	if !ok {
		return v
	}
	sorted := slices.Clone(seq.Ints())
	slices.Sort(sorted)
	return withValues(v, sorted)
}

func evalExtend(operands []types.Value) types.Value {
	out := types.IntegerList{}
	for _, operand := range operands {
		out = append(out, types.Ints(operand)...)
	}
	return out
}

func (r *run) evalArray(node *types.ASTNode, operands []types.Value) (types.Value, error) {
	out := make(types.IntegerList, len(operands))
	for i, operand := range operands {
		total, err := r.sum(node.Operands[i], operand)
		if err != nil {
			return nil, err
		}
		out[i] = total
	}
	return out, nil
}

func (r *run) evalArrayArithmetic(node *types.ASTNode, operands []types.Value) (types.Value, error) {
	seq, err := r.sequence(node, operands[0])
	if err != nil {
		return nil, err
	}
	out := slices.Clone(seq.Ints())
	for j, operand := range operands[1:] {
		x := operand.Sum()
		for i := range out {
			var ok bool
			if node.Type == types.NodeArraySub {
				out[i], ok = subInt(out[i], x)
			} else {
				out[i], ok = addInt(out[i], x)
			}
			if !ok {
				return nil, r.overflow(node.Operands[j+1])
			}
		}
	}
	return types.IntegerList(out), nil
}

// evalNegate negates a scalar, or every value of a sequence.
func (r *run) evalNegate(node *types.ASTNode, v types.Value) (types.Value, error) {
	seq, ok := v.(types.Sequence)
	if !ok {
		if v.Sum() == math.MinInt {
			return nil, r.overflow(node.Operands[0])
		}
		return types.Integer(-v.Sum()), nil
	}
	out := make(types.IntegerList, len(seq.Ints()))
	for i, x := range seq.Ints() {
		if x == math.MinInt {
			return nil, r.overflow(node.Operands[0])
		}
		out[i] = -x
	}
	return out, nil
}

// evalAddEvenSubOdd negates odd values and keeps even ones.
func evalAddEvenSubOdd(v types.Value) types.Value {
	seq, ok := v.(types.Sequence)
	if !ok {
		x := v.Sum()
		if x%2 != 0 {
			x = -x
		}
		return types.Integer(x)
	}
	out := make(types.IntegerList, len(seq.Ints()))
	for i, x := range seq.Ints() {
		if x%2 != 0 {
			x = -x
		}
		out[i] = x
	}
	return out
}

// sequence returns v as a Sequence or fails at the first operand of node.
func (r *run) sequence(node *types.ASTNode, v types.Value) (types.Sequence, error) {
	seq, ok := v.(types.Sequence)
	if !ok {
		return nil, types.Errorf(r.src, node.Operands[0].Position, types.ErrNotASequence,
			"%s needs a list of values, got %s", node.Type.Name(), v)
	}
	return seq, nil
}
