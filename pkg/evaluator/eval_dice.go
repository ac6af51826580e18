package evaluator

import (
	"slices"

	"github.com/sandrolain/godice/pkg/roller"
	"github.com/sandrolain/godice/pkg/types"
)

// threshold returns the right-hand operand of a roll operator, or def with
// the operator position when it was written without one.
func threshold(node *types.ASTNode, operands []types.Value, def int) (int, int) {
	if len(operands) > 1 {
		return operands[1].Sum(), node.Operands[1].Position
	}
	return def, node.Position
}

// rollOperand returns the first operand of node as a Roll whose faces are
// known.
func (r *run) rollOperand(node *types.ASTNode, v types.Value) (types.Roll, error) {
	roll, ok := v.(types.Roll)
	if !ok {
		return types.Roll{}, types.Errorf(r.src, node.Operands[0].Position, types.ErrNotARoll,
			"%s needs a dice roll, got %s", node.Type.Name(), v)
	}
	if roll.Nested {
		return types.Roll{}, r.nestedError(node)
	}
	return roll, nil
}

func (r *run) nestedError(node *types.ASTNode) *types.Error {
	return types.Errorf(r.src, node.Operands[0].Position, types.ErrNestedDice,
		"%s cannot be used on dice with random sides", node.Type.Name())
}

// evalSelect keeps the highest, lowest or middle values of a sequence.
func (r *run) evalSelect(node *types.ASTNode, operands []types.Value) (types.Value, error) {
	seq, err := r.sequence(node, operands[0])
	if err != nil {
		return nil, err
	}
	sorted := slices.Clone(seq.Ints())
	slices.Sort(sorted)
	count := len(sorted)

	keep := count - 1
	if node.Type == types.NodeMiddle {
		keep = 1
		if count > 2 {
			keep = count - 2
		}
	}
	if len(operands) > 1 {
		keep = operands[1].Sum()
		if keep < 0 {
			keep += count
		}
	}
	keep = max(0, min(keep, count))

	var picked []int
	switch node.Type {
	case types.NodeHighest:
		picked = sorted[count-keep:]
	case types.NodeLowest:
		picked = sorted[:keep]
	default:
		remove := count - keep
		upper := remove / 2
		picked = sorted[remove-upper : count-upper]
	}

	out := slices.Clone(picked)
	r.roll.Shuffle(out)
	return withValues(operands[0], out), nil
}

// evalSuccesses counts the values reaching the threshold. SuccessFail also
// subtracts the values at or below the lowest face.
func (r *run) evalSuccesses(node *types.ASTNode, operands []types.Value) (types.Value, error) {
	thresh, pos := threshold(node, operands, 0)
	fail := 1
	if roll, ok := operands[0].(types.Roll); ok {
		if roll.Nested {
			return nil, r.nestedError(node)
		}
		if thresh > roll.Max {
			return nil, types.Errorf(r.src, pos, types.ErrSuccessThreshold,
				"Success threshold %d is higher than the maximum roll %d", thresh, roll.Max)
		}
		fail = roll.Min
	}

	count := 0
	for _, v := range types.Ints(operands[0]) {
		if v >= thresh {
			count++
		}
		if node.Type == types.NodeSuccessFail && v <= fail {
			count--
		}
	}
	return types.Integer(count), nil
}

func (r *run) evalExplode(node *types.ASTNode, operands []types.Value) (types.Value, error) {
	roll, err := r.rollOperand(node, operands[0])
	if err != nil {
		return nil, err
	}
	thresh, pos := threshold(node, operands, roll.Max)
	switch {
	case roll.Min == roll.Max:
		return nil, types.Errorf(r.src, pos, types.ErrExplodeThreshold,
			"Cannot explode dice with a single face")
	case thresh <= roll.Min:
		return nil, types.Errorf(r.src, pos, types.ErrExplodeThreshold,
			"Explosion threshold must be higher than %d", roll.Min)
	}

	values, err := r.roll.Explode(roll.Values, roll.Min, roll.Max, thresh)
	if err != nil {
		return nil, r.rollError(node, err, len(roll.Values), roll.Min, roll.Max)
	}
	if r.debug {
		r.logger.Debug("exploded dice",
			"position", node.Position,
			"threshold", thresh,
			"added", len(values)-len(roll.Values))
	}
	return roll.WithValues(values), nil
}

func (r *run) evalReroll(node *types.ASTNode, operands []types.Value) (types.Value, error) {
	roll, err := r.rollOperand(node, operands[0])
	if err != nil {
		return nil, err
	}
	thresh, pos := threshold(node, operands, roll.Min)

	if node.Type == types.NodeReroll {
		return roll.WithValues(r.roll.Reroll(roll.Values, roll.Min, roll.Max, thresh)), nil
	}
	if thresh >= roll.Max {
		return nil, types.Errorf(r.src, pos, types.ErrRerollThreshold,
			"Cannot force a reroll of values up to %d on dice with a maximum of %d", thresh, roll.Max)
	}
	return roll.WithValues(r.roll.ForceReroll(roll.Values, roll.Max, thresh)), nil
}

func (r *run) evalAgain(node *types.ASTNode, operands []types.Value) (types.Value, error) {
	v := operands[0]
	if roll, ok := v.(types.Roll); ok && roll.Nested {
		return nil, r.nestedError(node)
	}

	var thresh int
	if len(operands) > 1 {
		thresh = operands[1].Sum()
	} else {
		roll, err := r.rollOperand(node, v)
		if err != nil {
			return nil, err
		}
		thresh = roll.Max
	}
	values := types.Ints(v)
	again := roller.Again(values, thresh)
	if len(again)-len(values) > r.maxExplosions {
		return nil, types.Errorf(r.src, node.Position, types.ErrTooManyExplosions,
			"Too many dice rolled again, more than %d added", r.maxExplosions)
	}
	return withValues(v, again), nil
}
