package evaluator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sandrolain/godice/pkg/roller"
	"github.com/sandrolain/godice/pkg/types"
)

// run holds the state of one evaluation.
type run struct {
	ctx           context.Context
	src           string
	cached        bool
	debug         bool
	logger        *slog.Logger
	roll          *roller.Roller
	maxExplosions int
}

// eval evaluates node. Cached runs return the memoized result when there is
// one and store the result otherwise.
func (r *run) eval(node *types.ASTNode) (types.Value, error) {
	if r.cached {
		if v, ok := node.Result(); ok {
			return v, nil
		}
	}

	// Check context cancellation
	select {
	case <-r.ctx.Done():
		return nil, r.ctx.Err()
	default:
	}

	v, err := r.evalNode(node)
	if err != nil {
		return nil, err
	}
	if r.cached {
		v = node.Memoize(v)
	}

	if r.debug {
		r.logger.Debug("evaluated node",
			"type", node.Type.Name(),
			"position", node.Position,
			"result", v.String())
	}
	return v, nil
}

func (r *run) evalNode(node *types.ASTNode) (types.Value, error) {
	switch {
	case node.Type == types.NodeInteger:
		return types.Integer(node.Value), nil
	case node.Type.IsRandom():
		return r.evalRandom(node)
	case !node.Type.IsOperator():
		return nil, types.Errorf(r.src, node.Position, types.ErrUnexpectedToken,
			"Unexpected %q", node.String()).WithToken(node.Text)
	}

	operands, err := r.operands(node)
	if err != nil {
		return nil, err
	}

	switch node.Type {
	case types.NodeAdd, types.NodeSub, types.NodeMul, types.NodeDiv, types.NodeMod:
		return r.evalArithmetic(node, operands)
	case types.NodeHighest, types.NodeLowest, types.NodeMiddle:
		return r.evalSelect(node, operands)
	case types.NodeSort:
		return evalSort(operands[0]), nil
	case types.NodeSuccesses, types.NodeSuccessFail:
		return r.evalSuccesses(node, operands)
	case types.NodeExplode:
		return r.evalExplode(node, operands)
	case types.NodeReroll, types.NodeForceReroll:
		return r.evalReroll(node, operands)
	case types.NodeAgain:
		return r.evalAgain(node, operands)
	case types.NodeExtend:
		return evalExtend(operands), nil
	case types.NodeArray:
		return r.evalArray(node, operands)
	case types.NodeArrayAdd, types.NodeArraySub:
		return r.evalArrayArithmetic(node, operands)
	case types.NodeTotal:
		total, err := r.sum(node.Operands[0], operands[0])
		if err != nil {
			return nil, err
		}
		return types.Integer(total), nil
	case types.NodeIdentity:
		return operands[0], nil
	case types.NodeNegate:
		return r.evalNegate(node, operands[0])
	case types.NodeAddEvenSubOdd:
		return evalAddEvenSubOdd(operands[0]), nil
	}

	return nil, types.Errorf(r.src, node.Position, types.ErrInvalidOperator,
		"Unsupported operator %s", node.Type.Name())
}

// operands evaluates the operands of an operator and coerces them the way
// the operator family expects.
func (r *run) operands(node *types.ASTNode) ([]types.Value, error) {
	coerce := node.Type.Coercion()
	values := make([]types.Value, len(node.Operands))
	for i, operand := range node.Operands {
		v, err := r.eval(operand)
		if err != nil {
			return nil, err
		}
		switch {
		case coerce == types.CoerceIntegers,
			coerce == types.CoerceRHS && i > 0:
			total, err := r.sum(operand, v)
			if err != nil {
				return nil, err
			}
			v = types.Integer(total)
		}
		values[i] = v
	}
	if r.cached {
		node.Evaluated = values
	}
	return values, nil
}

// sum reduces v, the value of node, to its total.
func (r *run) sum(node *types.ASTNode, v types.Value) (int, error) {
	total, ok := types.CheckedSum(types.Ints(v))
	if !ok {
		return 0, r.overflow(node)
	}
	return total, nil
}

func (r *run) overflow(node *types.ASTNode) *types.Error {
	return types.Errorf(r.src, node.Position, types.ErrIntegerOverflow,
		"Integer overflow").WithToken(node.String())
}

// bounds returns the face range of a random element with the given sides.
func bounds(kind types.NodeType, sides int) (min, max int) {
	if kind == types.NodeFudgeDice {
		return -sides, sides
	}
	return 1, sides
}

func (r *run) evalRandom(node *types.ASTNode) (types.Value, error) {
	amountNode, sidesNode := node.Operands[0], node.Operands[1]

	a, err := r.eval(amountNode)
	if err != nil {
		return nil, err
	}
	s, err := r.eval(sidesNode)
	if err != nil {
		return nil, err
	}
	amount, err := r.sum(amountNode, a)
	if err != nil {
		return nil, err
	}
	sides, err := r.sum(sidesNode, s)
	if err != nil {
		return nil, err
	}
	if r.cached {
		node.Evaluated = []types.Value{types.Integer(amount), types.Integer(sides)}
	}

	min, max := bounds(node.Type, sides)
	if err := r.roll.Check(amount, min, max); err != nil {
		return nil, r.rollError(node, err, amount, min, max)
	}

	var values []int
	if node.Type == types.NodeWildDice {
		values, err = r.roll.Wild(amount, min, max)
	} else {
		values, err = r.roll.Roll(amount, min, max)
	}
	if err != nil {
		return nil, r.rollError(node, err, amount, min, max)
	}

	return types.Roll{
		Values:  values,
		Element: node,
		Min:     min,
		Max:     max,
		Nested:  sidesNode.ContainsRandom(),
		Forced:  r.roll.Extreme(),
	}, nil
}

// rollError converts a roller error into a positioned error.
func (r *run) rollError(node *types.ASTNode, err error, amount, min, max int) error {
	amountPos, sidesPos := node.Position, node.Position
	if len(node.Operands) == 2 {
		amountPos, sidesPos = node.Operands[0].Position, node.Operands[1].Position
	}

	switch {
	case errors.Is(err, roller.ErrNegativeAmount):
		return types.Errorf(r.src, amountPos, types.ErrNegativeAmount,
			"Cannot roll a negative amount of dice: %d", amount).WithCause(err)
	case errors.Is(err, roller.ErrTooManyDice):
		return types.Errorf(r.src, amountPos, types.ErrTooManyDice,
			"Too many dice: %d exceeds the limit of %d", amount, r.roll.MaxDice()).WithCause(err)
	case errors.Is(err, roller.ErrInvertedRange):
		return types.Errorf(r.src, sidesPos, types.ErrInvertedRange,
			"Minimum value %d exceeds maximum value %d", min, max).WithCause(err)
	case errors.Is(err, roller.ErrRangeTooLarge):
		return types.Errorf(r.src, sidesPos, types.ErrRangeTooLarge,
			"Cannot roll values from %d to %d, the range is too large", min, max).WithCause(err)
	case errors.Is(err, roller.ErrTooManyExplosions):
		return types.Errorf(r.src, node.Position, types.ErrTooManyExplosions,
			"Too many explosions, more than %d dice added", r.maxExplosions).WithCause(err)
	}
	return types.Errorf(r.src, node.Position, types.ErrInvalidOperator, "%v", err).WithCause(err)
}
