package parser

import (
	"strconv"

	"github.com/sandrolain/godice/pkg/dice"
	"github.com/sandrolain/godice/pkg/precedence"
	"github.com/sandrolain/godice/pkg/types"
)

type node = *types.ASTNode

const stackedDiceMessage = "Cannot stack dice operators! Try disambiguating your expression " +
	"with parentheses, e.g. '(6d6)d6' instead of '6d6d6'"

var lit = precedence.Literal

// specialSides matches the sides tokens that stand in for a number.
var specialSides = precedence.OneOf(lit("%"), lit("f"))

// newGrammar builds the dice notation grammar. Rules are listed from the
// tightest binding to the loosest.
func newGrammar(reg *dice.Registry, maxDepth int) (*precedence.Grammar[node], error) {
	seps := reg.Kinds()
	matchers := make([]precedence.Matcher, len(seps))
	for i, sep := range seps {
		matchers[i] = lit(sep)
	}
	diceOp := precedence.OneOf(matchers...)

	rules := []precedence.Rule[node]{
		{Op: diceOp, Arity: 2, Assoc: precedence.Left, Build: diceInfix(reg), Extra: sides},
		{Op: diceOp, Arity: 1, Assoc: precedence.Right, Build: dicePrefix(reg), Extra: sides},
	}

	// Roll operators take an optional right-hand threshold.
	rollOps := []struct {
		op   precedence.Matcher
		kind types.NodeType
	}{
		{lit("x"), types.NodeExplode},
		{lit("rr"), types.NodeForceReroll},
		{precedence.Not(lit("r"), lit("rr")), types.NodeReroll},
		{lit("h"), types.NodeHighest},
		{lit("l"), types.NodeLowest},
		{lit("o"), types.NodeMiddle},
		{lit("a"), types.NodeAgain},
	}
	for _, r := range rollOps {
		rules = append(rules, infix(r.op, r.kind), postfix(r.op, r.kind))
	}

	rules = append(rules,
		infix(lit("e"), types.NodeSuccesses),
		infix(lit("f"), types.NodeSuccessFail),
		postfix(lit("t"), types.NodeTotal),
		postfix(lit("s"), types.NodeSort),

		prefix(lit("+-"), types.NodeAddEvenSubOdd),
		prefix(precedence.Not(lit("+"), lit("+-")), types.NodeIdentity),
		precedence.Rule[node]{Op: lit("-"), Arity: 1, Assoc: precedence.Right, Build: negate},

		infix(lit(".+"), types.NodeArrayAdd),
		infix(lit(".-"), types.NodeArraySub),
		infix(lit("%"), types.NodeMod),
		infix(lit("/"), types.NodeDiv),
		infix(lit("*"), types.NodeMul),
		infix(lit("-"), types.NodeSub),
		infix(lit("+"), types.NodeAdd),
		infix(lit(","), types.NodeArray),
		infix(lit("|"), types.NodeExtend),
	)

	return precedence.New(integer, rules, precedence.WithMaxDepth(maxDepth))
}

func integer(s *precedence.Stream) (node, bool, error) {
	tok := s.Peek()
	if tok.Kind != precedence.TokenInt {
		return nil, false, nil
	}
	n, err := strconv.Atoi(tok.Text)
	if err != nil {
		return nil, false, types.Errorf(s.Source(), tok.Offset, types.ErrNumberOutOfRange,
			"Number out of range: %s", tok.Text).WithToken(tok.Text).WithCause(err)
	}
	s.Next()
	v := types.NewInteger(n, tok.Offset)
	v.Text = tok.Text
	return v, true, nil
}

func sides(s *precedence.Stream) (node, bool, error) {
	tok, ok := s.Match(specialSides)
	if !ok {
		return nil, false, nil
	}
	n := types.NewASTNode(types.NodeSpecial, tok.Offset)
	n.Text = tok.Text
	return n, true, nil
}

func diceInfix(reg *dice.Registry) precedence.BuildFunc[node] {
	return func(src string, pos int, operands []node, ops []precedence.Token) (node, error) {
		if len(ops) > 1 {
			return nil, types.Errorf(src, ops[1].Offset, types.ErrStackedDice, stackedDiceMessage).
				WithToken(ops[1].Text)
		}
		amount := operands[0]
		if amount.Type == types.NodeSpecial {
			return nil, types.Errorf(src, amount.Position, types.ErrUnexpectedToken,
				"Unexpected %q", amount.Text).WithToken(amount.Text)
		}
		return reg.Resolve(src, amount, operands[1], ops[0].Text, ops[0].Offset)
	}
}

func dicePrefix(reg *dice.Registry) precedence.BuildFunc[node] {
	return func(src string, pos int, operands []node, ops []precedence.Token) (node, error) {
		return reg.Resolve(src, nil, operands[0], ops[0].Text, ops[0].Offset)
	}
}

func operator(kind types.NodeType) precedence.BuildFunc[node] {
	return func(src string, pos int, operands []node, ops []precedence.Token) (node, error) {
		n := types.NewASTNode(kind, pos, operands...)
		n.Op = ops[0].Text
		return n, nil
	}
}

// negate folds a minus sign into an integer literal.
func negate(src string, pos int, operands []node, ops []precedence.Token) (node, error) {
	if operands[0].IsLiteral() {
		return types.NewInteger(-operands[0].Value, pos), nil
	}
	return operator(types.NodeNegate)(src, pos, operands, ops)
}

func infix(op precedence.Matcher, kind types.NodeType) precedence.Rule[node] {
	return precedence.Rule[node]{Op: op, Arity: 2, Assoc: precedence.Left, Build: operator(kind)}
}

func postfix(op precedence.Matcher, kind types.NodeType) precedence.Rule[node] {
	return precedence.Rule[node]{Op: op, Arity: 1, Assoc: precedence.Left, Build: operator(kind)}
}

func prefix(op precedence.Matcher, kind types.NodeType) precedence.Rule[node] {
	return precedence.Rule[node]{Op: op, Arity: 1, Assoc: precedence.Right, Build: operator(kind)}
}
