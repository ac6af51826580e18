package types

import (
	"strconv"
	"strings"
)

// NodeType identifies the type of an AST node.
type NodeType string

// AST node types.
const (
	// Literals
	NodeInteger NodeType = "integer"
	NodeSpecial NodeType = "special" // bare % or F standing in for dice sides

	// Random elements
	NodeDice      NodeType = "dice"  // NdM
	NodeWildDice  NodeType = "wild"  // NwM
	NodeFudgeDice NodeType = "fudge" // NuM, NdF

	// Arithmetic
	NodeAdd NodeType = "add"
	NodeSub NodeType = "sub"
	NodeMul NodeType = "mul"
	NodeDiv NodeType = "div"
	NodeMod NodeType = "mod"

	// Selection
	NodeSort    NodeType = "sort"
	NodeHighest NodeType = "highest"
	NodeLowest  NodeType = "lowest"
	NodeMiddle  NodeType = "middle"

	// Counting
	NodeSuccesses   NodeType = "successes"
	NodeSuccessFail NodeType = "successfail"

	// Mutation
	NodeExplode     NodeType = "explode"
	NodeReroll      NodeType = "reroll"
	NodeForceReroll NodeType = "forcereroll"
	NodeAgain       NodeType = "again"

	// Arrays
	NodeExtend   NodeType = "extend"
	NodeArray    NodeType = "array"
	NodeArrayAdd NodeType = "arrayadd"
	NodeArraySub NodeType = "arraysub"

	// Unary
	NodeIdentity      NodeType = "identity"
	NodeNegate        NodeType = "negate"
	NodeAddEvenSubOdd NodeType = "addevensubodd"
	NodeTotal         NodeType = "total"
)

// Coercion describes how an operator prepares its evaluated operands.
type Coercion int

const (
	// CoerceNone passes operands through untouched.
	CoerceNone Coercion = iota
	// CoerceIntegers reduces every operand to its sum.
	CoerceIntegers
	// CoerceRHS keeps the first operand and reduces the rest to sums.
	CoerceRHS
)

// Fixity is how an operator is written in dice notation.
type Fixity int

const (
	Infix Fixity = iota
	Prefix
	Postfix
)

type nodeTrait struct {
	name   string
	symbol string
	random bool
	coerce Coercion
	fixity Fixity
}

var nodeTraits = map[NodeType]nodeTrait{
	NodeInteger: {name: "Integer"},
	NodeSpecial: {name: "Special"},

	NodeDice:      {name: "Dice", symbol: "d", random: true},
	NodeWildDice:  {name: "WildDice", symbol: "w", random: true},
	NodeFudgeDice: {name: "FudgeDice", symbol: "u", random: true},

	NodeAdd: {name: "Add", symbol: "+", coerce: CoerceIntegers},
	NodeSub: {name: "Sub", symbol: "-", coerce: CoerceIntegers},
	NodeMul: {name: "Mul", symbol: "*", coerce: CoerceIntegers},
	NodeDiv: {name: "Div", symbol: "/", coerce: CoerceIntegers},
	NodeMod: {name: "Mod", symbol: "%", coerce: CoerceIntegers},

	NodeSort:    {name: "Sort", symbol: "s", fixity: Postfix},
	NodeHighest: {name: "Highest", symbol: "h", coerce: CoerceRHS},
	NodeLowest:  {name: "Lowest", symbol: "l", coerce: CoerceRHS},
	NodeMiddle:  {name: "Middle", symbol: "o", coerce: CoerceRHS},

	NodeSuccesses:   {name: "Successes", symbol: "e", coerce: CoerceRHS},
	NodeSuccessFail: {name: "SuccessFail", symbol: "f", coerce: CoerceRHS},

	NodeExplode:     {name: "Explode", symbol: "x", coerce: CoerceRHS},
	NodeReroll:      {name: "Reroll", symbol: "r", coerce: CoerceRHS},
	NodeForceReroll: {name: "ForceReroll", symbol: "rr", coerce: CoerceRHS},
	NodeAgain:       {name: "Again", symbol: "a", coerce: CoerceRHS},

	NodeExtend:   {name: "Extend", symbol: "|"},
	NodeArray:    {name: "Array", symbol: ","},
	NodeArrayAdd: {name: "ArrayAdd", symbol: ".+", coerce: CoerceRHS},
	NodeArraySub: {name: "ArraySub", symbol: ".-", coerce: CoerceRHS},

	NodeIdentity:      {name: "Identity", symbol: "+", fixity: Prefix},
	NodeNegate:        {name: "Negate", symbol: "-", fixity: Prefix},
	NodeAddEvenSubOdd: {name: "AddEvenSubOdd", symbol: "+-", fixity: Prefix},
	NodeTotal:         {name: "Total", symbol: "t", fixity: Postfix},
}

// Name returns the display name of the node type, e.g. "Highest".
func (t NodeType) Name() string {
	if tr, ok := nodeTraits[t]; ok {
		return tr.name
	}
	return string(t)
}

// Symbol returns the operator or separator used in dice notation.
func (t NodeType) Symbol() string {
	return nodeTraits[t].symbol
}

// IsRandom reports whether nodes of this type roll dice.
func (t NodeType) IsRandom() bool {
	return nodeTraits[t].random
}

// IsOperator reports whether nodes of this type combine operands.
func (t NodeType) IsOperator() bool {
	_, ok := nodeTraits[t]
	return ok && t != NodeInteger && t != NodeSpecial && !t.IsRandom()
}

// Coercion returns how the operator coerces its operands.
func (t NodeType) Coercion() Coercion {
	return nodeTraits[t].coerce
}

// Fixity returns how the operator is written.
func (t NodeType) Fixity() Fixity {
	return nodeTraits[t].fixity
}

// ASTNode represents a node in the Abstract Syntax Tree.
//
// Operator and random element nodes keep their original, source-located
// operands in Operands. The first cached evaluation stores its value in the
// node's memo slot and every later cached evaluation returns it unchanged.
type ASTNode struct {
	Type     NodeType
	Value    int    // NodeInteger value
	Text     string // source text of literal and special nodes
	Op       string // operator token or dice separator as written
	Position int

	// Original operands
	Operands []*ASTNode

	// Evaluated holds the operands as seen by the last cached evaluation.
	Evaluated []Value

	result Value
	done   bool
}

// NewASTNode creates a new AST node of the specified type.
func NewASTNode(nodeType NodeType, position int, operands ...*ASTNode) *ASTNode {
	return &ASTNode{
		Type:     nodeType,
		Position: position,
		Operands: operands,
	}
}

// NewInteger creates an integer literal node.
func NewInteger(value, position int) *ASTNode {
	return &ASTNode{
		Type:     NodeInteger,
		Value:    value,
		Position: position,
	}
}

// Result returns the memoized value, if the node has been evaluated.
func (n *ASTNode) Result() (Value, bool) {
	return n.result, n.done
}

// Memoize stores v as the node's result unless one is already stored, and
// returns the stored result.
func (n *ASTNode) Memoize(v Value) Value {
	if n.done {
		return n.result
	}
	n.result = v
	n.done = true
	return v
}

// IsLiteral reports whether n is a plain integer literal.
func (n *ASTNode) IsLiteral() bool {
	return n != nil && n.Type == NodeInteger
}

// ContainsRandom reports whether n or any of its operands rolls dice.
func (n *ASTNode) ContainsRandom() bool {
	if n == nil {
		return false
	}
	if n.Type.IsRandom() {
		return true
	}
	for _, op := range n.Operands {
		if op.ContainsRandom() {
			return true
		}
	}
	return false
}

// String renders the node back into dice notation.
func (n *ASTNode) String() string {
	if n == nil {
		return ""
	}
	switch {
	case n.Type == NodeInteger, n.Type == NodeSpecial:
		if n.Text != "" {
			return n.Text
		}
		return strconv.Itoa(n.Value)
	case n.Type.IsRandom():
		sep := n.Op
		if sep == "" {
			sep = n.Type.Symbol()
		}
		if len(n.Operands) != 2 {
			return sep
		}
		return operandString(n.Operands[0]) + sep + operandString(n.Operands[1])
	}

	op := n.Op
	if op == "" {
		op = n.Type.Symbol()
	}
	switch n.Type.Fixity() {
	case Prefix:
		if len(n.Operands) == 0 {
			return op
		}
		return op + operandString(n.Operands[0])
	}
	parts := make([]string, len(n.Operands))
	for i, o := range n.Operands {
		parts[i] = operandString(o)
	}
	if len(parts) == 1 {
		return parts[0] + op
	}
	return strings.Join(parts, op)
}

func operandString(n *ASTNode) string {
	if n.Type == NodeInteger || n.Type == NodeSpecial {
		return n.String()
	}
	if n.Type.IsRandom() {
		for _, o := range n.Operands {
			if !o.IsLiteral() {
				return "(" + n.String() + ")"
			}
		}
		return n.String()
	}
	return "(" + n.String() + ")"
}
