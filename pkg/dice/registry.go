// Package dice maps dice separators to random element kinds.
//
// Dice notation writes a group of dice as amount, separator and sides, e.g.
// "2d6". The separator is a single letter selecting the kind of die:
//
//	d  standard dice, faces 1..sides
//	w  wild dice, exploding on the top face with a failure tail
//	u  fudge dice, faces -sides..sides
//
// The sides "%" stands for 100 and "F" for a fudge die with faces -1..1.
//
// # Example
//
//	node, err := dice.FromString("4dF")
package dice

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sandrolain/godice/pkg/types"
)

// Registration errors.
var (
	ErrDuplicateSeparator = errors.New("separator already registered")
	ErrInvalidSeparator   = errors.New("separator must be a single letter")
	ErrNotRandomKind      = errors.New("node type is not a random element")
)

// Registry maps separators to random element node types.
type Registry struct {
	kinds map[string]types.NodeType
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]types.NodeType)}
}

// Default is the registry used by the dice notation grammar.
var Default = newDefault()

func newDefault() *Registry {
	r := NewRegistry()
	r.MustRegister("d", types.NodeDice)
	r.MustRegister("w", types.NodeWildDice)
	r.MustRegister("u", types.NodeFudgeDice)
	return r
}

// Register adds a dice kind under separator.
func (r *Registry) Register(separator string, kind types.NodeType) error {
	sep := strings.ToLower(separator)
	runes := []rune(sep)
	if len(runes) != 1 || !unicode.IsLetter(runes[0]) {
		return fmt.Errorf("register %q: %w", separator, ErrInvalidSeparator)
	}
	if !kind.IsRandom() {
		return fmt.Errorf("register %q as %s: %w", separator, kind, ErrNotRandomKind)
	}
	if existing, ok := r.kinds[sep]; ok {
		return fmt.Errorf("register %q as %s (already %s): %w", separator, kind, existing, ErrDuplicateSeparator)
	}
	r.kinds[sep] = kind
	return nil
}

// MustRegister is like Register but panics on error. It is meant for
// registries built during program initialization.
func (r *Registry) MustRegister(separator string, kind types.NodeType) {
	if err := r.Register(separator, kind); err != nil {
		panic(fmt.Sprintf("dice: %v", err))
	}
}

// Lookup returns the node type registered for separator.
func (r *Registry) Lookup(separator string) (types.NodeType, bool) {
	kind, ok := r.kinds[strings.ToLower(separator)]
	return kind, ok
}

// Kinds returns the registered separators in sorted order.
func (r *Registry) Kinds() []string {
	seps := make([]string, 0, len(r.kinds))
	for sep := range r.kinds {
		seps = append(seps, sep)
	}
	sort.Strings(seps)
	return seps
}

// Resolve builds the random element for amount, sides and separator. A nil
// amount means one die. sides may be a NodeSpecial holding "%" or "F".
// Errors point into src: separator problems at sepPos, sides problems at the
// sides operand.
func (r *Registry) Resolve(src string, amount, sides *types.ASTNode, separator string, sepPos int) (*types.ASTNode, error) {
	if len([]rune(separator)) != 1 {
		return nil, types.Errorf(src, sepPos, types.ErrInvalidOperator,
			"Dice operator must be 1 letter").WithToken(separator)
	}
	sep := strings.ToLower(separator)

	if sides.Type == types.NodeSpecial {
		switch strings.ToLower(sides.Text) {
		case "f":
			if sep != "d" && sep != "u" {
				return nil, types.Errorf(src, sides.Position, types.ErrInvalidFudge,
					"Can only use dF or uF").WithToken(sides.Text)
			}
			fudge := types.NewInteger(1, sides.Position)
			fudge.Text = sides.Text
			return r.element(types.NodeFudgeDice, amount, fudge, separator, sepPos), nil
		case "%":
			hundred := types.NewInteger(100, sides.Position)
			hundred.Text = sides.Text
			sides = hundred
		default:
			return nil, types.Errorf(src, sides.Position, types.ErrInvalidSides,
				"Unknown dice sides %q", sides.Text).WithToken(sides.Text)
		}
	}

	if sides.IsLiteral() && sides.Value < 1 {
		return nil, types.Errorf(src, sides.Position, types.ErrInvalidSides,
			"Number of sides must be one or more")
	}

	kind, ok := r.Lookup(sep)
	if !ok {
		return nil, types.Errorf(src, sepPos, types.ErrUnknownDiceKind,
			"Unknown dice kind: %s", separator).WithToken(separator)
	}
	return r.element(kind, amount, sides, separator, sepPos), nil
}

func (r *Registry) element(kind types.NodeType, amount, sides *types.ASTNode, separator string, sepPos int) *types.ASTNode {
	if amount == nil {
		amount = types.NewInteger(1, sepPos)
	}
	pos := sepPos
	if amount.Position < pos {
		pos = amount.Position
	}
	node := types.NewASTNode(kind, pos, amount, sides)
	node.Op = separator
	return node
}

// FromString builds a random element from compact notation such as "2d6",
// "d%" or "4dF" using the Default registry. A missing amount means one die.
func FromString(s string) (*types.ASTNode, error) {
	return Default.FromString(s)
}

// FromString builds a random element from compact notation.
func (r *Registry) FromString(s string) (*types.ASTNode, error) {
	sepPos := strings.IndexFunc(s, unicode.IsLetter)
	if sepPos < 0 || sepPos == len(s)-1 {
		return nil, types.Errorf(s, len(s), types.ErrUnexpectedEnd,
			"Expected dice notation like 2d6")
	}

	amount := types.NewInteger(1, 0)
	if sepPos > 0 {
		n, err := strconv.Atoi(s[:sepPos])
		if err != nil {
			return nil, types.Errorf(s, 0, types.ErrUnexpectedToken,
				"Invalid dice amount %q", s[:sepPos]).WithToken(s[:sepPos]).WithCause(err)
		}
		amount = types.NewInteger(n, 0)
		amount.Text = s[:sepPos]
	}

	_, width := utf8.DecodeRuneInString(s[sepPos:])
	separator := s[sepPos : sepPos+width]
	rest := s[sepPos+width:]
	restPos := sepPos + width

	var sides *types.ASTNode
	switch strings.ToLower(rest) {
	case "%", "f":
		sides = types.NewASTNode(types.NodeSpecial, restPos)
		sides.Text = rest
	default:
		n, err := strconv.Atoi(rest)
		if err != nil {
			return nil, types.Errorf(s, restPos, types.ErrUnexpectedToken,
				"Invalid dice sides %q", rest).WithToken(rest).WithCause(err)
		}
		sides = types.NewInteger(n, restPos)
		sides.Text = rest
	}

	return r.Resolve(s, amount, sides, separator, sepPos)
}
