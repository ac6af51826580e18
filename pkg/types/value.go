package types

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Extreme forces every roll to the lowest or highest face instead of drawing
// randomly.
type Extreme int

const (
	ExtremeNone Extreme = iota
	ExtremeMin
	ExtremeMax
)

// String returns the string representation of the extreme mode.
func (x Extreme) String() string {
	switch x {
	case ExtremeMin:
		return "min"
	case ExtremeMax:
		return "max"
	default:
		return "none"
	}
}

// Value is the result of evaluating a node: an Integer, an IntegerList or a
// Roll.
type Value interface {
	// Sum reduces the value to a single integer.
	Sum() int
	String() string
}

// Sequence is a Value holding an ordered list of integers.
type Sequence interface {
	Value
	Ints() []int
}

// Integer is a scalar whole number.
type Integer int

// Sum returns the integer itself.
func (i Integer) Sum() int { return int(i) }

func (i Integer) String() string { return strconv.Itoa(int(i)) }

// IntegerList is an ordered sequence of integers.
type IntegerList []int

// Sum returns the total of the list. It wraps on overflow, see CheckedSum.
func (l IntegerList) Sum() int {
	total := 0
	for _, v := range l {
		total += v
	}
	return total
}

// CheckedSum returns the total of values, or false when it does not fit in
// an int.
func CheckedSum(values []int) (int, bool) {
	total := 0
	for _, v := range values {
		next := total + v
		if (next > total) != (v > 0) {
			return 0, false
		}
		total = next
	}
	return total, true
}

// Ints returns the list values.
func (l IntegerList) Ints() []int { return l }

func (l IntegerList) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// MarshalJSON encodes the list as a JSON array, empty rather than null.
func (l IntegerList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int(l))
}

// Roll is the outcome of rolling a random element. It keeps a reference to
// the element that produced it so later operators can roll more dice of the
// same kind and validate thresholds against its faces.
type Roll struct {
	Values  IntegerList
	Element *ASTNode
	Min     int
	Max     int
	// Nested is set when the faces of the element come from another roll.
	Nested  bool
	Forced  Extreme
}

// Sum returns the total of the rolled values.
func (r Roll) Sum() int { return r.Values.Sum() }

// Ints returns the rolled values.
func (r Roll) Ints() []int { return r.Values }

func (r Roll) String() string { return r.Values.String() }

// MarshalJSON encodes the rolled values only.
func (r Roll) MarshalJSON() ([]byte, error) { return r.Values.MarshalJSON() }

// WithValues returns a copy of r holding values instead of the original dice.
func (r Roll) WithValues(values []int) Roll {
	r.Values = values
	return r
}

// Ints returns the integers held by v. A scalar becomes a one element slice.
func Ints(v Value) []int {
	switch t := v.(type) {
	case Sequence:
		return t.Ints()
	case nil:
		return nil
	default:
		return []int{v.Sum()}
	}
}

// Single unwraps a sequence holding exactly one value into an Integer.
func Single(v Value) Value {
	if s, ok := v.(Sequence); ok && len(s.Ints()) == 1 {
		return Integer(s.Ints()[0])
	}
	return v
}
