package roller

import (
	"errors"
	"math"

	"github.com/sandrolain/godice/pkg/types"
)

// Default limits.
const (
	DefaultMaxDice       = 1 << 20
	DefaultMaxExplosions = 10000
)

// Errors returned while rolling.
var (
	ErrNegativeAmount    = errors.New("cannot roll a negative amount of dice")
	ErrTooManyDice       = errors.New("too many dice")
	ErrInvertedRange     = errors.New("minimum value exceeds maximum value")
	ErrRangeTooLarge     = errors.New("range of values is too large")
	ErrTooManyExplosions = errors.New("too many explosions")
)

// Roller draws dice values from a Source.
type Roller struct {
	src           Source
	extreme       types.Extreme
	maxDice       int
	maxExplosions int
}

// Option configures a Roller.
type Option func(*Roller)

// WithExtreme forces every draw to the lowest or highest face.
func WithExtreme(x types.Extreme) Option {
	return func(r *Roller) {
		r.extreme = x
	}
}

// WithMaxDice caps the amount of dice rolled at once. DefaultMaxDice is a
// safety cap: it rejects amounts that only exhaust memory, so it is far
// tighter than an unbounded roller would be.
func WithMaxDice(n int) Option {
	return func(r *Roller) {
		r.maxDice = n
	}
}

// WithMaxExplosions caps the number of dice added by exploding rolls.
func WithMaxExplosions(n int) Option {
	return func(r *Roller) {
		r.maxExplosions = n
	}
}

// New creates a Roller over src. A nil src uses Default.
func New(src Source, opts ...Option) *Roller {
	if src == nil {
		src = Default()
	}
	r := &Roller{
		src:           src,
		maxDice:       DefaultMaxDice,
		maxExplosions: DefaultMaxExplosions,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extreme returns the force-extreme mode of the roller.
func (r *Roller) Extreme() types.Extreme {
	return r.extreme
}

// MaxDice returns the dice cap.
func (r *Roller) MaxDice() int {
	return r.maxDice
}

// Single draws one value in [min, max]. min must not exceed max.
func (r *Roller) Single(min, max int) int {
	if min == max {
		return min
	}
	switch r.extreme {
	case types.ExtremeMin:
		return min
	case types.ExtremeMax:
		return max
	}
	return min + r.src.Intn(max-min+1)
}

// Check validates amount and the range before any die is drawn.
func (r *Roller) Check(amount, min, max int) error {
	switch {
	case amount < 0:
		return ErrNegativeAmount
	case amount > r.maxDice:
		return ErrTooManyDice
	case min > max:
		return ErrInvertedRange
	case max-min < 0 || max-min == math.MaxInt:
		return ErrRangeTooLarge
	}
	return nil
}

// Roll draws amount values in [min, max].
func (r *Roller) Roll(amount, min, max int) ([]int, error) {
	if err := r.Check(amount, min, max); err != nil {
		return nil, err
	}
	values := make([]int, amount)
	for i := range values {
		values[i] = r.Single(min, max)
	}
	return values, nil
}

// Wild rolls amount wild dice. While the last draw shows max another die is
// appended. If the last of the original dice shows min it fails: that die
// and the highest die drop to zero, and one more draw showing min zeroes
// the whole roll.
//
// Forced rolls and dice with a single face roll like plain dice.
func (r *Roller) Wild(amount, min, max int) ([]int, error) {
	values, err := r.Roll(amount, min, max)
	if err != nil || amount == 0 {
		return values, err
	}
	if r.extreme != types.ExtremeNone || min == max {
		return values, nil
	}

	for exploded := 0; values[len(values)-1] == max; exploded++ {
		if exploded >= r.maxExplosions {
			return nil, ErrTooManyExplosions
		}
		values = append(values, r.Single(min, max))
	}

	if values[amount-1] != min {
		return values, nil
	}
	values[amount-1] = 0
	values[highest(values)] = 0
	if r.Single(min, max) == min {
		for i := range values {
			values[i] = 0
		}
	}
	return values, nil
}

func highest(values []int) int {
	at := 0
	for i, v := range values {
		if v > values[at] {
			at = i
		}
	}
	return at
}

// Explode rolls one more die for every value of at least thresh, then
// repeats with the new dice until none reaches thresh. The new dice are
// appended in the order they were rolled. Callers must ensure thresh > min.
//
// Forced rollers do not explode.
func (r *Roller) Explode(values []int, min, max, thresh int) ([]int, error) {
	out := make([]int, len(values), len(values)+8)
	copy(out, values)
	if r.extreme != types.ExtremeNone {
		return out, nil
	}

	exploded := 0
	batch := out
	for len(batch) > 0 {
		start := len(out)
		for _, v := range batch {
			if v < thresh {
				continue
			}
			if exploded++; exploded > r.maxExplosions {
				return nil, ErrTooManyExplosions
			}
			out = append(out, r.Single(min, max))
		}
		batch = out[start:]
	}
	return out, nil
}

// Reroll draws every value at most thresh once more.
func (r *Roller) Reroll(values []int, min, max, thresh int) []int {
	out := make([]int, len(values))
	for i, v := range values {
		if v <= thresh {
			v = r.Single(min, max)
		}
		out[i] = v
	}
	return out
}

// ForceReroll replaces every value at most thresh with a draw in
// [thresh+1, max]. Callers must ensure thresh < max.
func (r *Roller) ForceReroll(values []int, max, thresh int) []int {
	out := make([]int, len(values))
	for i, v := range values {
		if v <= thresh {
			v = r.Single(thresh+1, max)
		}
		out[i] = v
	}
	return out
}

// Shuffle permutes values in place. Forced rollers leave the order alone.
func (r *Roller) Shuffle(values []int) {
	if r.extreme != types.ExtremeNone {
		return
	}
	for i := len(values) - 1; i > 0; i-- {
		j := r.src.Intn(i + 1)
		values[i], values[j] = values[j], values[i]
	}
}

// Again duplicates every value equal to thresh right after it.
func Again(values []int, thresh int) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		out = append(out, v)
		if v == thresh {
			out = append(out, v)
		}
	}
	return out
}
