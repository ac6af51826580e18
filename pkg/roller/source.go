// Package roller draws dice values.
//
// Every random decision made while evaluating an expression goes through a
// Roller, which wraps a Source and enforces the dice and explosion caps. A
// Roller in force-extreme mode never consults its Source.
package roller

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	"math/rand"
)

// Source yields uniformly distributed integers in [0, n).
//
// *math/rand.Rand satisfies Source.
type Source interface {
	Intn(n int) int
}

type globalSource struct{}

func (globalSource) Intn(n int) int { return rand.Intn(n) }

// Default returns the process-global source. It is safe for concurrent use.
func Default() Source {
	return globalSource{}
}

// NewSeeded returns a deterministic source. Equal seeds yield equal rolls.
// The returned source must not be shared between goroutines.
func NewSeeded(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// NewCrypto returns a source drawing from crypto/rand. It is safe for
// concurrent use.
func NewCrypto() Source {
	return cryptoSource{}
}

type cryptoSource struct{}

func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("roller: invalid argument to Intn")
	}
	v, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("roller: read crypto source: %v", err))
	}
	return int(v.Int64())
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
