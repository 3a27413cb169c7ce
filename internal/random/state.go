// Package random provides the seeded generator owned by one bound function
// instance.
//
// A State is never shared between instances and is not safe for
// concurrent use: the host evaluates the rows of one instance
// sequentially, so the generator needs no locking. There is no
// process-wide seed; every State carries its own.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// increment is the fixed PCG stream selector. Only the seed varies between
// states so that equal seeds always reproduce equal sequences.
const increment = 0xda3e39cb94b95bdb

// State is a seeded pseudo-random generator. It is not suitable for
// cryptographic use.
type State struct {
	src  *rand.PCG
	rng  *rand.Rand
	seed uint64
}

// New returns a State seeded with seed. Two States built from the same
// seed produce identical sequences.
func New(seed uint64) *State {
	src := rand.NewPCG(seed, increment)
	return &State{src: src, rng: rand.New(src), seed: seed}
}

// NewFromEntropy returns a State seeded from the operating system's
// entropy source.
func NewFromEntropy() (*State, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("read entropy: %w", err)
	}
	return New(binary.LittleEndian.Uint64(b[:])), nil
}

// Seed restarts the generator from seed.
func (s *State) Seed(seed uint64) {
	s.src.Seed(seed, increment)
	s.seed = seed
}

// SeedValue returns the seed the generator was last started from.
func (s *State) SeedValue() uint64 {
	return s.seed
}

// IntN returns a uniform value in [0, n). It panics if n <= 0.
func (s *State) IntN(n int) int {
	return s.rng.IntN(n)
}

// Read fills p with pseudo-random bytes. It always returns len(p), nil.
func (s *State) Read(p []byte) (int, error) {
	var word [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(word[:], s.rng.Uint64())
		copy(p[i:], word[:])
	}
	return len(p), nil
}
