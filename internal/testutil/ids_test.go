package testutil

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceIDGenerator_Increments(t *testing.T) {
	gen := NewSequenceIDGenerator("q")

	assert.Equal(t, "q-1", gen.Generate())
	assert.Equal(t, "q-2", gen.Generate())
	assert.Equal(t, int64(2), gen.Count())

	gen.Reset()
	assert.Equal(t, "q-1", gen.Generate())
}

func TestSequenceIDGenerator_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "inst-1", NewSequenceIDGenerator("").Generate())
}

func TestSequenceIDGenerator_ConcurrentUnique(t *testing.T) {
	gen := NewSequenceIDGenerator("c")

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000)
}

func TestFixedIDGenerator(t *testing.T) {
	assert.Equal(t, "abc", NewFixedIDGenerator("abc").Generate())
	assert.Equal(t, "test-instance", NewFixedIDGenerator("").Generate())
}

func TestFixedEntropy_Reproducible(t *testing.T) {
	src := FixedEntropy(9)
	a, err := src()
	require.NoError(t, err)
	b, err := src()
	require.NoError(t, err)

	assert.Equal(t, a.IntN(1000), b.IntN(1000))
	assert.Equal(t, uint64(9), a.SeedValue())
}

func TestFailingEntropy(t *testing.T) {
	boom := errors.New("boom")
	_, err := FailingEntropy(boom)()
	assert.ErrorIs(t, err, boom)
}
