package prng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Uint32(), b.Uint32(), "streams diverged at draw %d", i)
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(42)
	b := New(43)
	same := true
	for i := 0; i < 100; i++ {
		if a.Uint32() != b.Uint32() {
			same = false
			break
		}
	}
	assert.False(t, same, "different seeds produced identical streams")
}

func TestIntnRange(t *testing.T) {
	s := New(DefaultSeed)
	for i := 0; i < 10000; i++ {
		v := s.Intn(17)
		require.True(t, v >= 0 && v < 17, "draw %d out of range: %d", i, v)
	}
}

func TestIntnPanicsOnNonPositive(t *testing.T) {
	s := New(1)
	assert.Panics(t, func() { s.Intn(0) })
	assert.Panics(t, func() { s.Intn(-3) })
}

func TestShuffleIsPermutation(t *testing.T) {
	s := New(7)
	values := make([]int, 50)
	for i := range values {
		values[i] = i
	}
	s.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
	seen := make(map[int]bool, len(values))
	for _, v := range values {
		require.False(t, seen[v], "value %d repeated after shuffle", v)
		seen[v] = true
	}
	assert.Len(t, seen, 50)
}

func TestShuffleDeterministic(t *testing.T) {
	shuffled := func(seed uint32) []int {
		s := New(seed)
		values := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		s.Shuffle(len(values), func(i, j int) {
			values[i], values[j] = values[j], values[i]
		})
		return values
	}
	assert.Equal(t, shuffled(11), shuffled(11))
}
