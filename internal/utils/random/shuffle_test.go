package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleDrawsWithoutReplacement(t *testing.T) {
	pool := []int{1, 2, 3, 4, 5, 6, 7, 8}

	got, err := Sample(pool, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	seen := make(map[int]bool)
	for _, v := range got {
		assert.False(t, seen[v], "value %d drawn twice", v)
		seen[v] = true
		assert.Contains(t, pool, v)
	}
}

func TestSampleClampsToPoolSize(t *testing.T) {
	got, err := Sample([]string{"a", "b"}, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, got)
}

func TestSampleZeroCount(t *testing.T) {
	got, err := Sample([]int{1, 2, 3}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSampleLeavesInputUntouched(t *testing.T) {
	pool := []int{1, 2, 3, 4, 5}
	_, err := Sample(pool, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, pool)
}

func TestShuffleKeepsElements(t *testing.T) {
	s := []int{1, 2, 3, 4, 5}
	require.NoError(t, Shuffle(s))
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5}, s)
}
