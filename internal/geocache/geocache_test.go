package geocache_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dstvimport/dstv/internal/geocache"
)

func TestGetOrComputeMissThenHit(t *testing.T) {
	c := geocache.New[int](0)
	calls := 0
	compute := func() int { calls++; return 7 }

	v := c.GetOrCompute("k", compute)
	require.Equal(t, 7, v)
	require.Equal(t, 1, calls)

	v = c.GetOrCompute("k", compute)
	require.Equal(t, 7, v)
	require.Equal(t, 1, calls, "second call must hit the cache, not recompute")
}

func TestStatsCountsHitsAndMisses(t *testing.T) {
	c := geocache.New[string](0)
	_, ok := c.Get("absent")
	require.False(t, ok)
	c.Put("present", "value")
	_, ok = c.Get("present")
	require.True(t, ok)

	stats := c.Stats()
	require.Equal(t, int64(1), stats.Hits)
	require.Equal(t, int64(1), stats.Misses)
}

func TestCacheGenericOverDifferentValueTypes(t *testing.T) {
	type point struct{ X, Y float64 }
	c := geocache.New[point](0)
	c.Put("origin", point{0, 0})
	v, ok := c.Get("origin")
	require.True(t, ok)
	require.Equal(t, point{0, 0}, v)
}

func TestCacheDefaultCapacityAppliedForNonPositive(t *testing.T) {
	// must not panic on construction with capacity <= 0.
	c := geocache.New[int](-5)
	c.Put("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
}
