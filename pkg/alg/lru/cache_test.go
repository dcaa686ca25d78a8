package lru_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/memefang/pkg/alg/lru"
)

func TestNew_RequiresLimit(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { lru.New[string, int]() })
}

func TestCache_GetPut(t *testing.T) {
	t.Parallel()

	c := lru.New(lru.WithMaxEntries[string, int](2))

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// "b" is now least recently used.
	c.Put("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.InDelta(t, 1.0/3.0, stats.HitRate(), 1e-9)
}

func TestCache_Replace(t *testing.T) {
	t.Parallel()

	c := lru.New(lru.WithMaxEntries[string, int](2))
	c.Put("a", 1)
	c.Put("a", 5)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 5, v)
	assert.Equal(t, 1, c.Len())
}

func TestCache_SizeEviction(t *testing.T) {
	t.Parallel()

	size := func(s string) int64 { return int64(len(s)) }
	c := lru.New(lru.WithMaxBytes[int, string](10, size))

	c.Put(1, "aaaa")
	c.Put(2, "bbbb")
	c.Put(3, "cccc")

	_, ok := c.Get(1)
	assert.False(t, ok)
	assert.Equal(t, int64(8), c.Stats().CurrentSize)

	c.Put(4, "this value is too large")
	_, ok = c.Get(4)
	assert.False(t, ok)

	c.Put(2, "bb")
	assert.Equal(t, int64(6), c.Stats().CurrentSize)
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := lru.New(lru.WithMaxEntries[int, int](16))

	var wg sync.WaitGroup

	for g := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range 100 {
				c.Put(g*1000+i, i)
				c.Get(g*1000 + i/2)
			}
		}()
	}

	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
}

func TestStats_HitRateEmpty(t *testing.T) {
	t.Parallel()

	assert.Zero(t, lru.Stats{}.HitRate())
}
