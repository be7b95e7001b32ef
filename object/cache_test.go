package object

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceCacheConcurrentAppend(t *testing.T) {
	cache := NewDistanceCache(NewVector("q", 0, 0), Euclidean)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := cache.Append(NewVector("", float32(i), 0))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	require.Equal(t, 50, cache.Len())
	for i := 0; i < cache.Len(); i++ {
		v := cache.Object(i).(*Vector)
		assert.Equal(t, v.Values[0], cache.Distance(i))
	}
}

func TestDistanceCacheInsert(t *testing.T) {
	cache := NewDistanceCache(NewVector("q", 0), Euclidean)
	_, err := cache.Append(NewVector("a", 1))
	require.NoError(t, err)
	_, err = cache.Append(NewVector("c", 3))
	require.NoError(t, err)
	d, err := cache.Insert(1, NewVector("b", 2))
	require.NoError(t, err)
	assert.Equal(t, float32(2), d)
	assert.Equal(t, "b", cache.Object(1).Locator())
	assert.Equal(t, float32(3), cache.Distance(2))
	assert.Equal(t, UnknownDistance, cache.Distance(7))

	_, err = cache.Insert(9, NewVector("x", 1))
	assert.Error(t, err)
	_, err = cache.Append(NewSequence("s", "x"))
	assert.ErrorIs(t, err, ErrIncompatible)
}
