package rank

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ranking/object"
)

func distances(c *Collection) []float32 {
	out := make([]float32, 0, c.Len())
	for item := range c.All() {
		out = append(out, item.Distance)
	}
	return out
}

func vectorItem(id string, d float32) Item {
	return NewItem(object.NewVector(id, d), d)
}

func TestNewValidatesCapacity(t *testing.T) {
	tests := []struct {
		name             string
		initial, maximal int
		wantErr          bool
	}{
		{name: "valid", initial: 1, maximal: 10},
		{name: "unlimited", initial: 4, maximal: Unlimited},
		{name: "equal", initial: 3, maximal: 3},
		{name: "zero initial", initial: 0, maximal: 10, wantErr: true},
		{name: "negative initial", initial: -1, maximal: 10, wantErr: true},
		{name: "maximal below initial", initial: 5, maximal: 4, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(tc.initial, tc.maximal)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCapacity)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.True(t, c.IsEmpty())
		})
	}
}

func TestAddKeepsBestWithinCapacity(t *testing.T) {
	c, err := New(3, 3)
	require.NoError(t, err)
	for i, d := range []float32{5, 2, 8, 1, 3} {
		_, err := c.Add(vectorItem(string(rune('a'+i)), d))
		require.NoError(t, err)
	}
	assert.Equal(t, []float32{1, 2, 3}, distances(c))
	assert.Equal(t, float32(3), c.ThresholdDistance())
	assert.True(t, c.IsFull())
}

func TestThresholdBeforeFull(t *testing.T) {
	c, err := New(2, 4)
	require.NoError(t, err)
	assert.Equal(t, object.MaxDistance, c.ThresholdDistance())
	_, _ = c.Add(vectorItem("a", 1))
	_, _ = c.Add(vectorItem("b", 2))
	assert.Equal(t, object.MaxDistance, c.ThresholdDistance())
	_, _ = c.Add(vectorItem("c", 3))
	_, _ = c.Add(vectorItem("d", 4))
	assert.Equal(t, float32(4), c.ThresholdDistance())
}

func TestAddRejectsWhenFull(t *testing.T) {
	c, err := New(2, 2)
	require.NoError(t, err)
	_, _ = c.Add(vectorItem("a", 1))
	_, _ = c.Add(vectorItem("b", 2))
	before := c.Items()

	ok, err := c.Add(vectorItem("c", 5))
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = c.Add(vectorItem("d", 2))
	require.NoError(t, err)
	assert.False(t, ok, "equal to the worst item is not strictly better")
	assert.Equal(t, before, c.Items())

	ok, err = c.Add(vectorItem("e", 0.5))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float32{0.5, 1}, distances(c))
}

func TestEqualKeysInsertAfterRun(t *testing.T) {
	c, err := New(4, Unlimited)
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c"} {
		_, _ = c.Add(vectorItem(id, 1))
	}
	var ids []string
	for item := range c.All() {
		ids = append(ids, item.Locator())
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	assert.True(t, c.Remove(vectorItem("b", 1)))
	assert.False(t, c.Remove(vectorItem("b", 1)))
	assert.Equal(t, 2, c.Len())
}

func TestEmptyAccessors(t *testing.T) {
	c, err := New(1, 1)
	require.NoError(t, err)
	_, err = c.Last()
	assert.ErrorIs(t, err, ErrNoSuchElement)
	_, err = c.First()
	assert.ErrorIs(t, err, ErrNoSuchElement)
	_, err = c.LastDistance()
	assert.ErrorIs(t, err, ErrNoSuchElement)
	_, err = c.Get(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = c.RemoveAt(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestRemoveAtShifts(t *testing.T) {
	c, err := New(4, 4)
	require.NoError(t, err)
	for i, d := range []float32{1, 2, 3} {
		_, _ = c.Add(vectorItem(string(rune('a'+i)), d))
	}
	removed, err := c.RemoveAt(1)
	require.NoError(t, err)
	assert.Equal(t, float32(2), removed.Distance)
	assert.Equal(t, []float32{1, 3}, distances(c))
	last, err := c.LastDistance()
	require.NoError(t, err)
	assert.Equal(t, float32(3), last)
}

func TestSetMaximalCapacity(t *testing.T) {
	c, err := New(2, 5)
	require.NoError(t, err)
	for i := 5; i >= 1; i-- {
		_, _ = c.Add(vectorItem("", float32(i)))
	}
	require.NoError(t, c.SetMaximalCapacity(2))
	assert.Equal(t, []float32{1, 2}, distances(c))
	assert.Equal(t, float32(2), c.ThresholdDistance())

	require.NoError(t, c.SetMaximalCapacity(10))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, object.MaxDistance, c.ThresholdDistance())

	assert.ErrorIs(t, c.SetMaximalCapacity(0), ErrInvalidCapacity)
}

func TestClear(t *testing.T) {
	c, err := New(2, 2)
	require.NoError(t, err)
	_, _ = c.AddAll([]Item{vectorItem("a", 1), vectorItem("b", 2)})
	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Equal(t, object.MaxDistance, c.ThresholdDistance())
}

func TestDescendingComparator(t *testing.T) {
	c, err := New(2, 2, WithComparator(Descending))
	require.NoError(t, err)
	for _, score := range []float32{0.2, 0.9, 0.5, 0.1} {
		_, _ = c.Add(vectorItem("", score))
	}
	assert.Equal(t, []float32{0.9, 0.5}, distances(c))
	var got []float32
	for item := range c.DistanceRestricted(0.4, 1) {
		got = append(got, item.Distance)
	}
	assert.Equal(t, []float32{0.9, 0.5}, got)
}

func TestRandomInsertionsKeepInvariants(t *testing.T) {
	rnd := rand.New(rand.NewPCG(7, 7))
	for trial := 0; trial < 50; trial++ {
		capacity := 1 + rnd.IntN(20)
		c, err := New(1, capacity)
		require.NoError(t, err)
		var all []float32
		for i := 0; i < 200; i++ {
			d := float32(rnd.IntN(100))
			full := c.IsFull()
			threshold := c.ThresholdDistance()
			before := c.Items()
			ok, err := c.Add(vectorItem("", d))
			require.NoError(t, err)
			all = append(all, d)
			if full && d > threshold {
				assert.False(t, ok)
				assert.Equal(t, before, c.Items())
			}
			if rnd.IntN(10) == 0 && c.Len() > 0 {
				removed, err := c.RemoveAt(rnd.IntN(c.Len()))
				require.NoError(t, err)
				for j, v := range all {
					if v == removed.Distance {
						all = append(all[:j], all[j+1:]...)
						break
					}
				}
			}
			require.LessOrEqual(t, c.Len(), capacity)
			got := distances(c)
			require.True(t, sort.SliceIsSorted(got, func(a, b int) bool { return got[a] < got[b] }))
			if c.IsFull() {
				require.Equal(t, got[len(got)-1], c.ThresholdDistance())
			} else {
				require.Equal(t, object.MaxDistance, c.ThresholdDistance())
			}
		}
	}
}

func TestDistanceRestricted(t *testing.T) {
	rnd := rand.New(rand.NewPCG(11, 11))
	c, err := New(8, Unlimited)
	require.NoError(t, err)
	var all []float32
	for i := 0; i < 500; i++ {
		d := rnd.Float32() * 10
		all = append(all, d)
		_, _ = c.Add(vectorItem("", d))
	}
	sort.Slice(all, func(a, b int) bool { return all[a] < all[b] })
	for trial := 0; trial < 100; trial++ {
		lo := rnd.Float32() * 10
		hi := lo + rnd.Float32()*5
		var want []float32
		for _, d := range all {
			if d >= lo && d <= hi {
				want = append(want, d)
			}
		}
		var got []float32
		for item := range c.DistanceRestricted(lo, hi) {
			got = append(got, item.Distance)
		}
		assert.Equal(t, want, got)
	}
	var none []float32
	for item := range c.DistanceRestricted(20, 30) {
		none = append(none, item.Distance)
	}
	assert.Empty(t, none)
}

func TestDistanceRestrictedStopsEarly(t *testing.T) {
	c, err := New(4, Unlimited)
	require.NoError(t, err)
	for _, d := range []float32{1, 2, 3, 4} {
		_, _ = c.Add(vectorItem("", d))
	}
	count := 0
	for range c.DistanceRestricted(0, 10) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestDistanceRestrictedReadsCurrentItems(t *testing.T) {
	c, err := New(4, Unlimited)
	require.NoError(t, err)
	for _, d := range []float32{1, 2, 3} {
		_, _ = c.Add(vectorItem("", d))
	}
	seq := c.DistanceRestricted(0, 10)
	c.Clear()
	var got []float32
	assert.NotPanics(t, func() {
		for item := range seq {
			got = append(got, item.Distance)
		}
	})
	assert.Empty(t, got)

	_, _ = c.Add(vectorItem("", 5))
	_, _ = c.Add(vectorItem("", 20))
	for item := range seq {
		got = append(got, item.Distance)
	}
	assert.Equal(t, []float32{5}, got)
}

func TestRewrapSharesPayload(t *testing.T) {
	v := object.NewVector("a", 1, 2)
	item := NewItem(v, 3)
	assert.Equal(t, float32(3), item.OriginalDistance())
	re := Rewrap(item, 7)
	assert.Same(t, v, re.Object.(*object.Vector))
	assert.Equal(t, float32(7), re.Distance)
	assert.Equal(t, float32(3), re.OriginalDistance())
	again := Rewrap(re, 9)
	assert.Equal(t, float32(3), again.OriginalDistance())
	assert.Equal(t, float32(3), item.Distance)
}
