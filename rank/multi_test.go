package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ranking/object"
)

func sublistIDs(t *testing.T, c *Collection, index int) []string {
	t.Helper()
	sub, err := c.Sublist(index)
	require.NoError(t, err)
	var ids []string
	for item := range sub.All() {
		ids = append(ids, item.Locator())
	}
	return ids
}

func TestSublistsOrderBySubDistance(t *testing.T) {
	c, err := New(3, 3, WithSublists(2))
	require.NoError(t, err)
	require.Equal(t, 2, c.Sublists())

	_, err = c.Add(NewMetaItem(object.NewVector("a"), 3, 0.1, 0.9))
	require.NoError(t, err)
	_, err = c.Add(NewMetaItem(object.NewVector("b"), 1, 0.5, 0.2))
	require.NoError(t, err)
	_, err = c.Add(NewMetaItem(object.NewVector("c"), 2, 0.3, 0.4))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c", "b"}, sublistIDs(t, c, 0))
	assert.Equal(t, []string{"b", "c", "a"}, sublistIDs(t, c, 1))

	ok, err := c.Add(NewMetaItem(object.NewVector("d"), 0.5, 0.9, 0.1))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"c", "b", "d"}, sublistIDs(t, c, 0), "evicted item a leaves the sublists")
	assert.Equal(t, []string{"d", "b", "c"}, sublistIDs(t, c, 1))
}

func TestSublistsRejectMismatch(t *testing.T) {
	c, err := New(3, 3, WithSublists(2))
	require.NoError(t, err)
	ok, err := c.Add(NewMetaItem(object.NewVector("a"), 1, 0.1))
	assert.ErrorIs(t, err, ErrSubDistances)
	assert.False(t, ok)
	assert.True(t, c.IsEmpty())

	_, err = c.Add(NewItem(object.NewVector("b"), 1))
	assert.ErrorIs(t, err, ErrSubDistances)
}

func TestSublistsRemoveAndClear(t *testing.T) {
	c, err := New(3, Unlimited, WithSublists(1))
	require.NoError(t, err)
	a := NewMetaItem(object.NewVector("a"), 1, 2)
	b := NewMetaItem(object.NewVector("b"), 2, 1)
	_, _ = c.AddAll([]Item{a, b})

	assert.True(t, c.Remove(a))
	assert.Equal(t, []string{"b"}, sublistIDs(t, c, 0))

	c.Clear()
	assert.Empty(t, sublistIDs(t, c, 0))

	_, err = c.Sublist(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestNegativeSublists(t *testing.T) {
	_, err := New(1, 1, WithSublists(-1))
	assert.ErrorIs(t, err, ErrSubDistances)
}
