package sample

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ranking/object"
)

func newRand(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func distinct(t *testing.T, values []int) {
	t.Helper()
	seen := map[int]bool{}
	for _, v := range values {
		require.False(t, seen[v], "duplicate %d", v)
		seen[v] = true
	}
}

func TestFromSlice(t *testing.T) {
	rnd := newRand(1)
	items := ints(100)

	tests := []struct {
		name    string
		count   int
		unique  bool
		wantLen int
	}{
		{name: "with replacement", count: 250, unique: false, wantLen: 250},
		{name: "unique rejection", count: 10, unique: true, wantLen: 10},
		{name: "unique exclusion", count: 90, unique: true, wantLen: 90},
		{name: "unique all", count: 100, unique: true, wantLen: 100},
		{name: "unique more than list", count: 500, unique: true, wantLen: 100},
		{name: "zero", count: 0, unique: true, wantLen: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FromSlice(rnd, items, tc.count, tc.unique)
			assert.Len(t, got, tc.wantLen)
			if tc.unique {
				distinct(t, got)
			}
		})
	}
}

func TestFromSliceExclusionKeepsOrder(t *testing.T) {
	got := FromSlice(newRand(3), ints(20), 15, true)
	assert.True(t, slices.IsSorted(got))
}

func TestFromSeqReservoirUniformity(t *testing.T) {
	const (
		n      = 50
		k      = 5
		trials = 100000
	)
	rnd := newRand(42)
	counts := make([]int, n)
	for trial := 0; trial < trials; trial++ {
		for _, v := range FromSeq(rnd, slices.Values(ints(n)), k, nil) {
			counts[v]++
		}
	}
	want := float64(trials) * k / n
	for i, c := range counts {
		assert.InDelta(t, want, float64(c), want*0.05, "element %d", i)
	}
}

func TestFromSeqShortStream(t *testing.T) {
	got := FromSeq(newRand(5), slices.Values(ints(3)), 10, nil)
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Nil(t, FromSeq(newRand(5), slices.Values(ints(3)), 0, nil))
}

func TestFromSeqSkipsDuplicates(t *testing.T) {
	source := []object.Object{
		object.NewVector("a", 1),
		object.NewVector("a", 2),
		object.NewVector("b", 1),
		object.NewVector("b", 3),
		object.NewVector("c", 1),
	}
	got := FromSeq(newRand(9), slices.Values(source), 5, object.Equal)
	require.Len(t, got, 3)
	var locators []string
	for _, o := range got {
		locators = append(locators, o.Locator())
	}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, locators)
}
