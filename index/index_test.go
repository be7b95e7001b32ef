package index_test

import (
	"encoding/binary"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ranking/index"
	"github.com/viant/ranking/index/bruteforce"
	"github.com/viant/ranking/index/cover"
	"github.com/viant/ranking/object"
	"github.com/viant/ranking/rank"
)

func vectors(seed uint64, n, dim int) []*object.Vector {
	rnd := rand.New(rand.NewPCG(seed, seed))
	out := make([]*object.Vector, n)
	for i := range out {
		values := make([]float32, dim)
		for j := range values {
			values[j] = rnd.Float32()
		}
		out[i] = object.NewVector(string(rune('a'+i%26))+string(rune('0'+i/26%10))+string(rune('A'+i/260)), values...)
	}
	return out
}

func locators(c *rank.Collection) []string {
	var out []string
	for item := range c.All() {
		out = append(out, item.Locator())
	}
	return out
}

func indexes() map[string]index.Index {
	return map[string]index.Index{
		"bruteforce":      bruteforce.New(object.MetricEuclidean),
		"cover":           cover.New(cover.WithMetric(object.MetricEuclidean)),
		"cover-bestfirst": cover.New(cover.WithMetric(object.MetricEuclidean), cover.WithBestFirst(true), cover.WithBase(2)),
	}
}

func TestIndexesAgree(t *testing.T) {
	data := vectors(1, 400, 6)
	queries := vectors(2, 10, 6)
	reference := bruteforce.New(object.MetricEuclidean)
	require.NoError(t, reference.Build(data))

	for name, idx := range indexes() {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, idx.Build(data))
			assert.Equal(t, len(data), idx.Len())
			for _, q := range queries {
				want, err := reference.KNN(q, 5)
				require.NoError(t, err)
				got, err := idx.KNN(q, 5)
				require.NoError(t, err)
				assert.Equal(t, locators(want), locators(got))

				wantRange, err := reference.Range(q, 0.6)
				require.NoError(t, err)
				gotRange, err := idx.Range(q, 0.6)
				require.NoError(t, err)
				assert.Equal(t, locators(wantRange), locators(gotRange))
			}
		})
	}
}

func TestIndexBinaryRoundTrip(t *testing.T) {
	data := vectors(3, 50, 3)
	for name, idx := range indexes() {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, idx.Build(data))
			blob, err := idx.MarshalBinary()
			require.NoError(t, err)

			restored := indexes()[name]
			require.NoError(t, restored.UnmarshalBinary(blob))
			assert.Equal(t, len(data), restored.Len())

			q := data[7]
			got, err := restored.KNN(q, 1)
			require.NoError(t, err)
			first, err := got.First()
			require.NoError(t, err)
			assert.Equal(t, q.ID, first.Locator())
			assert.Zero(t, first.Distance)
		})
	}
}

func TestIndexErrors(t *testing.T) {
	idx := bruteforce.New(object.MetricCosine)
	assert.Error(t, idx.Build([]*object.Vector{object.NewVector("a", 1, 2), object.NewVector("b", 1)}))
	require.NoError(t, idx.Build([]*object.Vector{object.NewVector("a", 1, 2)}))
	_, err := idx.KNN(object.NewVector("q", 1), 1)
	assert.Error(t, err)
	_, err = idx.KNN(object.NewVector("q", 1, 2), 0)
	assert.ErrorIs(t, err, rank.ErrInvalidCapacity)

	empty := cover.New()
	got, err := empty.KNN(object.NewVector("q", 1), 3)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestDecodeVectorsRejectsForgedCount(t *testing.T) {
	header := binary.LittleEndian.AppendUint32([]byte("ROBJ\x01"), 2)
	header = binary.LittleEndian.AppendUint32(header, 0x7fffffff)
	_, err := index.DecodeVectors(header)
	assert.ErrorIs(t, err, object.ErrInvalidStream)

	idx := bruteforce.New(object.MetricEuclidean)
	assert.Error(t, idx.UnmarshalBinary(header))
}
