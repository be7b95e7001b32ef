package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(keywords []*Keyword) []string {
	out := make([]string, len(keywords))
	for i, k := range keywords {
		out[i] = k.Text
	}
	return out
}

func newReducer() *Reducer {
	r := NewReducer(map[string]float64{"rare": 10})
	for _, o := range []struct {
		text       string
		confidence float64
	}{
		{"cat", 0.5}, {"cat", 0.5}, {"cat", 0.6},
		{"dog", 0.9}, {"dog", 0.95},
		{"rare", 0.3},
		{"bird", 0.99},
	} {
		r.Observe(o.text, o.confidence)
	}
	return r
}

func TestTop(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		criterion Criterion
		want      []string
	}{
		{name: "frequency", n: 2, criterion: ByFrequency, want: []string{"cat", "dog"}},
		{name: "confidence", n: 2, criterion: ByConfidence, want: []string{"bird", "dog"}},
		{name: "boosted", n: 2, criterion: ByBoostedScore, want: []string{"rare", "dog"}},
		{name: "ties broken by text", n: 4, criterion: ByFrequency, want: []string{"cat", "dog", "bird", "rare"}},
		{name: "n above size", n: 10, criterion: ByFrequency, want: []string{"cat", "dog", "bird", "rare"}},
	}
	r := newReducer()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Top(tc.n, tc.criterion)
			require.NoError(t, err)
			assert.Equal(t, tc.want, texts(got))
		})
	}
}

func TestTopEmpty(t *testing.T) {
	got, err := NewReducer(nil).Top(3, ByFrequency)
	require.NoError(t, err)
	assert.Empty(t, got)
	got, err = newReducer().Top(0, ByFrequency)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseCriterion(t *testing.T) {
	c, err := ParseCriterion("boosted")
	require.NoError(t, err)
	assert.Equal(t, ByBoostedScore, c)
	_, err = ParseCriterion("popularity")
	assert.Error(t, err)
}
