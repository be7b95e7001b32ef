package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ranking/object"
	"github.com/viant/ranking/rank"
)

func TestCost(t *testing.T) {
	tests := []struct {
		name  string
		model CostModel
		a, b  string
		want  float32
	}{
		{name: "identical", model: Levenshtein, a: "ACGT", b: "ACGT", want: 0},
		{name: "kitten sitting", model: Levenshtein, a: "kitten", b: "sitting", want: 3},
		{name: "empty", model: Levenshtein, a: "", b: "abc", want: 3},
		{name: "cheap gaps", model: Simple{Mismatch: 5, GapCost: 1}, a: "AC", b: "AG", want: 2},
		{name: "expensive gaps", model: Simple{Mismatch: 1, GapCost: 5}, a: "AC", b: "AG", want: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Cost(tc.model, tc.a, tc.b))
		})
	}
}

func TestDistanceRanksSequences(t *testing.T) {
	distance := Distance(Levenshtein)
	query := object.NewSequence("q", "GATTACA")
	c, err := rank.New(2, 2)
	require.NoError(t, err)
	for _, s := range []*object.Sequence{
		object.NewSequence("far", "CCCCCCC"),
		object.NewSequence("near", "GATTACA"),
		object.NewSequence("mid", "GATTTCA"),
	} {
		d, err := distance(query, s)
		require.NoError(t, err)
		_, err = c.Add(rank.NewItem(s, d))
		require.NoError(t, err)
	}
	var ids []string
	for item := range c.All() {
		ids = append(ids, item.Locator())
	}
	assert.Equal(t, []string{"near", "mid"}, ids)

	_, err = distance(query, object.NewVector("v", 1))
	assert.ErrorIs(t, err, object.ErrIncompatible)
}
