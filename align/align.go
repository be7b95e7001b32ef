// Package align scores global alignments of symbol sequences with a simple
// cost model and exposes the score as an object distance.
package align

import (
	"fmt"

	"github.com/viant/ranking/object"
)

// CostModel prices the edit operations of an alignment.
type CostModel interface {
	// Substitute returns the cost of aligning a with b.
	Substitute(a, b rune) float32
	// Gap returns the cost of aligning a symbol against a gap.
	Gap() float32
}

// Simple charges Match for equal symbols, Mismatch otherwise and GapCost
// per gap position.
type Simple struct {
	Match    float32
	Mismatch float32
	GapCost  float32
}

// Levenshtein is the unit-cost edit model.
var Levenshtein = Simple{Match: 0, Mismatch: 1, GapCost: 1}

// Substitute implements CostModel.
func (s Simple) Substitute(a, b rune) float32 {
	if a == b {
		return s.Match
	}
	return s.Mismatch
}

// Gap implements CostModel.
func (s Simple) Gap() float32 { return s.GapCost }

// Cost returns the minimal global alignment cost of a and b.
func Cost(model CostModel, a, b string) float32 {
	ra, rb := []rune(a), []rune(b)
	gap := model.Gap()
	prev := make([]float32, len(rb)+1)
	curr := make([]float32, len(rb)+1)
	for j := range prev {
		prev[j] = float32(j) * gap
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = float32(i) * gap
		for j := 1; j <= len(rb); j++ {
			best := prev[j-1] + model.Substitute(ra[i-1], rb[j-1])
			if d := prev[j] + gap; d < best {
				best = d
			}
			if d := curr[j-1] + gap; d < best {
				best = d
			}
			curr[j] = best
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Distance returns an object distance over *object.Sequence payloads.
func Distance(model CostModel) object.DistanceFunc {
	return func(a, b object.Object) (float32, error) {
		sa, ok := a.(*object.Sequence)
		if !ok {
			return object.UnknownDistance, fmt.Errorf("%w: %T is not a sequence", object.ErrIncompatible, a)
		}
		sb, ok := b.(*object.Sequence)
		if !ok {
			return object.UnknownDistance, fmt.Errorf("%w: %T is not a sequence", object.ErrIncompatible, b)
		}
		return Cost(model, sa.Text, sb.Text), nil
	}
}
