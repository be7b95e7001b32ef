// Package keyword reduces keyword classification results into the top
// keywords by frequency, confidence or boosted score.
package keyword

import (
	"fmt"
	"sort"

	"github.com/viant/ranking/object"
	"github.com/viant/ranking/rank"
)

// Criterion selects the score keywords are ranked by.
type Criterion int

const (
	// ByFrequency ranks by the number of observations.
	ByFrequency Criterion = iota
	// ByConfidence ranks by the mean observed confidence.
	ByConfidence
	// ByBoostedScore ranks by the summed confidence multiplied by the boost.
	ByBoostedScore
)

// ParseCriterion resolves a criterion by name.
func ParseCriterion(name string) (Criterion, error) {
	switch name {
	case "", "frequency":
		return ByFrequency, nil
	case "confidence":
		return ByConfidence, nil
	case "boosted", "boosted_score":
		return ByBoostedScore, nil
	}
	return 0, fmt.Errorf("keyword: unsupported criterion %q", name)
}

// Keyword accumulates the observations of one keyword.
type Keyword struct {
	Text       string
	Count      int
	Confidence float64
	Boost      float64
}

// Locator returns the keyword text.
func (k *Keyword) Locator() string { return k.Text }

// DataEqual reports whether other is the same keyword.
func (k *Keyword) DataEqual(other object.Object) bool {
	o, ok := other.(*Keyword)
	return ok && o.Text == k.Text
}

// MeanConfidence returns the average confidence of the observations.
func (k *Keyword) MeanConfidence() float64 {
	if k.Count == 0 {
		return 0
	}
	return k.Confidence / float64(k.Count)
}

// BoostedScore returns the summed confidence scaled by the boost.
func (k *Keyword) BoostedScore() float64 {
	return k.Confidence * k.Boost
}

// Score returns the keyword score under criterion.
func (k *Keyword) Score(criterion Criterion) float64 {
	switch criterion {
	case ByConfidence:
		return k.MeanConfidence()
	case ByBoostedScore:
		return k.BoostedScore()
	default:
		return float64(k.Count)
	}
}

// Reducer collects keyword observations.
type Reducer struct {
	keywords map[string]*Keyword
	boosts   map[string]float64
}

// NewReducer creates a reducer; boosts maps keywords to score multipliers,
// keywords without a boost use 1.
func NewReducer(boosts map[string]float64) *Reducer {
	return &Reducer{keywords: make(map[string]*Keyword), boosts: boosts}
}

// Observe records one classification of text with confidence.
func (r *Reducer) Observe(text string, confidence float64) {
	k, ok := r.keywords[text]
	if !ok {
		boost, found := r.boosts[text]
		if !found {
			boost = 1
		}
		k = &Keyword{Text: text, Boost: boost}
		r.keywords[text] = k
	}
	k.Count++
	k.Confidence += confidence
}

// Len returns the number of distinct keywords observed.
func (r *Reducer) Len() int { return len(r.keywords) }

// Top returns at most n keywords with the highest score under criterion;
// ties are broken by keyword text.
func (r *Reducer) Top(n int, criterion Criterion) ([]*Keyword, error) {
	if n <= 0 || len(r.keywords) == 0 {
		return nil, nil
	}
	selected, err := rank.New(min(n, len(r.keywords)), n, rank.WithComparator(rank.Descending))
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(r.keywords))
	for text := range r.keywords {
		texts = append(texts, text)
	}
	sort.Strings(texts)
	for _, text := range texts {
		k := r.keywords[text]
		if _, err := selected.Add(rank.NewItem(k, float32(k.Score(criterion)))); err != nil {
			return nil, err
		}
	}
	out := make([]*Keyword, 0, selected.Len())
	for item := range selected.All() {
		out = append(out, item.Object.(*Keyword))
	}
	return out, nil
}
