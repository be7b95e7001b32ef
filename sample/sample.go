// Package sample selects uniform random subsets from materialized lists and
// from one-pass sources.
package sample

import (
	"iter"
	"math/rand/v2"
)

// FromSlice selects count elements of items uniformly at random.
//
// Without unique, count independent draws are made with replacement. With
// unique, distinct positions are selected: when count covers the whole list
// every element is returned, when count is below half of the list positions
// are drawn by rejection, otherwise len(items)-count positions are drawn for
// exclusion and the complement is returned in list order.
func FromSlice[T any](rnd *rand.Rand, items []T, count int, unique bool) []T {
	if count <= 0 || len(items) == 0 {
		return nil
	}
	if !unique {
		out := make([]T, count)
		for i := range out {
			out[i] = items[rnd.IntN(len(items))]
		}
		return out
	}
	if count >= len(items) {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}
	if count < len(items)/2 {
		chosen := make(map[int]struct{}, count)
		out := make([]T, 0, count)
		for len(out) < count {
			i := rnd.IntN(len(items))
			if _, ok := chosen[i]; ok {
				continue
			}
			chosen[i] = struct{}{}
			out = append(out, items[i])
		}
		return out
	}
	excluded := make([]bool, len(items))
	for remaining := len(items) - count; remaining > 0; {
		i := rnd.IntN(len(items))
		if excluded[i] {
			continue
		}
		excluded[i] = true
		remaining--
	}
	out := make([]T, 0, count)
	for i, item := range items {
		if !excluded[i] {
			out = append(out, item)
		}
	}
	return out
}

// FromSeq selects count elements of a one-pass source with reservoir
// sampling, reading the source exactly once and holding at most count
// elements. When equal is not nil, elements equal to one already held are
// skipped.
func FromSeq[T any](rnd *rand.Rand, seq iter.Seq[T], count int, equal func(a, b T) bool) []T {
	if count <= 0 {
		return nil
	}
	held := make([]T, 0, count)
	seen := 0
	for item := range seq {
		if equal != nil && contains(held, item, equal) {
			continue
		}
		seen++
		if len(held) < count {
			held = append(held, item)
			continue
		}
		if j := rnd.IntN(seen); j < count {
			held[j] = item
		}
	}
	return held
}

func contains[T any](held []T, item T, equal func(a, b T) bool) bool {
	for _, h := range held {
		if equal(h, item) {
			return true
		}
	}
	return false
}
