// Package iterate composes object sources: concatenation, filtering,
// limiting, measuring against a reference and merging ranked sources.
package iterate

import (
	"container/heap"
	"iter"

	"github.com/viant/ranking/object"
	"github.com/viant/ranking/rank"
)

// Concat yields the elements of every source in turn.
func Concat[T any](sources ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, source := range sources {
			for v := range source {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Filter yields the elements of source accepted by keep.
func Filter[T any](source iter.Seq[T], keep func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range source {
			if keep(v) && !yield(v) {
				return
			}
		}
	}
}

// Limit yields at most n elements of source.
func Limit[T any](source iter.Seq[T], n int) iter.Seq[T] {
	return func(yield func(T) bool) {
		if n <= 0 {
			return
		}
		i := 0
		for v := range source {
			if !yield(v) {
				return
			}
			if i++; i >= n {
				return
			}
		}
	}
}

// Objects yields the payloads of ranked items.
func Objects(items iter.Seq[rank.Item]) iter.Seq[object.Object] {
	return func(yield func(object.Object) bool) {
		for item := range items {
			if !yield(item.Object) {
				return
			}
		}
	}
}

// Ranked measures every object of source against reference. Iteration stops
// at the first distance error, which is yielded with a zero item.
func Ranked(source iter.Seq[object.Object], reference object.Object, distance object.DistanceFunc) iter.Seq2[rank.Item, error] {
	return func(yield func(rank.Item, error) bool) {
		for obj := range source {
			d, err := distance(reference, obj)
			if err != nil {
				yield(rank.Item{}, err)
				return
			}
			if !yield(rank.NewItem(obj, d), nil) {
				return
			}
		}
	}
}

// Collect adds the items of source to c and returns the number accepted.
func Collect(c *rank.Collection, source iter.Seq2[rank.Item, error]) (int, error) {
	accepted := 0
	for item, err := range source {
		if err != nil {
			return accepted, err
		}
		ok, err := c.Add(item)
		if err != nil {
			return accepted, err
		}
		if ok {
			accepted++
		}
	}
	return accepted, nil
}

// Merge yields the items of several distance-ordered sources in ascending
// distance order.
func Merge(sources ...iter.Seq[rank.Item]) iter.Seq[rank.Item] {
	return func(yield func(rank.Item) bool) {
		h := &cursorHeap{}
		for _, source := range sources {
			next, stop := iter.Pull(source)
			defer stop()
			if item, ok := next(); ok {
				heap.Push(h, cursor{item: item, next: next})
			}
		}
		for h.Len() > 0 {
			top := heap.Pop(h).(cursor)
			if !yield(top.item) {
				return
			}
			if item, ok := top.next(); ok {
				heap.Push(h, cursor{item: item, next: top.next})
			}
		}
	}
}

type cursor struct {
	item rank.Item
	next func() (rank.Item, bool)
}

type cursorHeap []cursor

func (h cursorHeap) Len() int            { return len(h) }
func (h cursorHeap) Less(i, j int) bool  { return h[i].item.Distance < h[j].item.Distance }
func (h cursorHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *cursorHeap) Push(x interface{}) { *h = append(*h, x.(cursor)) }
func (h *cursorHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
