package rank

import (
	"fmt"

	"github.com/viant/ranking/object"
)

// ThresholdPolicy selects which distance ThresholdDistance reports for a
// re-ranking collection.
type ThresholdPolicy int

const (
	// ThresholdRanked reports the ranking key of the worst item.
	ThresholdRanked ThresholdPolicy = iota
	// ThresholdOriginal reports the largest originally measured distance among
	// the stored items, which stays a valid pruning bound for the original
	// metric while items are ordered by a refined key.
	ThresholdOriginal
)

// RerankConfig describes how a Reranking computes its ranking key:
// OriginalDistance*Weight + Distance(Reference, payload).
type RerankConfig struct {
	Reference object.Object
	Distance  object.DistanceFunc
	Weight    float32
	// RankOnAdd re-ranks every added item; otherwise items keep their
	// distance and views are derived later with Rerank.
	RankOnAdd bool
	Policy    ThresholdPolicy
}

// Reranking is a bounded collection ordered by an auxiliary distance. Its
// memory holds the same items as the collection, ordered by their original
// distance, so independent re-ranked views can be derived without measuring
// the original distance again. Items evicted or removed from the collection
// leave the memory too.
type Reranking struct {
	*Collection
	config      RerankConfig
	memory      *Collection
	maxOriginal float32
}

// NewReranking creates an empty re-ranking collection.
func NewReranking(initialCapacity, maximalCapacity int, config RerankConfig, opts ...Option) (*Reranking, error) {
	if config.RankOnAdd && config.Distance == nil {
		return nil, fmt.Errorf("rank: re-ranking on add requires a distance function")
	}
	collection, err := New(initialCapacity, maximalCapacity, opts...)
	if err != nil {
		return nil, err
	}
	memory, err := New(initialCapacity, Unlimited)
	if err != nil {
		return nil, err
	}
	r := &Reranking{Collection: collection, config: config, memory: memory}
	collection.removed = r.onRemoved
	return r, nil
}

// Memory returns the collection of candidates in their original order.
func (r *Reranking) Memory() *Collection { return r.memory }

// Add ranks item by the configured key and inserts it. The distance function
// error, if any, is returned before the collection is modified.
func (r *Reranking) Add(item Item) (bool, error) {
	ranked := item
	if r.config.RankOnAdd {
		d, err := r.config.Distance(r.config.Reference, item.Object)
		if err != nil {
			return false, fmt.Errorf("rank: re-ranking %q: %w", item.Locator(), err)
		}
		ranked = Rewrap(item, item.OriginalDistance()*r.config.Weight+d)
	}
	ok, err := r.Collection.Add(ranked)
	if err != nil || !ok {
		return ok, err
	}
	if _, err := r.memory.Add(remembered(ranked)); err != nil {
		return false, err
	}
	if d := ranked.OriginalDistance(); r.Collection.Len() == 1 || d > r.maxOriginal {
		r.maxOriginal = d
	}
	return true, nil
}

// remembered is the memory entry of a stored item: the payload at its
// original distance.
func remembered(item Item) Item {
	return Item{Object: item.Object, Distance: item.OriginalDistance(), SubDistances: item.SubDistances}
}

// AddAll adds every item through Add.
func (r *Reranking) AddAll(items []Item) (bool, error) {
	changed := false
	for _, item := range items {
		ok, err := r.Add(item)
		if err != nil {
			return changed, err
		}
		changed = changed || ok
	}
	return changed, nil
}

// ThresholdDistance applies the configured policy.
func (r *Reranking) ThresholdDistance() float32 {
	if r.config.Policy == ThresholdOriginal {
		return r.OriginalThreshold()
	}
	return r.Collection.ThresholdDistance()
}

// OriginalThreshold returns the largest original distance of the stored
// items once the collection is full, otherwise object.MaxDistance.
func (r *Reranking) OriginalThreshold() float32 {
	if r.Collection.IsEmpty() || !r.Collection.IsFull() {
		return object.MaxDistance
	}
	return r.maxOriginal
}

// Clear removes all items and forgets the original ordering.
func (r *Reranking) Clear() {
	r.Collection.Clear()
	r.memory.Clear()
	r.maxOriginal = 0
}

// onRemoved drops the memory entry of item and keeps maxOriginal current;
// removing the item holding the maximum requires a rescan.
func (r *Reranking) onRemoved(item Item) {
	r.memory.Remove(remembered(item))
	if item.OriginalDistance() < r.maxOriginal {
		return
	}
	r.maxOriginal = 0
	for _, stored := range r.Collection.items {
		if d := stored.OriginalDistance(); d > r.maxOriginal {
			r.maxOriginal = d
		}
	}
}

// Rerank derives a new collection of at most k items from the remembered
// original ordering, ranked by originalDistance*weight + distance(reference,
// payload). k <= 0 keeps every remembered item.
func (r *Reranking) Rerank(reference object.Object, distance object.DistanceFunc, weight float32, k int) (*Collection, error) {
	if distance == nil {
		return nil, fmt.Errorf("rank: re-ranking requires a distance function")
	}
	maximal := k
	if k <= 0 {
		maximal = Unlimited
	}
	initial := r.memory.Len()
	if initial == 0 {
		initial = 1
	}
	if k > 0 && initial > k {
		initial = k
	}
	view, err := New(initial, maximal)
	if err != nil {
		return nil, err
	}
	for item := range r.memory.All() {
		d, err := distance(reference, item.Object)
		if err != nil {
			return nil, fmt.Errorf("rank: re-ranking %q: %w", item.Locator(), err)
		}
		if _, err := view.Add(Rewrap(item, item.Distance*weight+d)); err != nil {
			return nil, err
		}
	}
	return view, nil
}
