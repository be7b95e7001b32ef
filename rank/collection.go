package rank

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"sort"

	"github.com/viant/ranking/object"
)

// Unlimited disables the maximal capacity bound.
const Unlimited = math.MaxInt

var (
	// ErrInvalidCapacity is returned for non-positive or inconsistent capacities.
	ErrInvalidCapacity = errors.New("rank: invalid capacity")
	// ErrNoSuchElement is returned when an element is required from an empty collection.
	ErrNoSuchElement = errors.New("rank: no such element")
	// ErrIndexOutOfRange is returned for positional access outside the collection.
	ErrIndexOutOfRange = errors.New("rank: index out of range")
	// ErrSubDistances is returned when an item's sub-distance vector does not
	// match the number of sublists.
	ErrSubDistances = errors.New("rank: sub-distance vector mismatch")
)

// Collection keeps the best items seen so far, ordered by a comparator and
// bounded by a maximal capacity.
type Collection struct {
	items           []Item
	initialCapacity int
	maximalCapacity int
	compare         Comparator
	byDistance      bool
	equal           EqualFunc
	sublistCount    int
	sublists        []*Collection
	removed         func(Item)
}

// Option configures a Collection.
type Option func(c *Collection)

// WithComparator replaces the default ascending distance order.
func WithComparator(compare Comparator) Option {
	return func(c *Collection) {
		if compare != nil {
			c.compare = compare
			c.byDistance = false
		}
	}
}

// WithoutDuplicates rejects items whose payload equals, under equal, a
// payload already stored with the same ranking key. A nil equal uses
// object.Equal.
func WithoutDuplicates(equal EqualFunc) Option {
	return func(c *Collection) {
		if equal == nil {
			equal = object.Equal
		}
		c.equal = equal
	}
}

// WithSublists maintains count parallel sublists, the i-th ordered by the
// i-th sub-distance of each stored item.
func WithSublists(count int) Option {
	return func(c *Collection) { c.sublistCount = count }
}

// New creates an empty collection. initialCapacity must be positive and
// maximalCapacity must not be smaller than it; pass Unlimited to disable the
// bound.
func New(initialCapacity, maximalCapacity int, opts ...Option) (*Collection, error) {
	if initialCapacity <= 0 {
		return nil, fmt.Errorf("%w: initial capacity %d must be positive", ErrInvalidCapacity, initialCapacity)
	}
	if maximalCapacity < initialCapacity {
		return nil, fmt.Errorf("%w: maximal capacity %d is less than initial capacity %d", ErrInvalidCapacity, maximalCapacity, initialCapacity)
	}
	c := &Collection{
		items:           make([]Item, 0, initialCapacity),
		initialCapacity: initialCapacity,
		maximalCapacity: maximalCapacity,
		compare:         ByDistance,
		byDistance:      true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sublistCount < 0 {
		return nil, fmt.Errorf("%w: negative sublist count %d", ErrSubDistances, c.sublistCount)
	}
	for i := 0; i < c.sublistCount; i++ {
		c.sublists = append(c.sublists, &Collection{
			items:           make([]Item, 0, initialCapacity),
			initialCapacity: initialCapacity,
			maximalCapacity: Unlimited,
			compare:         BySubDistance(i),
		})
	}
	return c, nil
}

// Len returns the number of stored items.
func (c *Collection) Len() int { return len(c.items) }

// IsEmpty reports whether no item is stored.
func (c *Collection) IsEmpty() bool { return len(c.items) == 0 }

// IsFull reports whether the collection holds maximal capacity items.
func (c *Collection) IsFull() bool { return len(c.items) >= c.maximalCapacity }

// MaximalCapacity returns the current bound.
func (c *Collection) MaximalCapacity() int { return c.maximalCapacity }

// Get returns the item at index.
func (c *Collection) Get(index int) (Item, error) {
	if index < 0 || index >= len(c.items) {
		return Item{}, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, index, len(c.items))
	}
	return c.items[index], nil
}

// First returns the best item.
func (c *Collection) First() (Item, error) {
	if len(c.items) == 0 {
		return Item{}, ErrNoSuchElement
	}
	return c.items[0], nil
}

// Last returns the worst item.
func (c *Collection) Last() (Item, error) {
	if len(c.items) == 0 {
		return Item{}, ErrNoSuchElement
	}
	return c.items[len(c.items)-1], nil
}

// LastDistance returns the distance of the worst item.
func (c *Collection) LastDistance() (float32, error) {
	last, err := c.Last()
	if err != nil {
		return object.UnknownDistance, err
	}
	return last.Distance, nil
}

// ThresholdDistance returns the distance a candidate must beat to be admitted:
// the distance of the worst item once the collection is full, otherwise
// object.MaxDistance.
func (c *Collection) ThresholdDistance() float32 {
	if len(c.items) > 0 && c.IsFull() {
		return c.items[len(c.items)-1].Distance
	}
	return object.MaxDistance
}

// Items returns a copy of the stored items in rank order.
func (c *Collection) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Sublists returns the number of per-dimension sublists.
func (c *Collection) Sublists() int { return len(c.sublists) }

// Sublist returns the sublist ordered by the sub-distance at index.
func (c *Collection) Sublist(index int) (*Collection, error) {
	if index < 0 || index >= len(c.sublists) {
		return nil, fmt.Errorf("%w: sublist %d not in [0,%d)", ErrIndexOutOfRange, index, len(c.sublists))
	}
	return c.sublists[index], nil
}

// search returns the insertion index of item: the position right after the
// run of items with an equal ranking key.
func (c *Collection) search(item Item) int {
	return sort.Search(len(c.items), func(i int) bool {
		return c.compare(c.items[i], item) > 0
	})
}

// Add inserts item in rank order. It returns false without modifying the
// collection when the collection is full and item does not rank strictly
// before the worst item, or when item is a duplicate. An error is returned
// only for a sub-distance vector that does not match the sublists.
func (c *Collection) Add(item Item) (bool, error) {
	if len(c.sublists) > 0 && len(item.SubDistances) != len(c.sublists) {
		return false, fmt.Errorf("%w: got %d sub-distances, want %d", ErrSubDistances, len(item.SubDistances), len(c.sublists))
	}
	if len(c.items) > 0 && c.IsFull() && c.compare(item, c.items[len(c.items)-1]) >= 0 {
		return false, nil
	}
	index := c.search(item)
	if c.equal != nil && c.hasDuplicate(index, item) {
		return false, nil
	}
	c.insert(index, item)
	for _, sublist := range c.sublists {
		sublist.insert(sublist.search(item), item)
	}
	for len(c.items) > c.maximalCapacity {
		_, _ = c.RemoveAt(len(c.items) - 1)
	}
	return true, nil
}

// AddAll adds every item and reports whether any of them was accepted. It
// stops at the first error.
func (c *Collection) AddAll(items []Item) (bool, error) {
	changed := false
	for _, item := range items {
		ok, err := c.Add(item)
		if err != nil {
			return changed, err
		}
		changed = changed || ok
	}
	return changed, nil
}

// hasDuplicate scans the run of items sharing item's ranking key around index.
// Equal payloads always share the key, so they must be adjacent.
func (c *Collection) hasDuplicate(index int, item Item) bool {
	for i := index - 1; i >= 0 && c.compare(c.items[i], item) == 0; i-- {
		if c.equal(c.items[i].Object, item.Object) {
			return true
		}
	}
	for i := index; i < len(c.items) && c.compare(c.items[i], item) == 0; i++ {
		if c.equal(c.items[i].Object, item.Object) {
			return true
		}
	}
	return false
}

func (c *Collection) insert(index int, item Item) {
	c.items = append(c.items, Item{})
	copy(c.items[index+1:], c.items[index:])
	c.items[index] = item
}

// indexOf locates an item equal to item within its ranking-key run.
func (c *Collection) indexOf(item Item) int {
	for i := c.search(item) - 1; i >= 0 && c.compare(c.items[i], item) == 0; i-- {
		if sameItem(c.items[i], item) {
			return i
		}
	}
	return -1
}

// RemoveAt removes and returns the item at index, shifting the tail down.
func (c *Collection) RemoveAt(index int) (Item, error) {
	if index < 0 || index >= len(c.items) {
		return Item{}, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, index, len(c.items))
	}
	item := c.items[index]
	copy(c.items[index:], c.items[index+1:])
	c.items[len(c.items)-1] = Item{}
	c.items = c.items[:len(c.items)-1]
	for _, sublist := range c.sublists {
		sublist.Remove(item)
	}
	if c.removed != nil {
		c.removed(item)
	}
	return item, nil
}

// Remove removes one stored item with the same payload, distance and
// sub-distances as item. It reports whether an item was removed.
func (c *Collection) Remove(item Item) bool {
	index := c.indexOf(item)
	if index < 0 {
		return false
	}
	_, err := c.RemoveAt(index)
	return err == nil
}

// Clear removes all items, including those of the sublists.
func (c *Collection) Clear() {
	clear(c.items)
	c.items = c.items[:0]
	for _, sublist := range c.sublists {
		sublist.Clear()
	}
}

// SetMaximalCapacity changes the bound; shrinking evicts the worst items.
func (c *Collection) SetMaximalCapacity(capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("%w: maximal capacity %d must be positive", ErrInvalidCapacity, capacity)
	}
	c.maximalCapacity = capacity
	for len(c.items) > capacity {
		if _, err := c.RemoveAt(len(c.items) - 1); err != nil {
			return err
		}
	}
	return nil
}

// All yields the items in rank order. Modifying the collection during
// iteration is not supported.
func (c *Collection) All() iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for _, item := range c.items {
			if !yield(item) {
				return
			}
		}
	}
}

// DistanceRestricted yields, in rank order, the items whose distance lies in
// [minDistance, maxDistance]. For distance-ordered collections both bounds are
// located by binary search when iteration starts; other orders fall back to a
// scan.
func (c *Collection) DistanceRestricted(minDistance, maxDistance float32) iter.Seq[Item] {
	if !c.byDistance {
		return func(yield func(Item) bool) {
			for _, item := range c.items {
				if item.Distance >= minDistance && item.Distance <= maxDistance && !yield(item) {
					return
				}
			}
		}
	}
	return func(yield func(Item) bool) {
		from := sort.Search(len(c.items), func(i int) bool { return c.items[i].Distance >= minDistance })
		to := sort.Search(len(c.items), func(i int) bool { return c.items[i].Distance > maxDistance })
		for i := from; i < to; i++ {
			if !yield(c.items[i]) {
				return
			}
		}
	}
}
