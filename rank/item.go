package rank

import (
	"cmp"

	"github.com/viant/ranking/object"
)

// Item pairs a payload with its measured distance. Items are values; use
// Rewrap to derive an item with a different ranking distance.
type Item struct {
	Object       object.Object
	Distance     float32
	SubDistances []float32

	original  float32
	rewrapped bool
}

// NewItem wraps obj measured at distance.
func NewItem(obj object.Object, distance float32) Item {
	return Item{Object: obj, Distance: distance}
}

// NewMetaItem wraps a composite obj with the distances of its parts.
func NewMetaItem(obj object.Object, distance float32, subDistances ...float32) Item {
	return Item{Object: obj, Distance: distance, SubDistances: subDistances}
}

// Rewrap returns an item sharing the payload of item ranked at distance. The
// distance item was originally measured at is retained.
func Rewrap(item Item, distance float32) Item {
	return Item{
		Object:       item.Object,
		Distance:     distance,
		SubDistances: item.SubDistances,
		original:     item.OriginalDistance(),
		rewrapped:    true,
	}
}

// OriginalDistance returns the distance the payload was first measured at.
func (i Item) OriginalDistance() float32 {
	if i.rewrapped {
		return i.original
	}
	return i.Distance
}

// Locator returns the payload locator, or an empty string.
func (i Item) Locator() string {
	if i.Object == nil {
		return ""
	}
	return i.Object.Locator()
}

// Comparator orders items; it returns a negative number when a ranks before b.
type Comparator func(a, b Item) int

// ByDistance orders items by ascending distance.
func ByDistance(a, b Item) int { return cmp.Compare(a.Distance, b.Distance) }

// Descending orders items by descending distance; used when the distance
// field carries a score where larger is better.
func Descending(a, b Item) int { return cmp.Compare(b.Distance, a.Distance) }

// BySubDistance orders items by ascending sub-distance at position index.
func BySubDistance(index int) Comparator {
	return func(a, b Item) int {
		return cmp.Compare(a.SubDistances[index], b.SubDistances[index])
	}
}

// EqualFunc decides whether two payloads are duplicates.
type EqualFunc func(a, b object.Object) bool

func sameItem(a, b Item) bool {
	if a.Distance != b.Distance || len(a.SubDistances) != len(b.SubDistances) {
		return false
	}
	for i := range a.SubDistances {
		if a.SubDistances[i] != b.SubDistances[i] {
			return false
		}
	}
	return object.Equal(a.Object, b.Object)
}
