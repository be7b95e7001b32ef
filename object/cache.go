package object

import (
	"fmt"
	"sync"
)

// DistanceCache keeps precomputed distances of a growing set of objects to
// one reference object. Appends and inserts are safe for concurrent use.
type DistanceCache struct {
	mu        sync.RWMutex
	reference Object
	distance  DistanceFunc
	objects   []Object
	distances []float32
}

// NewDistanceCache creates an empty cache measuring against reference.
func NewDistanceCache(reference Object, distance DistanceFunc) *DistanceCache {
	return &DistanceCache{reference: reference, distance: distance}
}

// Append measures obj against the reference and stores it at the end.
func (c *DistanceCache) Append(obj Object) (float32, error) {
	d, err := c.distance(c.reference, obj)
	if err != nil {
		return UnknownDistance, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects = append(c.objects, obj)
	c.distances = append(c.distances, d)
	return d, nil
}

// Insert measures obj and stores it at position index, shifting the tail.
func (c *DistanceCache) Insert(index int, obj Object) (float32, error) {
	d, err := c.distance(c.reference, obj)
	if err != nil {
		return UnknownDistance, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index > len(c.objects) {
		return UnknownDistance, fmt.Errorf("object: cache index %d out of range [0,%d]", index, len(c.objects))
	}
	c.objects = append(c.objects, nil)
	copy(c.objects[index+1:], c.objects[index:])
	c.objects[index] = obj
	c.distances = append(c.distances, 0)
	copy(c.distances[index+1:], c.distances[index:])
	c.distances[index] = d
	return d, nil
}

// Distance returns the cached distance at position index, or UnknownDistance
// when the position is not populated.
func (c *DistanceCache) Distance(index int) float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if index < 0 || index >= len(c.distances) {
		return UnknownDistance
	}
	return c.distances[index]
}

// Object returns the object stored at position index, or nil.
func (c *DistanceCache) Object(index int) Object {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if index < 0 || index >= len(c.objects) {
		return nil
	}
	return c.objects[index]
}

// Len returns the number of cached objects.
func (c *DistanceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.objects)
}
