// Package partition groups values under string partition keys.
package partition

import (
	"iter"
	"sort"
	"sync"
)

// Map holds an ordered list of values per partition key. It is safe for
// concurrent use.
type Map[T any] struct {
	mu         sync.RWMutex
	partitions map[string][]T
}

// New returns an empty partition map.
func New[T any]() *Map[T] {
	return &Map[T]{partitions: make(map[string][]T)}
}

// Put appends values to the partition key.
func (m *Map[T]) Put(key string, values ...T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partitions[key] = append(m.partitions[key], values...)
}

// Get returns a copy of the values of partition key.
func (m *Map[T]) Get(key string) []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	values := m.partitions[key]
	out := make([]T, len(values))
	copy(out, values)
	return out
}

// Delete drops partition key and reports whether it existed.
func (m *Map[T]) Delete(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.partitions[key]
	delete(m.partitions, key)
	return ok
}

// RemoveFunc drops the values of partition key matched by match and returns
// how many were removed.
func (m *Map[T]) RemoveFunc(key string, match func(T) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	values := m.partitions[key]
	kept := values[:0]
	for _, v := range values {
		if !match(v) {
			kept = append(kept, v)
		}
	}
	removed := len(values) - len(kept)
	clear(values[len(kept):])
	m.partitions[key] = kept
	return removed
}

// Keys returns the partition keys in lexical order.
func (m *Map[T]) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.partitions))
	for key := range m.partitions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of values in partition key.
func (m *Map[T]) Len(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.partitions[key])
}

// Values yields a snapshot of the values of partition key.
func (m *Map[T]) Values(key string) iter.Seq[T] {
	values := m.Get(key)
	return func(yield func(T) bool) {
		for _, v := range values {
			if !yield(v) {
				return
			}
		}
	}
}

// All yields every (key, value) pair, keys in lexical order.
func (m *Map[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for _, key := range m.Keys() {
			for v := range m.Values(key) {
				if !yield(key, v) {
					return
				}
			}
		}
	}
}
