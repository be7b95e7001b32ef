package store

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/viant/ranking/iterate"
	"github.com/viant/ranking/object"
	"github.com/viant/ranking/partition"
	"github.com/viant/ranking/rank"
)

// MemoryStore keeps vectors in a partition map keyed by dataset.
type MemoryStore struct {
	datasets *partition.Map[*object.Vector]
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{datasets: partition.New[*object.Vector]()}
}

// Add appends vectors, replacing any stored vector with the same id.
func (s *MemoryStore) Add(_ context.Context, dataset string, vectors []*object.Vector) error {
	if dataset == "" {
		return fmt.Errorf("store: dataset must be set")
	}
	for _, v := range vectors {
		if v.ID == "" {
			return fmt.Errorf("store: vector id must be set")
		}
	}
	for _, v := range vectors {
		id := v.ID
		s.datasets.RemoveFunc(dataset, func(stored *object.Vector) bool { return stored.ID == id })
		s.datasets.Put(dataset, v)
	}
	return nil
}

// Objects yields the vectors of dataset in insertion order.
func (s *MemoryStore) Objects(ctx context.Context, dataset string) iter.Seq2[*object.Vector, error] {
	return func(yield func(*object.Vector, error) bool) {
		for v := range s.datasets.Values(dataset) {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// KNN ranks every vector of dataset against query.
func (s *MemoryStore) KNN(ctx context.Context, dataset string, query *object.Vector, k int, metric object.Metric) (*rank.Collection, error) {
	distance := metric.Function()
	if distance == nil {
		return nil, fmt.Errorf("store: unsupported metric %q", metric)
	}
	answer, err := rank.New(1, k)
	if err != nil {
		return nil, err
	}
	source := func(yield func(object.Object) bool) {
		for v := range s.datasets.Values(dataset) {
			if ctx.Err() != nil || !yield(v) {
				return
			}
		}
	}
	if _, err := iterate.Collect(answer, iterate.Ranked(source, query, distance)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return answer, nil
}

// Remove deletes one object; ErrNotFound when nothing matched.
func (s *MemoryStore) Remove(_ context.Context, dataset, id string) error {
	if s.datasets.RemoveFunc(dataset, func(v *object.Vector) bool { return v.ID == id }) == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, dataset, id)
	}
	return nil
}

// Datasets lists the non-empty datasets.
func (s *MemoryStore) Datasets(context.Context) ([]string, error) {
	keys := s.datasets.Keys()
	return slices.DeleteFunc(keys, func(key string) bool { return s.datasets.Len(key) == 0 }), nil
}

var _ Store = (*MemoryStore)(nil)
