package store

import (
	"context"
	"errors"
	"iter"

	"github.com/viant/ranking/object"
	"github.com/viant/ranking/rank"
)

// ErrNotFound is returned when a dataset or object does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the object source consumed by dispatched operations.
type Store interface {
	// Add inserts or replaces vectors of dataset.
	Add(ctx context.Context, dataset string, vectors []*object.Vector) error
	// Objects yields every vector of dataset in insertion order.
	Objects(ctx context.Context, dataset string) iter.Seq2[*object.Vector, error]
	// KNN returns the k vectors of dataset nearest to query.
	KNN(ctx context.Context, dataset string, query *object.Vector, k int, metric object.Metric) (*rank.Collection, error)
	// Remove deletes one object.
	Remove(ctx context.Context, dataset, id string) error
	// Datasets lists dataset ids in ascending order.
	Datasets(ctx context.Context) ([]string, error)
}
