package index

import (
	"github.com/viant/ranking/object"
	"github.com/viant/ranking/rank"
)

// Index defines a vector index that can be built from vectors, answers kNN
// and range queries into ranked collections, and serializes to the binary
// object stream format for persistence.
type Index interface {
	// Build constructs the index from the given vectors, which must share
	// one dimension.
	Build(vectors []*object.Vector) error

	// KNN returns up to k vectors nearest to query, ascending by distance.
	KNN(query *object.Vector, k int) (*rank.Collection, error)

	// Range returns every vector within radius of query, ascending by
	// distance.
	Range(query *object.Vector, radius float32) (*rank.Collection, error)

	// Len returns the number of indexed vectors.
	Len() int

	// MarshalBinary serializes the indexed vectors.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary rebuilds the index from serialized vectors.
	UnmarshalBinary(data []byte) error
}
