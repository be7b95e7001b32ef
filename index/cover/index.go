package cover

import (
	"sync"

	"github.com/viant/ranking/index"
	"github.com/viant/ranking/internal/cover/tree"
	"github.com/viant/ranking/object"
	"github.com/viant/ranking/rank"
)

// BoundStrategy re-exports the tree pruning strategy.
type BoundStrategy = tree.BoundStrategy

const (
	BoundPerNode = tree.BoundPerNode
	BoundLevel   = tree.BoundLevel
)

// Option customizes the index.
type Option func(*Index)

// WithBase sets the cover tree base (> 1).
func WithBase(base float32) Option { return func(i *Index) { i.base = base } }

// WithBoundStrategy selects the pruning bound.
func WithBoundStrategy(s BoundStrategy) Option { return func(i *Index) { i.bound = s } }

// WithMetric selects the distance metric.
func WithMetric(metric object.Metric) Option { return func(i *Index) { i.metric = metric } }

// WithBestFirst answers kNN queries with a best-first traversal.
func WithBestFirst(enabled bool) Option { return func(i *Index) { i.bestFirst = enabled } }

// Index implements index.Index with a cover tree.
type Index struct {
	base      float32
	bound     BoundStrategy
	metric    object.Metric
	bestFirst bool

	mu   sync.RWMutex
	tree *tree.Tree
	vecs []*object.Vector
}

// New creates an empty cover tree index.
func New(opts ...Option) *Index {
	i := &Index{base: 1.3, bound: BoundPerNode, metric: object.MetricCosine}
	for _, opt := range opts {
		opt(i)
	}
	i.tree = i.newTree()
	return i
}

func (i *Index) newTree() *tree.Tree {
	t := tree.NewTree(i.base, i.metric)
	t.SetBoundStrategy(i.bound)
	return t
}

// Build constructs a fresh tree from vectors.
func (i *Index) Build(vectors []*object.Vector) error {
	t := i.newTree()
	for _, v := range vectors {
		if err := t.Insert(v); err != nil {
			return err
		}
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.tree = t
	i.vecs = append([]*object.Vector(nil), vectors...)
	return nil
}

// Insert adds one vector to the tree.
func (i *Index) Insert(v *object.Vector) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.tree.Insert(v); err != nil {
		return err
	}
	i.vecs = append(i.vecs, v)
	return nil
}

// Len returns the number of indexed vectors.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.vecs)
}

// KNN returns the k vectors nearest to query.
func (i *Index) KNN(query *object.Vector, k int) (*rank.Collection, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	answer, err := index.KNNCollection(k, len(i.vecs))
	if err != nil {
		return nil, err
	}
	if i.bestFirst {
		err = i.tree.KNearestNeighborsBestFirst(query, answer)
	} else {
		err = i.tree.KNearestNeighbors(query, answer)
	}
	if err != nil {
		return nil, err
	}
	return answer, nil
}

// Range returns every vector within radius of query.
func (i *Index) Range(query *object.Vector, radius float32) (*rank.Collection, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	answer, err := rank.New(1, rank.Unlimited)
	if err != nil {
		return nil, err
	}
	if err := i.tree.Range(query, radius, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

// MarshalBinary stores the indexed vectors; the tree is rebuilt on load.
func (i *Index) MarshalBinary() ([]byte, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return index.EncodeVectors(i.vecs)
}

// UnmarshalBinary loads vectors and rebuilds the tree.
func (i *Index) UnmarshalBinary(data []byte) error {
	vectors, err := index.DecodeVectors(data)
	if err != nil {
		return err
	}
	return i.Build(vectors)
}

var _ index.Index = (*Index)(nil)
