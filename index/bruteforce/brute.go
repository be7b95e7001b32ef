package bruteforce

import (
	"fmt"

	"github.com/viant/ranking/index"
	"github.com/viant/ranking/object"
	"github.com/viant/ranking/rank"
)

// Index is a brute-force vector index.
type Index struct {
	metric   object.Metric
	distance object.DistanceFunc
	vecs     []*object.Vector
	dim      int
}

// New creates an empty index measuring with metric; an unknown metric falls
// back to cosine distance.
func New(metric object.Metric) *Index {
	fn := metric.Function()
	if fn == nil {
		metric = object.MetricCosine
		fn = metric.Function()
	}
	return &Index{metric: metric, distance: fn}
}

// Build loads vectors, which must share one dimension.
func (i *Index) Build(vectors []*object.Vector) error {
	if len(vectors) == 0 {
		i.vecs, i.dim = nil, 0
		return nil
	}
	dim := len(vectors[0].Values)
	for _, v := range vectors {
		if len(v.Values) != dim {
			return fmt.Errorf("bruteforce: inconsistent vector dims %d vs %d", len(v.Values), dim)
		}
	}
	i.vecs = append([]*object.Vector(nil), vectors...)
	i.dim = dim
	return nil
}

// Len returns the number of indexed vectors.
func (i *Index) Len() int { return len(i.vecs) }

func (i *Index) check(query *object.Vector) error {
	if len(i.vecs) > 0 && len(query.Values) != i.dim {
		return fmt.Errorf("bruteforce: query dim %d != index dim %d", len(query.Values), i.dim)
	}
	return nil
}

// KNN returns the k vectors nearest to query.
func (i *Index) KNN(query *object.Vector, k int) (*rank.Collection, error) {
	if err := i.check(query); err != nil {
		return nil, err
	}
	answer, err := index.KNNCollection(k, len(i.vecs))
	if err != nil {
		return nil, err
	}
	for _, v := range i.vecs {
		d, err := i.distance(query, v)
		if err != nil {
			return nil, err
		}
		if _, err := answer.Add(rank.NewItem(v, d)); err != nil {
			return nil, err
		}
	}
	return answer, nil
}

// Range returns every vector within radius of query.
func (i *Index) Range(query *object.Vector, radius float32) (*rank.Collection, error) {
	if err := i.check(query); err != nil {
		return nil, err
	}
	answer, err := rank.New(1, rank.Unlimited)
	if err != nil {
		return nil, err
	}
	for _, v := range i.vecs {
		d, err := i.distance(query, v)
		if err != nil {
			return nil, err
		}
		if d > radius {
			continue
		}
		if _, err := answer.Add(rank.NewItem(v, d)); err != nil {
			return nil, err
		}
	}
	return answer, nil
}

// MarshalBinary stores the vectors in the binary object stream format.
func (i *Index) MarshalBinary() ([]byte, error) { return index.EncodeVectors(i.vecs) }

// UnmarshalBinary restores the index from bytes.
func (i *Index) UnmarshalBinary(data []byte) error {
	vectors, err := index.DecodeVectors(data)
	if err != nil {
		return err
	}
	return i.Build(vectors)
}

var _ index.Index = (*Index)(nil)
