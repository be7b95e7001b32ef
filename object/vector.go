package object

import (
	"fmt"
	"strings"

	"github.com/viant/vec/search"
)

// Vector is a float32 embedding with an optional locator.
type Vector struct {
	ID        string
	Magnitude float32
	Values    []float32
}

// NewVector constructs a vector and caches its magnitude.
func NewVector(id string, values ...float32) *Vector {
	v := &Vector{ID: id, Values: values}
	if len(values) > 0 {
		v.Magnitude = search.Float32s(values).Magnitude()
	}
	return v
}

// Locator returns the vector identifier.
func (v *Vector) Locator() string { return v.ID }

// DataEqual reports whether other is a vector with identical values.
func (v *Vector) DataEqual(other Object) bool {
	o, ok := other.(*Vector)
	if !ok || len(o.Values) != len(v.Values) {
		return false
	}
	for i := range v.Values {
		if v.Values[i] != o.Values[i] {
			return false
		}
	}
	return true
}

func (v *Vector) String() string {
	parts := make([]string, len(v.Values))
	for i, f := range v.Values {
		parts[i] = fmt.Sprintf("%g", f)
	}
	return v.ID + "[" + strings.Join(parts, ",") + "]"
}

func (v *Vector) magnitude() float32 {
	if v.Magnitude == 0 && len(v.Values) > 0 {
		return search.Float32s(v.Values).Magnitude()
	}
	return v.Magnitude
}

// Metric enumerates supported vector distance metrics.
type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricEuclidean Metric = "euclidean"
)

// Function resolves the callable distance implementation, or nil when the
// metric is unknown.
func (m Metric) Function() DistanceFunc {
	switch m {
	case MetricCosine:
		return Cosine
	case MetricEuclidean:
		return Euclidean
	default:
		return nil
	}
}

// ParseMetric resolves a metric by name, accepting common aliases.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cos", "cosine":
		return MetricCosine, nil
	case "l2", "euclid", "euclidean":
		return MetricEuclidean, nil
	}
	return "", fmt.Errorf("object: unsupported metric %q", name)
}

func vectors(a, b Object) (*Vector, *Vector, error) {
	va, ok := a.(*Vector)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %T is not a vector", ErrIncompatible, a)
	}
	vb, ok := b.(*Vector)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %T is not a vector", ErrIncompatible, b)
	}
	if len(va.Values) != len(vb.Values) {
		return nil, nil, fmt.Errorf("%w: dimension %d vs %d", ErrIncompatible, len(va.Values), len(vb.Values))
	}
	return va, vb, nil
}

// Cosine returns the cosine distance (1 - cosine similarity) of two vectors.
func Cosine(a, b Object) (float32, error) {
	va, vb, err := vectors(a, b)
	if err != nil {
		return UnknownDistance, err
	}
	m1, m2 := va.magnitude(), vb.magnitude()
	if m1 == 0 || m2 == 0 {
		return 1, nil
	}
	return search.Float32s(va.Values).CosineDistanceWithMagnitude(vb.Values, m1, m2), nil
}

// Euclidean returns the L2 distance of two vectors.
func Euclidean(a, b Object) (float32, error) {
	va, vb, err := vectors(a, b)
	if err != nil {
		return UnknownDistance, err
	}
	return search.Float32s(va.Values).EuclideanDistance(vb.Values), nil
}
