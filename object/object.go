package object

import (
	"errors"
	"math"
)

const (
	// MaxDistance marks a threshold that is not selective yet.
	MaxDistance float32 = math.MaxFloat32
	// UnknownDistance marks a distance that could not be computed.
	UnknownDistance float32 = -1
)

// ErrIncompatible is returned when a distance function receives a payload
// kind it cannot measure.
var ErrIncompatible = errors.New("object: incompatible payload")

// Object is a candidate payload of a similarity query.
type Object interface {
	// Locator returns an external identifier, or an empty string when the
	// object has none.
	Locator() string

	// DataEqual reports whether other carries the same data.
	DataEqual(other Object) bool
}

// DistanceFunc measures the distance between two objects.
type DistanceFunc func(a, b Object) (float32, error)

// Equal reports whether a and b denote the same object: by locator when both
// have one, otherwise by data.
func Equal(a, b Object) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	la, lb := a.Locator(), b.Locator()
	if la != "" && lb != "" {
		return la == lb
	}
	return a.DataEqual(b)
}
