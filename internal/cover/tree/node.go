package tree

import (
	"math"

	"github.com/viant/ranking/object"
)

// Node represents a cover-tree node.
type Node struct {
	level          int32
	baseLevel      float32
	point          *object.Vector
	children       []Node
	radius         float32
	radiusComputed uint64
}

// NewNode constructs a node for the provided point and level.
func NewNode(point *object.Vector, level int32, base float32) Node {
	return Node{
		level:     level,
		baseLevel: float32(math.Pow(float64(base), float64(level))),
		point:     point,
	}
}
