package tree

// This implementation is adapted from github.com/viant/gds/tree/cover.

import (
	"container/heap"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/viant/ranking/object"
	"github.com/viant/ranking/rank"
)

// Tree represents a cover tree answering kNN and range queries into a
// rank.Collection.
type Tree struct {
	root          *Node
	base          float32
	metric        object.Metric
	distanceFunc  object.DistanceFunc
	dim           int
	size          int
	version       uint64
	boundStrategy BoundStrategy
	mu            sync.RWMutex
}

// BoundStrategy selects which lower-bound radius to use when pruning.
type BoundStrategy int

const (
	// BoundPerNode uses cached per-node subtree radius (tighter pruning).
	BoundPerNode BoundStrategy = iota
	// BoundLevel uses a geometric bound derived from the node level.
	BoundLevel
)

// NewTree constructs a cover tree with the provided base and metric.
func NewTree(base float32, metric object.Metric) *Tree {
	if base <= 1 {
		base = 1.3
	}
	fn := metric.Function()
	if fn == nil {
		metric = object.MetricCosine
		fn = metric.Function()
	}
	return &Tree{
		base:          base,
		metric:        metric,
		distanceFunc:  fn,
		boundStrategy: BoundPerNode,
	}
}

// SetBoundStrategy switches the pruning strategy.
func (t *Tree) SetBoundStrategy(s BoundStrategy) { t.boundStrategy = s }

// Metric returns the distance metric of the tree.
func (t *Tree) Metric() object.Metric { return t.metric }

// Len returns the number of inserted points.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// distance measures two points of validated, equal dimension.
func (t *Tree) distance(a, b *object.Vector) float32 {
	d, err := t.distanceFunc(a, b)
	if err != nil {
		return object.MaxDistance
	}
	return d
}

func (t *Tree) checkDim(point *object.Vector) error {
	if t.size > 0 && len(point.Values) != t.dim {
		return fmt.Errorf("tree: point dimension %d != tree dimension %d", len(point.Values), t.dim)
	}
	return nil
}

// Insert adds a point to the tree.
func (t *Tree) Insert(point *object.Vector) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkDim(point); err != nil {
		return err
	}
	if t.root == nil {
		node := NewNode(point, 0, t.base)
		t.root = &node
		t.dim = len(point.Values)
	} else {
		t.insert(t.root, point, 0)
	}
	t.size++
	t.version++
	return nil
}

func (t *Tree) insert(node *Node, point *object.Vector, level int32) {
	for {
		baseLevel := float32(math.Pow(float64(t.base), float64(level)))
		distance := t.distance(point, node.point)
		if distance < baseLevel {
			inserted := false
			for i := range node.children {
				child := &node.children[i]
				if t.distance(point, child.point) < baseLevel {
					node = child
					level--
					inserted = true
					break
				}
			}
			if !inserted {
				node.children = append(node.children, NewNode(point, level-1, t.base))
				return
			}
		} else {
			level++
			if level > node.level {
				newRoot := NewNode(point, level, t.base)
				newRoot.children = append(newRoot.children, *t.root)
				t.root = &newRoot
				return
			}
		}
	}
}

func (t *Tree) lock() func() {
	if t.boundStrategy == BoundPerNode {
		t.mu.Lock()
		return t.mu.Unlock
	}
	t.mu.RLock()
	return t.mu.RUnlock
}

// KNearestNeighbors runs a depth-first kNN search. Subtrees whose lower
// bound cannot beat the threshold distance of the answer are skipped.
func (t *Tree) KNearestNeighbors(query *object.Vector, answer *rank.Collection) error {
	defer t.lock()()
	if t.root == nil {
		return nil
	}
	if err := t.checkDim(query); err != nil {
		return err
	}
	return t.kNearestNeighbors(t.root, query, t.distance(query, t.root.point), answer)
}

func (t *Tree) kNearestNeighbors(node *Node, query *object.Vector, dc float32, answer *rank.Collection) error {
	if _, err := answer.Add(rank.NewItem(node.point, dc)); err != nil {
		return err
	}
	if len(node.children) == 0 {
		return nil
	}
	type childDist struct {
		child *Node
		dist  float32
	}
	cds := make([]childDist, 0, len(node.children))
	for i := range node.children {
		child := &node.children[i]
		cds = append(cds, childDist{child: child, dist: t.distance(query, child.point)})
	}
	sort.Slice(cds, func(i, j int) bool { return cds[i].dist < cds[j].dist })
	for _, cd := range cds {
		if answer.IsFull() && cd.dist-t.boundRadius(cd.child) >= answer.ThresholdDistance() {
			continue
		}
		if err := t.kNearestNeighbors(cd.child, query, cd.dist, answer); err != nil {
			return err
		}
	}
	return nil
}

// KNearestNeighborsBestFirst performs a best-first search with a node
// priority queue.
func (t *Tree) KNearestNeighborsBestFirst(query *object.Vector, answer *rank.Collection) error {
	defer t.lock()()
	if t.root == nil {
		return nil
	}
	if err := t.checkDim(query); err != nil {
		return err
	}
	pq := &nodeQueue{}
	heap.Init(pq)
	rootDist := t.distance(query, t.root.point)
	heap.Push(pq, nodeItem{node: t.root, lb: rootDist - t.boundRadius(t.root), centerDist: rootDist})
	for pq.Len() > 0 {
		top := heap.Pop(pq).(nodeItem)
		if answer.IsFull() && top.lb >= answer.ThresholdDistance() {
			break
		}
		if _, err := answer.Add(rank.NewItem(top.node.point, top.centerDist)); err != nil {
			return err
		}
		for i := range top.node.children {
			child := &top.node.children[i]
			cd := t.distance(query, child.point)
			lb := cd - t.boundRadius(child)
			if answer.IsFull() && lb >= answer.ThresholdDistance() {
				continue
			}
			heap.Push(pq, nodeItem{node: child, lb: lb, centerDist: cd})
		}
	}
	return nil
}

// Range adds every point within radius of query to answer.
func (t *Tree) Range(query *object.Vector, radius float32, answer *rank.Collection) error {
	defer t.lock()()
	if t.root == nil {
		return nil
	}
	if err := t.checkDim(query); err != nil {
		return err
	}
	return t.rangeSearch(t.root, query, t.distance(query, t.root.point), radius, answer)
}

func (t *Tree) rangeSearch(node *Node, query *object.Vector, dc, radius float32, answer *rank.Collection) error {
	if dc <= radius {
		if _, err := answer.Add(rank.NewItem(node.point, dc)); err != nil {
			return err
		}
	}
	for i := range node.children {
		child := &node.children[i]
		cd := t.distance(query, child.point)
		if cd-t.boundRadius(child) > radius {
			continue
		}
		if err := t.rangeSearch(child, query, cd, radius, answer); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) ensureRadius(n *Node) float32 {
	if n == nil {
		return 0
	}
	if n.radiusComputed == t.version {
		return n.radius
	}
	if len(n.children) == 0 {
		n.radius = 0
		n.radiusComputed = t.version
		return 0
	}
	maxR := float32(0)
	for i := range n.children {
		child := &n.children[i]
		cr := t.ensureRadius(child)
		d := t.distance(n.point, child.point) + cr
		if d > maxR {
			maxR = d
		}
	}
	n.radius = maxR
	n.radiusComputed = t.version
	return maxR
}

func (t *Tree) levelCoverRadius(n *Node) float32 {
	if t.base <= 1 || n == nil {
		return float32(math.MaxFloat32)
	}
	return n.baseLevel * t.base / (t.base - 1)
}

func (t *Tree) boundRadius(n *Node) float32 {
	if t.boundStrategy == BoundLevel {
		return t.levelCoverRadius(n)
	}
	return t.ensureRadius(n)
}

type nodeItem struct {
	node       *Node
	lb         float32
	centerDist float32
}

type nodeQueue []nodeItem

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].lb < q[j].lb }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(nodeItem)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}
