// Package cover provides a vector index backed by a cover tree whose
// searches prune subtrees against the threshold distance of the answer
// collection.
package cover
