// Package rank provides the bounded ranked collection used to build k-nearest
// neighbor answer sets: an insertion-sorted container of (object, distance)
// items with a maximal capacity, a threshold distance usable for pruning,
// optional duplicate suppression, per-dimension sublists and re-ranking.
//
// A Collection is not safe for concurrent use; confine an instance to one
// query evaluation or synchronize externally.
package rank
