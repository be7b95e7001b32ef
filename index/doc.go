// Package index defines a minimal abstraction for vector indexes that are
// built from vectors, queried for kNN or range answers collected into
// rank.Collection, and serialized for persistence.
// Implementations in this module include a brute-force baseline and a cover
// tree.
package index
