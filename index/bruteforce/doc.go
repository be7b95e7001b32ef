// Package bruteforce provides a simple vector index that answers kNN and
// range queries by measuring every vector. Once the answer collection is
// full most candidates are rejected against its threshold distance without
// shifting.
package bruteforce
