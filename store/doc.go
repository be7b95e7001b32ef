// Package store keeps vector objects in SQLite, grouped by dataset, and
// answers kNN queries by measuring distances in SQL with the engine's vector
// functions and selecting the answer through a bounded ranked collection.
package store
