// Package engine opens SQLite databases through the pure-Go modernc.org/sqlite
// driver and registers the vector scalar functions (vec_cosine, vec_l2) the
// object store uses to measure distances inside queries.
package engine
