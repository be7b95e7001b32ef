package store

import (
	"context"
	"database/sql"
)

const objectsSchema = `
CREATE TABLE IF NOT EXISTS objects (
    dataset_id TEXT NOT NULL,
    id TEXT NOT NULL,
    meta TEXT,
    embedding BLOB,
    PRIMARY KEY (dataset_id, id)
);
`

// EnsureSchema creates the objects table if it does not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, objectsSchema)
	return err
}
