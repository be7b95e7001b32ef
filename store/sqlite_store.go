package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/viant/ranking/engine"
	"github.com/viant/ranking/object"
	"github.com/viant/ranking/rank"
)

// SQLiteStore stores vectors in the objects table of a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a SQLite-backed Store, registering the vector
// functions and the rank_knn module and ensuring the objects schema exists.
func NewSQLiteStore(ctx context.Context, db *sql.DB, logger *zap.Logger) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := engine.RegisterVectorFunctions(); err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db, logger: logger}
	if err := RegisterModule(s); err != nil {
		return nil, fmt.Errorf("store: register %s: %w", ModuleName, err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("store: ensure schema: %w", err)
	}
	return s, nil
}

// Add inserts or replaces vectors in one transaction. Every vector needs an id.
func (s *SQLiteStore) Add(ctx context.Context, dataset string, vectors []*object.Vector) error {
	if dataset == "" {
		return fmt.Errorf("store: dataset must be set")
	}
	if len(vectors) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO objects(dataset_id, id, meta, embedding) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, v := range vectors {
		if v.ID == "" {
			return fmt.Errorf("store: vector id must be set")
		}
		if _, err := stmt.ExecContext(ctx, dataset, v.ID, "", engine.EncodeEmbedding(v.Values)); err != nil {
			return fmt.Errorf("store: insert %q: %w", v.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("objects added", zap.String("dataset", dataset), zap.Int("count", len(vectors)))
	return nil
}

// Objects yields the vectors of dataset in insertion order. The iteration
// stops at the first error.
func (s *SQLiteStore) Objects(ctx context.Context, dataset string) iter.Seq2[*object.Vector, error] {
	return func(yield func(*object.Vector, error) bool) {
		rows, err := s.db.QueryContext(ctx, `SELECT id, embedding FROM objects WHERE dataset_id = ? ORDER BY rowid`, dataset)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()
		for rows.Next() {
			v, err := scanVector(rows)
			if !yield(v, err) || err != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func scanVector(rows *sql.Rows) (*object.Vector, error) {
	var id string
	var blob []byte
	if err := rows.Scan(&id, &blob); err != nil {
		return nil, err
	}
	values, err := engine.DecodeEmbedding(blob)
	if err != nil {
		return nil, fmt.Errorf("store: object %q: %w", id, err)
	}
	return object.NewVector(id, values...), nil
}

// distanceExpr returns the SQL expression measuring the embedding against
// the bound query for metric.
func distanceExpr(metric object.Metric) (string, error) {
	switch metric {
	case object.MetricCosine:
		return `1 - vec_cosine(embedding, ?)`, nil
	case object.MetricEuclidean:
		return `vec_l2(embedding, ?)`, nil
	}
	return "", fmt.Errorf("store: unsupported metric %q", metric)
}

// KNN measures every vector of dataset in SQL and keeps the k nearest.
func (s *SQLiteStore) KNN(ctx context.Context, dataset string, query *object.Vector, k int, metric object.Metric) (*rank.Collection, error) {
	expr, err := distanceExpr(metric)
	if err != nil {
		return nil, err
	}
	answer, err := rank.New(1, k)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, embedding, `+expr+` FROM objects WHERE dataset_id = ? ORDER BY rowid`,
		engine.EncodeEmbedding(query.Values), dataset)
	if err != nil {
		return nil, fmt.Errorf("store: knn %q: %w", dataset, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var blob []byte
		var distance sql.NullFloat64
		if err := rows.Scan(&id, &blob, &distance); err != nil {
			return nil, err
		}
		if !distance.Valid {
			continue
		}
		d := float32(distance.Float64)
		if answer.IsFull() && d >= answer.ThresholdDistance() {
			continue
		}
		values, err := engine.DecodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("store: object %q: %w", id, err)
		}
		if _, err := answer.Add(rank.NewItem(object.NewVector(id, values...), d)); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return answer, nil
}

// Remove deletes an object; ErrNotFound when nothing matched.
func (s *SQLiteStore) Remove(ctx context.Context, dataset, id string) error {
	if id == "" {
		return fmt.Errorf("store: Remove called with empty id")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM objects WHERE dataset_id = ? AND id = ?`, dataset, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, dataset, id)
	}
	return nil
}

// Datasets lists the distinct dataset ids.
func (s *SQLiteStore) Datasets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT dataset_id FROM objects ORDER BY dataset_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

var _ Store = (*SQLiteStore)(nil)
