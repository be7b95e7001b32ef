package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"modernc.org/sqlite/vtab"

	"github.com/viant/ranking/engine"
	"github.com/viant/ranking/index"
	"github.com/viant/ranking/index/bruteforce"
	"github.com/viant/ranking/index/cover"
	"github.com/viant/ranking/object"
	"github.com/viant/ranking/rank"
)

// ModuleName is the SQL name of the ranked nearest neighbor virtual table.
const ModuleName = "rank_knn"

const (
	idxDatasetScan = iota + 1
	idxDatasetMatch
)

// Column positions of the declared schema.
const (
	colDataset = iota
	colID
	colDistance
	colK
)

// tableOptions are parsed from USING rank_knn(metric=l2, index=cover, k=5).
type tableOptions struct {
	metric object.Metric
	index  string
	k      int
	base   float32
}

func parseTableOptions(args []string) (tableOptions, error) {
	opts := tableOptions{metric: object.MetricCosine, index: "bruteforce", k: 10}
	for _, raw := range args {
		key, val, ok := strings.Cut(strings.TrimSpace(raw), "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.Trim(strings.TrimSpace(val), `'"`)
		switch key {
		case "metric":
			metric, err := object.ParseMetric(val)
			if err != nil {
				return opts, err
			}
			opts.metric = metric
		case "index":
			switch strings.ToLower(val) {
			case "cover", "bruteforce":
				opts.index = strings.ToLower(val)
			default:
				return opts, fmt.Errorf("%s: unsupported index %q", ModuleName, val)
			}
		case "k":
			k, err := strconv.Atoi(val)
			if err != nil || k <= 0 {
				return opts, fmt.Errorf("%s: invalid k %q", ModuleName, val)
			}
			opts.k = k
		case "cover_base":
			if f, err := strconv.ParseFloat(val, 32); err == nil && f > 1 {
				opts.base = float32(f)
			}
		}
	}
	return opts, nil
}

var (
	moduleOnce  sync.Once
	moduleErr   error
	moduleStore atomic.Pointer[SQLiteStore]
)

// Module serves the rank_knn virtual table over the objects table:
//
//	CREATE VIRTUAL TABLE nearest USING rank_knn(metric=l2, index=cover, k=5);
//	SELECT id, distance FROM nearest
//	WHERE dataset_id = 'points' AND id MATCH '0.1,0.4' AND k = 3 AND distance <= 0.5;
//
// Rows come out in ascending distance order. Without MATCH every object of
// the dataset is listed with a NULL distance.
type Module struct{}

// Table is one rank_knn table instance.
type Table struct {
	store *SQLiteStore
	opts  tableOptions
}

type knnRow struct {
	id       string
	distance *float64
	k        int
}

// Cursor iterates the rows computed by Filter.
type Cursor struct {
	table   *Table
	dataset string
	rows    []knnRow
	pos     int
}

// RegisterModule makes rank_knn available on connections opened afterwards.
// Tables read from the most recently registered store.
func RegisterModule(s *SQLiteStore) error {
	moduleStore.Store(s)
	moduleOnce.Do(func() {
		if err := vtab.RegisterModule(s.db, ModuleName, &Module{}); err != nil && !strings.Contains(err.Error(), "already registered") {
			moduleErr = err
		}
	})
	return moduleErr
}

// Create declares the table schema.
func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args)
}

// Connect attaches to an existing table.
func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args)
}

func (m *Module) connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("%s: expects at least 3 args, got %d", ModuleName, len(args))
	}
	if err := ctx.EnableConstraintSupport(); err != nil {
		return nil, fmt.Errorf("%s: EnableConstraintSupport failed: %w", ModuleName, err)
	}
	opts, err := parseTableOptions(args[3:])
	if err != nil {
		return nil, err
	}
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(dataset_id TEXT, id TEXT, distance REAL HIDDEN, k INTEGER HIDDEN)", args[2])); err != nil {
		return nil, err
	}
	s := moduleStore.Load()
	if s == nil {
		return nil, fmt.Errorf("%s: no store registered", ModuleName)
	}
	return &Table{store: s, opts: opts}, nil
}

// BestIndex requires dataset_id = ? and pushes down MATCH on id, k = ? and an
// upper bound on distance. idxStr records which optional arguments follow
// the dataset and query: "k", "r" or "kr".
func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	var dataset, match, k, radius *vtab.Constraint
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		switch {
		case c.Column == colDataset && c.Op == vtab.OpEQ:
			dataset = c
		case c.Column == colID && c.Op == vtab.OpMATCH:
			match = c
		case c.Column == colK && c.Op == vtab.OpEQ:
			k = c
		case c.Column == colDistance && (c.Op == vtab.OpLE || c.Op == vtab.OpLT):
			radius = c
		}
	}
	if dataset == nil {
		return fmt.Errorf("%s: dataset_id constraint required", ModuleName)
	}
	dataset.ArgIndex = 0
	dataset.Omit = true
	if match == nil {
		info.IdxNum = idxDatasetScan
		return nil
	}
	match.ArgIndex = 1
	match.Omit = true
	next := 2
	plan := ""
	if k != nil {
		k.ArgIndex = next
		k.Omit = true
		next++
		plan += "k"
	}
	if radius != nil {
		// the bound is re-checked by SQLite so strict and inclusive bounds both hold
		radius.ArgIndex = next
		plan += "r"
	}
	info.IdxNum = idxDatasetMatch
	info.IdxStr = plan
	return nil
}

// Open allocates a new cursor.
func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }

// Disconnect releases nothing.
func (t *Table) Disconnect() error { return nil }

// Destroy keeps the objects table; only the virtual table goes away.
func (t *Table) Destroy() error { return nil }

// Filter computes the rows of one query plan.
func (c *Cursor) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	c.rows, c.pos = nil, 0
	if len(vals) == 0 {
		return fmt.Errorf("%s: dataset_id argument is required", ModuleName)
	}
	dataset, err := asString(vals[0])
	if err != nil {
		return err
	}
	c.dataset = dataset
	ctx := context.Background()

	if idxNum == idxDatasetScan {
		for v, err := range c.table.store.Objects(ctx, dataset) {
			if err != nil {
				return err
			}
			c.rows = append(c.rows, knnRow{id: v.ID})
		}
		return nil
	}
	if idxNum != idxDatasetMatch || len(vals) < 2 {
		return fmt.Errorf("%s: unsupported query plan", ModuleName)
	}
	values, err := decodeMatchArg(vals[1])
	if err != nil {
		return err
	}
	query := object.NewVector("", values...)
	k := c.table.opts.k
	radius := float32(-1)
	next := 2
	for _, arg := range idxStr {
		if next >= len(vals) {
			return fmt.Errorf("%s: missing argument for plan %q", ModuleName, idxStr)
		}
		f, err := asFloat(vals[next])
		if err != nil {
			return err
		}
		next++
		switch arg {
		case 'k':
			if f < 1 {
				return fmt.Errorf("%s: k must be positive, got %v", ModuleName, f)
			}
			k = int(f)
		case 'r':
			radius = float32(f)
		}
	}

	idx, err := c.table.load(ctx, dataset)
	if err != nil {
		return err
	}
	var found *rank.Collection
	if radius >= 0 {
		if found, err = idx.Range(query, radius); err == nil && found.Len() > k {
			err = found.SetMaximalCapacity(k)
		}
	} else {
		found, err = idx.KNN(query, k)
	}
	if err != nil {
		return err
	}
	for item := range found.All() {
		d := float64(item.Distance)
		c.rows = append(c.rows, knnRow{id: item.Locator(), distance: &d, k: k})
	}
	return nil
}

// load builds the configured index over the vectors of dataset.
func (t *Table) load(ctx context.Context, dataset string) (index.Index, error) {
	var idx index.Index
	if t.opts.index == "cover" {
		opts := []cover.Option{cover.WithMetric(t.opts.metric)}
		if t.opts.base > 1 {
			opts = append(opts, cover.WithBase(t.opts.base))
		}
		idx = cover.New(opts...)
	} else {
		idx = bruteforce.New(t.opts.metric)
	}
	var vectors []*object.Vector
	for v, err := range t.store.Objects(ctx, dataset) {
		if err != nil {
			return nil, err
		}
		if len(v.Values) > 0 {
			vectors = append(vectors, v)
		}
	}
	if err := idx.Build(vectors); err != nil {
		return nil, err
	}
	return idx, nil
}

// Next advances the cursor.
func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}

// Eof reports end-of-rows.
func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }

// Column returns the value of a column in the current row.
func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("%s: Column out of range (pos=%d,len=%d)", ModuleName, c.pos, len(c.rows))
	}
	row := c.rows[c.pos]
	switch col {
	case colDataset:
		return c.dataset, nil
	case colID:
		return row.id, nil
	case colDistance:
		if row.distance == nil {
			return nil, nil
		}
		return *row.distance, nil
	case colK:
		return int64(row.k), nil
	}
	return nil, fmt.Errorf("%s: unsupported column %d", ModuleName, col)
}

// Rowid returns the rank of the current row, starting at 1.
func (c *Cursor) Rowid() (int64, error) { return int64(c.pos + 1), nil }

// Close releases resources.
func (c *Cursor) Close() error { c.rows = nil; c.pos = 0; return nil }

// decodeMatchArg accepts an embedding BLOB, a JSON array or a comma
// separated list of floats.
func decodeMatchArg(v vtab.Value) ([]float32, error) {
	switch val := v.(type) {
	case []byte:
		return engine.DecodeEmbedding(val)
	case string:
		s := strings.TrimSpace(val)
		if strings.HasPrefix(s, "[") {
			var floats []float32
			if err := json.Unmarshal([]byte(s), &floats); err != nil {
				return nil, fmt.Errorf("%s: invalid MATCH list: %w", ModuleName, err)
			}
			return floats, nil
		}
		values, err := object.ParseFloats(s)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("%s: MATCH string is empty", ModuleName)
		}
		return values, nil
	}
	return nil, fmt.Errorf("%s: expected MATCH arg as BLOB or string, got %T", ModuleName, v)
}

func asFloat(v vtab.Value) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case int64:
		return float64(val), nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: cannot parse %q: %w", ModuleName, val, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%s: unsupported numeric type %T", ModuleName, v)
}

func asString(v vtab.Value) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case nil:
		return "", fmt.Errorf("%s: dataset_id is nil", ModuleName)
	}
	return "", fmt.Errorf("%s: unsupported dataset_id type %T", ModuleName, v)
}

