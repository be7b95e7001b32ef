package engine

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/viant/vec/search"
	sqlite "modernc.org/sqlite"
)

var registerOnce sync.Once
var registerErr error

// RegisterVectorFunctions registers vec_cosine (similarity, 0 for a
// zero-magnitude operand) and vec_l2
// (Euclidean distance) with the driver. Functions are visible on connections
// opened after the first call; later calls are no-ops.
func RegisterVectorFunctions() error {
	registerOnce.Do(func() {
		if err := sqlite.RegisterDeterministicScalarFunction("vec_cosine", 2, vecCosine); err != nil {
			registerErr = fmt.Errorf("engine: register vec_cosine: %w", err)
			return
		}
		if err := sqlite.RegisterDeterministicScalarFunction("vec_l2", 2, vecL2); err != nil {
			registerErr = fmt.Errorf("engine: register vec_l2: %w", err)
		}
	})
	return registerErr
}

func embeddings(name string, args []driver.Value) (search.Float32s, search.Float32s, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
	}
	var out [2]search.Float32s
	for i, arg := range args {
		switch v := arg.(type) {
		case nil:
		case []byte:
			values, err := DecodeEmbedding(v)
			if err != nil {
				return nil, nil, err
			}
			out[i] = values
		default:
			return nil, nil, fmt.Errorf("%s: unsupported argument type %T for embedding; want BLOB", name, arg)
		}
	}
	if out[0] != nil && out[1] != nil && len(out[0]) != len(out[1]) {
		return nil, nil, fmt.Errorf("%s: dim mismatch %d vs %d", name, len(out[0]), len(out[1]))
	}
	return out[0], out[1], nil
}

func vecCosine(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := embeddings("vec_cosine", args)
	if err != nil || a == nil || b == nil {
		return nil, err
	}
	ma, mb := a.Magnitude(), b.Magnitude()
	if ma == 0 || mb == 0 {
		return float64(0), nil
	}
	return float64(1 - a.CosineDistanceWithMagnitude(b, ma, mb)), nil
}

func vecL2(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := embeddings("vec_l2", args)
	if err != nil || a == nil || b == nil {
		return nil, err
	}
	return float64(a.EuclideanDistance(b)), nil
}
