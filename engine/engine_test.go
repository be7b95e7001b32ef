package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInMemory(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("CREATE TABLE t(x INTEGER)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO t(x) VALUES (1),(2),(3)")
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
	assert.Equal(t, 3, n)
}

func TestEmbeddingRoundTrip(t *testing.T) {
	orig := []float32{0.0, 1.5, -2.25, 3.75}
	decoded, err := DecodeEmbedding(EncodeEmbedding(orig))
	require.NoError(t, err)
	assert.Equal(t, orig, decoded)

	assert.Empty(t, EncodeEmbedding(nil))
	empty, err := DecodeEmbedding(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = DecodeEmbedding([]byte{1, 2, 3})
	assert.Error(t, err)
}
