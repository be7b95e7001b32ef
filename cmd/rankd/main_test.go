package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ranking/dispatch"
	"github.com/viant/ranking/object"
	"github.com/viant/ranking/store"
)

func TestImportVectors(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	text := "# points\nvector\ta\t0,0\n\nvector\tb\t1 1\n"
	n, err := importVectors(ctx, s, "points", "text", strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var buf bytes.Buffer
	require.NoError(t, object.EncodeVectors(&buf, []*object.Vector{object.NewVector("c", 2, 2)}))
	n, err = importVectors(ctx, s, "points", "binary", &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var ids []string
	for v, err := range s.Objects(ctx, "points") {
		require.NoError(t, err)
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	_, err = importVectors(ctx, s, "points", "text", strings.NewReader("sequence\ts\tabc\n"))
	assert.ErrorIs(t, err, object.ErrIncompatible)
	_, err = importVectors(ctx, s, "points", "csv", strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseAssignments(t *testing.T) {
	params, err := parseAssignments([]string{"dataset=points", "query=1,2"})
	require.NoError(t, err)
	assert.Equal(t, dispatch.Params{"dataset": "points", "query": "1,2"}, params)
	_, err = parseAssignments([]string{"oops"})
	assert.Error(t, err)
}

func TestImportAndQueryCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "rankd.yaml")
	dsn := filepath.Join(dir, "ranking.sqlite")
	require.NoError(t, os.WriteFile(cfgPath, []byte("storage:\n  dsn: "+dsn+"\nlogging:\n  level: error\n"), 0o600))
	input := filepath.Join(dir, "points.tsv")
	require.NoError(t, os.WriteFile(input, []byte("vector\ta\t0,0\nvector\tb\t3,4\nvector\tc\t1,0\n"), 0o600))

	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"import", input, "--dataset", "points", "--config", cfgPath})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "imported 3 objects into points")

	out.Reset()
	root = rootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"query", "knn", "dataset=points", "query=0,0", "k=2", "metric=l2", "--config", cfgPath})
	require.NoError(t, root.Execute())
	var answer dispatch.Answer
	require.NoError(t, json.Unmarshal(out.Bytes(), &answer))
	require.Len(t, answer.Items, 2)
	assert.Equal(t, "a", answer.Items[0].ID)
	assert.Equal(t, "c", answer.Items[1].ID)
}
