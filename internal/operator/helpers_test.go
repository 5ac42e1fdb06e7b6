package operator

import (
	"path/filepath"
	"testing"

	"github.com/nanodb/nanodb/internal/buffer"
	"github.com/nanodb/nanodb/internal/disk"
	"github.com/nanodb/nanodb/internal/heap"
	"github.com/nanodb/nanodb/internal/record"
	"github.com/stretchr/testify/require"
)

func newTestFile(t *testing.T, pageSize, numPages, bufCap int, schema *record.Schema) *heap.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nano.db")
	d, err := disk.Open(path, pageSize, numPages, nil)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	buf := buffer.New(d, bufCap, nil)
	dir := heap.NewDirectory(buf, 4, 2)
	require.NoError(t, dir.InitIfNeeded())
	f, err := heap.CreateFile(buf, dir, "t", schema.Size(), nil)
	require.NoError(t, err)
	return f
}

func studentSchema() *record.Schema {
	return record.NewSchema([]record.Field{
		{Name: "id", Type: record.Int},
		{Name: "name", Type: record.Varchar, Width: 10},
		{Name: "score", Type: record.Int},
	})
}
