package heap

import (
	"path/filepath"
	"testing"

	"github.com/nanodb/nanodb/internal/buffer"
	"github.com/nanodb/nanodb/internal/disk"
	"github.com/stretchr/testify/require"
)

func newTestEnv(t *testing.T, pageSize, numPages, bufCap, maxEntries, nameWidth int) (*buffer.Manager, *Directory) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nano.db")
	d, err := disk.Open(path, pageSize, numPages, nil)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	buf := buffer.New(d, bufCap, nil)
	dir := NewDirectory(buf, nameWidth, maxEntries)
	require.NoError(t, dir.InitIfNeeded())
	return buf, dir
}
