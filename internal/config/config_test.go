package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultDirectoryFitsOnePage(t *testing.T) {
	cfg := Default()
	// directory entry = 4 (first page id) + 4 (reserved) + name width + 2 (padding)
	entrySize := 4 + 4 + cfg.DirectoryNameWidth + 2
	used := 10 + cfg.MaxDirectoryEntries*entrySize
	require.LessOrEqual(t, used, cfg.PageSize)
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nanodb.yaml")
	yaml := "database_file: custom.db\npage_size: 1024\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "custom.db", cfg.DatabaseFile)
	require.Equal(t, 1024, cfg.PageSize)
	require.Equal(t, "debug", cfg.LogLevel)
	// unspecified fields keep their defaults.
	require.Equal(t, Default().NumPages, cfg.NumPages)
	require.Equal(t, Default().BufferPoolCapacity, cfg.BufferPoolCapacity)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
