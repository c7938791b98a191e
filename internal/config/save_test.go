package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefaultConfig_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# mibstore configuration")
	assert.Contains(t, string(data), "table_container:binary_array")
	assert.Contains(t, string(data), "# Expression table storage.")

	cfg, used, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, used)
	require.Equal(t, Defaults().Registry.DefaultType, cfg.Registry.DefaultType)
	require.Equal(t, Defaults().Registry.IndexType, cfg.Registry.IndexType)
	require.Empty(t, cfg.Registry.Aliases)
	require.Equal(t, Defaults().Metrics, cfg.Metrics)
	require.NoError(t, cfg.Validate())
}

func TestSaveAliases_CreatesNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SaveAliases(path, map[string]string{"rows": "fifo", "idx": "lifo:fifo"}))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"rows": "fifo", "idx": "lifo:fifo"}, cfg.Registry.Aliases)
}

func TestSaveAliases_PreservesOtherConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# keep me
registry:
  default_type: "null" # inline
  aliases:
    old: fifo
storage:
  db_path: /data/m.db
`
	require.NoError(t, os.WriteFile(path, []byte(initial), 0o600))

	require.NoError(t, SaveAliases(path, map[string]string{"new": "lifo"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# keep me")
	assert.Contains(t, string(data), "# inline")
	assert.NotContains(t, string(data), "old: fifo")

	cfg, _, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "null", cfg.Registry.DefaultType)
	require.Equal(t, "/data/m.db", cfg.Storage.DBPath)
	require.Equal(t, map[string]string{"new": "lifo"}, cfg.Registry.Aliases)
}

func TestSaveAliases_ReplacesScalarRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("registry: oops\n"), 0o600))

	require.NoError(t, SaveAliases(path, map[string]string{"a": "null"}))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a": "null"}, cfg.Registry.Aliases)
}

func TestSaveAliases_RejectsNonMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))

	require.Error(t, SaveAliases(path, nil))
}

func TestSaveAliases_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, SaveAliases(path, map[string]string{"a": "null"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
