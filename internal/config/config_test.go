package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "results.bin", cfg.OutputPath)
	require.Equal(t, "checkpoint.bin", cfg.CheckpointPath)
	require.Equal(t, 10_000, cfg.BatchSize)
	require.Equal(t, 1_000_000, cfg.CheckpointEvery)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch_size: 500\noutput: custom.bin\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 500, cfg.BatchSize)
	require.Equal(t, "custom.bin", cfg.OutputPath)
	require.Equal(t, 1_000_000, cfg.CheckpointEvery) // untouched default survives
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 7\nthreads: 2\n"), 0o644))

	t.Setenv("BSIM_SEED", "42")
	t.Setenv("BSIM_THREADS", "8")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint64(42), cfg.Seed)
	require.Equal(t, 8, cfg.Threads)
}

func TestValidateRejectsConflictingFormatFlags(t *testing.T) {
	cfg := Defaults()
	cfg.Extended = true
	cfg.Aggregated = true
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveBatchSize(t *testing.T) {
	cfg := Defaults()
	cfg.BatchSize = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsSQLiteExportWithoutAggregated(t *testing.T) {
	cfg := Defaults()
	cfg.SQLiteExport = "rollup.sqlite"
	require.Error(t, cfg.Validate())

	cfg.Aggregated = true
	require.NoError(t, cfg.Validate())
}
