package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
explore:
  data_dir: ./data
  max_base: 10
  max_digits: 4
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, 2, cfg.Explore.MinBase)
	assert.Equal(t, 10, cfg.Explore.MaxBase)
	assert.Equal(t, 2, cfg.Explore.MinDigits)
	assert.Equal(t, 4, cfg.Explore.MaxDigits)
	assert.Equal(t, 13, cfg.Explore.DigitThreshold)
	assert.Equal(t, 1, cfg.Worker.CPUCores)
	assert.Equal(t, 20, cfg.Worker.ChunksPerCore)
	assert.Equal(t, 5000, cfg.Worker.MinChunkSize)
	assert.Equal(t, 100000, cfg.Worker.MaxChunkSize)
}

func TestLoad_MissingMaxBaseOrMaxDigitsIsRequired(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(configFile, []byte("explore:\n  max_digits: 4\n"), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_base is required")
}

func TestLoad_CustomValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
explore:
  min_base: 2
  max_base: 16
  min_digits: 2
  max_digits: 6
  data_dir: "/tmp/kaprekar"
  digit_threshold: 18
worker:
  cpu_cores: 4
  chunks_per_core: 10
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Explore.MinBase)
	assert.Equal(t, 16, cfg.Explore.MaxBase)
	assert.Equal(t, 6, cfg.Explore.MaxDigits)
	assert.Equal(t, "/tmp/kaprekar", cfg.Explore.DataDir)
	assert.Equal(t, 18, cfg.Explore.DigitThreshold)
	assert.Equal(t, 4, cfg.Worker.CPUCores)
	assert.Equal(t, 10, cfg.Worker.ChunksPerCore)
}

func TestLoad_InvalidRange(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
explore:
  min_base: 10
  max_base: 4
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_base must be >= min_base")
}

func TestValidate_BadMinBase(t *testing.T) {
	cfg := &Config{
		Explore: ExploreConfig{MinBase: 1, MaxBase: 10, MinDigits: 1, MaxDigits: 2},
		Worker:  WorkerConfig{ChunksPerCore: 20, MinChunkSize: 5000, MaxChunkSize: 100000},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "min_base must be >= 2")
}

func TestValidate_InvalidChunkSizes(t *testing.T) {
	cfg := &Config{
		Explore: ExploreConfig{MinBase: 2, MaxBase: 10, MinDigits: 1, MaxDigits: 2},
		Worker:  WorkerConfig{ChunksPerCore: 20, MinChunkSize: 100000, MaxChunkSize: 5000},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_chunk_size must be >= min_chunk_size")
}

func TestOutputPath(t *testing.T) {
	cfg := &Config{
		Explore: ExploreConfig{DataDir: "/tmp/data"},
	}

	assert.Equal(t, "/tmp/data/csv/kaprekar_summary.csv", cfg.OutputPath("kaprekar_summary.csv"))
}

func TestEnsureDataDir(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "explore", "data")

	cfg := &Config{
		Explore: ExploreConfig{DataDir: dataDir},
	}

	err := cfg.EnsureDataDir()
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dataDir, "csv"))
	assert.NoError(t, err)
}

func TestLoad_FileNotFound(t *testing.T) {
	// max_base and max_digits are required with no default (§6), so a
	// missing config file with no flags supplied fails validation rather
	// than silently falling back to some base/digit rectangle.
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestLoadFromReader(t *testing.T) {
	content := []byte(`
explore:
  min_base: 8
  max_base: 12
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Explore.MinBase)
	assert.Equal(t, 12, cfg.Explore.MaxBase)
}
