package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, BackendFS, cfg.Artifacts.Backend)
	assert.Equal(t, "artifacts", cfg.Artifacts.Dir)
	assert.Equal(t, 20, cfg.Pipeline.MinCites)
	assert.Equal(t, 200, cfg.Pipeline.MaxCites)
	assert.Equal(t, 1976, cfg.Pipeline.StartYear)
	assert.Equal(t, 2017, cfg.Pipeline.EndYear)
	assert.Equal(t, 50, cfg.Pipeline.PatentBatches)
	assert.Equal(t, 200, cfg.Pipeline.EntityBatches)
	assert.Equal(t, "2015-01-01", cfg.Pipeline.CrossrefCutoff)
	assert.Equal(t, []string{"stderr"}, cfg.Log.OutputPaths)

	cutoff, err := cfg.Pipeline.CutoffDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC), cutoff)

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		ApplyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Artifacts.Backend = "s3" }},
		{"fs without dir", func(c *Config) { c.Artifacts.Dir = "" }},
		{"minio without bucket", func(c *Config) { c.Artifacts.Backend = BackendMinIO }},
		{"max not above min", func(c *Config) { c.Pipeline.MaxCites = c.Pipeline.MinCites }},
		{"inverted years", func(c *Config) { c.Pipeline.EndYear = c.Pipeline.StartYear - 1 }},
		{"zero batches", func(c *Config) { c.Pipeline.PatentBatches = -1 }},
		{"bad cutoff", func(c *Config) { c.Pipeline.CrossrefCutoff = "Jan 1 2015" }},
		{"missing uri", func(c *Config) { c.Neo4j.URI = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
neo4j:
  uri: bolt://graph:7687
  username: pipeline
pipeline:
  min_cites: 10
  max_cites: 50
artifacts:
  backend: memory
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bolt://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, "pipeline", cfg.Neo4j.Username)
	assert.Equal(t, 10, cfg.Pipeline.MinCites)
	assert.Equal(t, 50, cfg.Pipeline.MaxCites)
	assert.Equal(t, BackendMemory, cfg.Artifacts.Backend)
	// Untouched sections still get defaults.
	assert.Equal(t, 50, cfg.Pipeline.PatentBatches)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TECHFLOW_NEO4J_URI", "bolt://env:7687")
	t.Setenv("TECHFLOW_ARTIFACTS_BACKEND", "memory")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "bolt://env:7687", cfg.Neo4j.URI)
	assert.Equal(t, BackendMemory, cfg.Artifacts.Backend)
}
