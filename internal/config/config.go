// Package config provides configuration loading, defaults, and validation
// for the citation-chain pipeline.
package config

import (
	"fmt"
	"time"

	"github.com/techflow/citechain/internal/infrastructure/database/neo4j"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/logging"
	"github.com/techflow/citechain/internal/infrastructure/storage/artifact"
)

// Artifact store backends.
const (
	BackendFS     = "fs"
	BackendMinIO  = "minio"
	BackendMemory = "memory"
)

// Config is the root configuration of every pipeline step.
type Config struct {
	Neo4j     neo4j.Config      `mapstructure:"neo4j"`
	Artifacts ArtifactsConfig   `mapstructure:"artifacts"`
	Pipeline  PipelineConfig    `mapstructure:"pipeline"`
	Log       logging.LogConfig `mapstructure:"log"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
}

// ArtifactsConfig selects and parameterizes the artifact store backend.
type ArtifactsConfig struct {
	Backend string               `mapstructure:"backend"`
	Dir     string               `mapstructure:"dir"`
	MinIO   artifact.MinIOConfig `mapstructure:"minio"`
}

// PipelineConfig holds the derivation parameters.  The same artifact
// directory must never mix year ranges: the candidate-set key carries only
// the citation bounds.
type PipelineConfig struct {
	MinCites int `mapstructure:"min_cites"`
	MaxCites int `mapstructure:"max_cites"`

	// Candidate selection scans calendar-year windows [StartYear, EndYear].
	StartYear int `mapstructure:"start_year"`
	EndYear   int `mapstructure:"end_year"`

	// Batch counts per chain-building stage, in the array-split sense:
	// the candidate set is divided into this many near-equal batches.
	PatentBatches int `mapstructure:"patent_batches"`
	EntityBatches int `mapstructure:"entity_batches"`

	// CrossrefCutoff is the minimum cited-patent grant date (ISO date) for
	// the cross-reference step.
	CrossrefCutoff string `mapstructure:"crossref_cutoff"`
}

// CutoffDate parses CrossrefCutoff.
func (p PipelineConfig) CutoffDate() (time.Time, error) {
	return time.Parse("2006-01-02", p.CrossrefCutoff)
}

// MetricsConfig controls the optional Prometheus listener for long runs.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// Validate rejects configurations no pipeline step could run with.
func (c *Config) Validate() error {
	switch c.Artifacts.Backend {
	case BackendFS:
		if c.Artifacts.Dir == "" {
			return fmt.Errorf("artifacts.dir is required for the fs backend")
		}
	case BackendMinIO:
		if c.Artifacts.MinIO.Endpoint == "" || c.Artifacts.MinIO.Bucket == "" {
			return fmt.Errorf("artifacts.minio.endpoint and artifacts.minio.bucket are required for the minio backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("artifacts.backend must be one of fs, minio, memory, got %q", c.Artifacts.Backend)
	}

	p := c.Pipeline
	if p.MinCites < 0 {
		return fmt.Errorf("pipeline.min_cites must not be negative")
	}
	if p.MaxCites <= p.MinCites {
		return fmt.Errorf("pipeline.max_cites (%d) must exceed pipeline.min_cites (%d)", p.MaxCites, p.MinCites)
	}
	if p.EndYear < p.StartYear {
		return fmt.Errorf("pipeline.end_year (%d) must not precede pipeline.start_year (%d)", p.EndYear, p.StartYear)
	}
	if p.PatentBatches < 1 || p.EntityBatches < 1 {
		return fmt.Errorf("pipeline batch counts must be at least 1")
	}
	if _, err := p.CutoffDate(); err != nil {
		return fmt.Errorf("pipeline.crossref_cutoff must be an ISO date: %w", err)
	}

	if c.Neo4j.URI == "" {
		return fmt.Errorf("neo4j.uri is required")
	}
	return nil
}
