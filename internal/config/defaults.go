package config

// ApplyDefaults fills unset fields with the pipeline's standard parameters.
// The citation bounds and batch counts mirror the published derivation:
// patents with more than 20 and at most 200 citations, scanned over
// 1976–2017, chained in 50 patent / 200 entity batches.
func ApplyDefaults(cfg *Config) {
	if cfg.Neo4j.URI == "" {
		cfg.Neo4j.URI = "bolt://localhost:7687"
	}
	if cfg.Neo4j.Username == "" {
		cfg.Neo4j.Username = "neo4j"
	}
	if cfg.Neo4j.Database == "" {
		cfg.Neo4j.Database = "neo4j"
	}

	if cfg.Artifacts.Backend == "" {
		cfg.Artifacts.Backend = BackendFS
	}
	if cfg.Artifacts.Backend == BackendFS && cfg.Artifacts.Dir == "" {
		cfg.Artifacts.Dir = "artifacts"
	}

	p := &cfg.Pipeline
	if p.MinCites == 0 {
		p.MinCites = 20
	}
	if p.MaxCites == 0 {
		p.MaxCites = 200
	}
	if p.StartYear == 0 {
		p.StartYear = 1976
	}
	if p.EndYear == 0 {
		p.EndYear = 2017
	}
	if p.PatentBatches == 0 {
		p.PatentBatches = 50
	}
	if p.EntityBatches == 0 {
		p.EntityBatches = 200
	}
	if p.CrossrefCutoff == "" {
		p.CrossrefCutoff = "2015-01-01"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stderr"}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = ":9090"
	}
}
