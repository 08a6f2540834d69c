package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all settings.
const envPrefix = "TECHFLOW"

// settingKeys enumerates every configuration key.  Unmarshal only consults
// the environment for keys viper knows about, so each one is bound
// explicitly; AutomaticEnv alone is not enough for env-only configs.
var settingKeys = []string{
	"neo4j.uri", "neo4j.username", "neo4j.password", "neo4j.database",
	"neo4j.max_connection_pool_size", "neo4j.max_connection_lifetime",
	"neo4j.connection_acquisition_timeout",
	"artifacts.backend", "artifacts.dir",
	"artifacts.minio.endpoint", "artifacts.minio.access_key_id",
	"artifacts.minio.secret_access_key", "artifacts.minio.use_ssl",
	"artifacts.minio.region", "artifacts.minio.bucket", "artifacts.minio.prefix",
	"pipeline.min_cites", "pipeline.max_cites",
	"pipeline.start_year", "pipeline.end_year",
	"pipeline.patent_batches", "pipeline.entity_batches",
	"pipeline.crossref_cutoff",
	"log.level", "log.format", "log.output_paths", "log.error_output_paths",
	"metrics.enabled", "metrics.listen_addr",
}

// newViper builds a pre-configured Viper instance: YAML file type, TECHFLOW_
// env prefix, automatic env binding, and a key replacer mapping "." → "_" so
// nested keys like "neo4j.uri" resolve to "TECHFLOW_NEO4J_URI".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range settingKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, merges TECHFLOW_* environment
// overrides, applies defaults for unset fields, and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from TECHFLOW_* environment variables
// and defaults, with no config file required.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// MustLoad wraps Load and panics on any error, for use in main().
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
