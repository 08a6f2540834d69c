// Package cli wires the pipeline steps into a cobra command tree.  Each
// subcommand is one idempotent step; a failed step exits non-zero and a
// re-run resumes from the persisted artifacts.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/techflow/citechain/internal/application/chains"
	"github.com/techflow/citechain/internal/config"
	"github.com/techflow/citechain/internal/domain/graph"
	"github.com/techflow/citechain/internal/infrastructure/database/neo4j"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/logging"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/metrics"
	"github.com/techflow/citechain/internal/infrastructure/storage/artifact"
	"github.com/techflow/citechain/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App carries the initialized dependencies through the command tree.  The
// graph driver connects lazily: cache-hit steps never touch Neo4j.
type App struct {
	Cfg *config.Config
	Log logging.Logger

	store  artifact.Store
	driver *neo4j.Driver
}

// Store returns the configured artifact store, constructing it on first use.
func (a *App) Store() (artifact.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	var (
		s   artifact.Store
		err error
	)
	switch a.Cfg.Artifacts.Backend {
	case config.BackendMinIO:
		s, err = artifact.NewMinIOStore(a.Cfg.Artifacts.MinIO, a.Log)
	case config.BackendMemory:
		s = artifact.NewMemoryStore()
	default:
		s, err = artifact.NewFSStore(a.Cfg.Artifacts.Dir, a.Log)
	}
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

// Driver returns the Neo4j driver, constructing it on first use.  The driver
// itself dials only when the first transaction runs.
func (a *App) Driver() (*neo4j.Driver, error) {
	if a.driver != nil {
		return a.driver, nil
	}
	d, err := neo4j.NewDriver(a.Cfg.Neo4j, a.Log)
	if err != nil {
		return nil, err
	}
	a.driver = d
	return d, nil
}

// Graph returns the graph query port.
func (a *App) Graph() (graph.Query, error) {
	d, err := a.Driver()
	if err != nil {
		return nil, err
	}
	return neo4j.NewGraphRepository(d, a.Log), nil
}

// Selector builds the candidate selector over the configured year range.
func (a *App) Selector() (*chains.Selector, error) {
	q, err := a.Graph()
	if err != nil {
		return nil, err
	}
	s, err := a.Store()
	if err != nil {
		return nil, err
	}
	p := a.Cfg.Pipeline
	return chains.NewSelector(q, s, a.Log, p.StartYear, p.EndYear), nil
}

// Runner builds the checkpointing chain runner.
func (a *App) Runner() (*chains.Runner, error) {
	q, err := a.Graph()
	if err != nil {
		return nil, err
	}
	s, err := a.Store()
	if err != nil {
		return nil, err
	}
	return chains.NewRunner(chains.NewBuilder(q, a.Log), s, a.Log), nil
}

// Close releases the driver if a command connected it.
func (a *App) Close() {
	if a.driver != nil {
		_ = a.driver.Close()
	}
}

type appKey struct{}

func withApp(ctx context.Context, app *App) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, appKey{}, app)
}

// appFrom extracts the App placed in the command context by the root
// PersistentPreRunE.
func appFrom(cmd *cobra.Command) (*App, error) {
	app, ok := cmd.Context().Value(appKey{}).(*App)
	if !ok || app == nil {
		return nil, errors.Internal("command context has no initialized application")
	}
	return app, nil
}

// parseKind validates a --kind flag value.
func parseKind(value string) (graph.EntityKind, error) {
	kind := graph.EntityKind(strings.ToLower(value))
	if !kind.Valid() {
		return "", errors.InvalidParam("kind must be patent, assignee, or inventor").WithDetail(value)
	}
	return kind, nil
}

// NewRootCommand creates the root command with global flags and all steps.
func NewRootCommand() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:     "citechain",
		Short:   "Derive patent citation-chain datasets from a Neo4j patent graph",
		Long:    "citechain selects candidate patents under citation-count filters,\nderives their citation chains in checkpointed batches, and resolves one\nrepresentative assignee or inventor per patent by longest chain.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			log, err := logging.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			logging.SetDefault(log)

			app := &App{Cfg: cfg, Log: log}
			if cfg.Metrics.Enabled {
				go serveMetrics(cfg.Metrics.ListenAddr, log)
			}

			cmd.SetContext(withApp(cmd.Context(), app))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if app, err := appFrom(cmd); err == nil {
				app.Close()
			}
		},
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file path (default: ./citechain.yaml, else env only)")
	pf.StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSelectCmd(),
		newChainsCmd(),
		newResolveCmd(),
		newCrossrefCmd(),
		newLoadCmd(),
	)
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat("citechain.yaml"); err == nil {
		return config.Load("citechain.yaml")
	}
	return config.LoadFromEnv()
}

func serveMetrics(addr string, log logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	log.Info("metrics listener starting", logging.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn("metrics listener stopped", logging.Err(err))
	}
}

// Execute runs the CLI and reports the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		return 1
	}
	return 0
}
