package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/techflow/citechain/internal/domain/graph"
	"github.com/techflow/citechain/internal/infrastructure/database/neo4j"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/logging"
	"github.com/techflow/citechain/internal/infrastructure/source"
	"github.com/techflow/citechain/pkg/errors"
)

// newLoadCmd bulk-loads PatentsView-style TSV dumps into the graph.  Node
// files load before edge files; the edge merges skip rows whose endpoints
// are missing.
func newLoadCmd() *cobra.Command {
	var (
		patentsFile   string
		assigneesFile string
		inventorsFile string
		citationsFile string
		ownershipFile string
		inventionFile string
		chunkSize     int
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Bulk-load TSV dumps into the patent graph",
		Long:  "Creates uniqueness constraints, then merges nodes and relationships from\nPatentsView-style TSV dumps in batched write transactions. Re-running with\nthe same files is idempotent.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			if patentsFile == "" && assigneesFile == "" && inventorsFile == "" &&
				citationsFile == "" && ownershipFile == "" && inventionFile == "" {
				return errors.InvalidParam("at least one input file is required")
			}

			d, err := app.Driver()
			if err != nil {
				return err
			}
			loader := neo4j.NewGraphLoader(d, app.Log)
			reader := source.NewReader(app.Log)
			ctx := cmd.Context()

			if err := loader.EnsureConstraints(ctx); err != nil {
				return err
			}

			withFile := func(path string, use func(*os.File) error) error {
				if path == "" {
					return nil
				}
				f, err := os.Open(path)
				if err != nil {
					return errors.Wrap(err, errors.ErrCodeSourceUnusable, "failed to open input file").WithDetail(path)
				}
				defer f.Close()
				app.Log.Info("loading file", logging.String("path", path))
				return use(f)
			}

			if err := withFile(patentsFile, func(f *os.File) error {
				return reader.ReadPatents(f, chunkSize, func(rows []graph.PatentRow) error {
					return loader.LoadPatents(ctx, rows)
				})
			}); err != nil {
				return err
			}
			if err := withFile(assigneesFile, func(f *os.File) error {
				return reader.ReadAssignees(f, chunkSize, func(rows []graph.AssigneeRow) error {
					return loader.LoadAssignees(ctx, rows)
				})
			}); err != nil {
				return err
			}
			if err := withFile(inventorsFile, func(f *os.File) error {
				return reader.ReadInventors(f, chunkSize, func(rows []graph.InventorRow) error {
					return loader.LoadInventors(ctx, rows)
				})
			}); err != nil {
				return err
			}
			if err := withFile(citationsFile, func(f *os.File) error {
				return reader.ReadEdges(f, "patent_id", "citation_id", chunkSize, func(rows []graph.EdgeRow) error {
					return loader.LoadCitations(ctx, rows)
				})
			}); err != nil {
				return err
			}
			if err := withFile(ownershipFile, func(f *os.File) error {
				return reader.ReadEdges(f, "assignee_id", "patent_id", chunkSize, func(rows []graph.EdgeRow) error {
					return loader.LoadOwnership(ctx, rows)
				})
			}); err != nil {
				return err
			}
			if err := withFile(inventionFile, func(f *os.File) error {
				return reader.ReadEdges(f, "inventor_id", "patent_id", chunkSize, func(rows []graph.EdgeRow) error {
					return loader.LoadInvention(ctx, rows)
				})
			}); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "load complete")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&patentsFile, "patents", "", "patent node TSV")
	f.StringVar(&assigneesFile, "assignees", "", "assignee node TSV")
	f.StringVar(&inventorsFile, "inventors", "", "inventor node TSV")
	f.StringVar(&citationsFile, "citations", "", "patent citation edge TSV")
	f.StringVar(&ownershipFile, "ownership", "", "patent-assignee edge TSV")
	f.StringVar(&inventionFile, "invention", "", "patent-inventor edge TSV")
	f.IntVar(&chunkSize, "chunk-size", source.DefaultChunkSize, "rows per load transaction")
	return cmd
}
