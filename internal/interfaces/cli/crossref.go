package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/techflow/citechain/internal/domain/graph"
	"github.com/techflow/citechain/internal/infrastructure/storage/artifact"
	"github.com/techflow/citechain/pkg/errors"
)

// newCrossrefCmd materializes assignee-to-assignee citation pairs for the
// candidate patent set.
func newCrossrefCmd() *cobra.Command {
	var cutoffFlag string

	cmd := &cobra.Command{
		Use:   "crossref",
		Short: "Materialize assignee-to-assignee citation pairs",
		Long:  "For every candidate patent, collects (citing assignee, cited assignee)\npairs induced by its citations to patents granted on or after the cutoff\ndate. The pair list is cached under the cutoff.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			cutoffStr := cutoffFlag
			if cutoffStr == "" {
				cutoffStr = app.Cfg.Pipeline.CrossrefCutoff
			}
			cutoff, err := time.Parse("2006-01-02", cutoffStr)
			if err != nil {
				return errors.InvalidParam("cutoff must be an ISO date").WithDetail(cutoffStr)
			}

			sel, err := app.Selector()
			if err != nil {
				return err
			}
			q, err := app.Graph()
			if err != nil {
				return err
			}
			store, err := app.Store()
			if err != nil {
				return err
			}

			p := app.Cfg.Pipeline
			pids, err := sel.SelectPatents(cmd.Context(), p.MinCites, p.MaxCites)
			if err != nil {
				return err
			}

			key := artifact.CrossrefKey(cutoffStr)
			var pairs []graph.AssigneePair
			_, err = artifact.LoadOrGenerate(cmd.Context(), store, key, app.Log, &pairs, func(ctx context.Context) (interface{}, error) {
				return q.CrossReference(ctx, pids, cutoff)
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d assignee citation pairs (cutoff %s)\n", len(pairs), cutoffStr)
			return nil
		},
	}

	cmd.Flags().StringVar(&cutoffFlag, "cutoff", "", "minimum cited-patent grant date, ISO format (default from config)")
	return cmd
}
