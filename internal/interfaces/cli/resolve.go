package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/techflow/citechain/internal/application/chains"
	"github.com/techflow/citechain/internal/domain/graph"
)

// newResolveCmd materializes the pid→representative map for a kind.
func newResolveCmd() *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve one representative entity per patent by longest chain",
		Long:  "For every candidate patent, picks the associated assignee or inventor with\nthe longest citation chain. Requires a completed 'chains' run for the kind;\nthe result is cached under the kind's representative key.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			kind, err := parseKind(kindFlag)
			if err != nil {
				return err
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

			svc := chains.NewRepresentativeService(q, store, chains.NewResolver(app.Log), app.Log)
			reps, err := svc.Materialize(cmd.Context(), pids, kind)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d patents resolved to a representative %s\n", len(reps), kind)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", string(graph.KindAssignee), "entity kind: assignee, inventor")
	return cmd
}
