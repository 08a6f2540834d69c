package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/techflow/citechain/internal/domain/graph"
)

// newChainsCmd derives citation chains for a candidate set with checkpointed
// resumption.
func newChainsCmd() *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "chains",
		Short: "Derive citation chains in checkpointed batches",
		Long:  "Builds the citation chain of every candidate of the given kind, one read\ntransaction per batch, persisting a checkpoint artifact after each batch.\nAn interrupted run resumes from the last completed checkpoint.",
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
			runner, err := app.Runner()
			if err != nil {
				return err
			}

			p := app.Cfg.Pipeline
			var (
				ids        []string
				batchCount int
			)
			switch kind {
			case graph.KindPatent:
				ids, err = sel.SelectPatents(cmd.Context(), p.MinCites, p.MaxCites)
				batchCount = p.PatentBatches
			case graph.KindAssignee:
				ids, err = sel.SelectAssignees(cmd.Context(), p.MinCites, p.MaxCites)
				batchCount = p.EntityBatches
			case graph.KindInventor:
				ids, err = sel.SelectInventors(cmd.Context(), p.MinCites, p.MaxCites)
				batchCount = p.EntityBatches
			}
			if err != nil {
				return err
			}

			lengths, err := runner.Run(cmd.Context(), ids, kind, batchCount)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d %s chains derived\n", len(lengths), kind)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", string(graph.KindAssignee), "entity kind: patent, assignee, inventor")
	return cmd
}
