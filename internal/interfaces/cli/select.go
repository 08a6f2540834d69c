package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/techflow/citechain/internal/domain/graph"
)

// newSelectCmd materializes a candidate set for one entity kind.
func newSelectCmd() *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select candidate entities under the citation-count filters",
		Long:  "Scans the configured year range for patents with more than min_cites and\nat most max_cites distinct incoming citations, then derives the requested\nentity kind from that set. Results are cached; a re-run with the same\nparameters performs no graph queries.",
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

			p := app.Cfg.Pipeline
			var ids []string
			switch kind {
			case graph.KindPatent:
				ids, err = sel.SelectPatents(cmd.Context(), p.MinCites, p.MaxCites)
			case graph.KindAssignee:
				ids, err = sel.SelectAssignees(cmd.Context(), p.MinCites, p.MaxCites)
			case graph.KindInventor:
				ids, err = sel.SelectInventors(cmd.Context(), p.MinCites, p.MaxCites)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d %s candidates (min_cites=%d max_cites=%d)\n",
				len(ids), kind, p.MinCites, p.MaxCites)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", string(graph.KindPatent), "entity kind: patent, assignee, inventor")
	return cmd
}
