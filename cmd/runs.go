package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trknhr/viterbi/internal/shell"
)

func newRunsCmd(a *app) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "runs [model]",
		Short: "List recorded decodes, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			model := ""
			if len(args) == 1 {
				model = args[0]
			}
			runs, err := a.runs.ListRuns(model, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), runs)
			}
			out := cmd.OutOrStdout()
			for _, r := range runs {
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\t%s\n",
					r.ID,
					r.CreatedAt.Format("2006-01-02 15:04:05"),
					r.Model,
					strings.Join(r.Observations, " "),
					shell.FormatPath(r.Path),
					strconv.FormatFloat(r.Probability, 'g', -1, 64))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the runs as JSON")
	return cmd
}
