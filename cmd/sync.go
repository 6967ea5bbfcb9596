package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trknhr/viterbi/internal/worker"
)

func newSyncCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [dir]",
		Short: "Import changed model files from a directory into the registry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.Models.Dir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return errors.New("no model directory; pass one or set models.dir")
			}
			if err := a.open(); err != nil {
				return err
			}

			workers, err := worker.NewModelSyncWorkers(dir, a.models, a.meta)
			if err != nil {
				return err
			}
			report, err := worker.RunSyncWorkers(cmd.Context(), workers...)
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d, up to date %d, failed %d\n",
				len(report.Synced), len(report.Skipped), len(report.Failed))
			return err
		},
	}
	cmd.Flags().String("models-dir", "", "model directory (default models.dir)")
	return cmd
}
