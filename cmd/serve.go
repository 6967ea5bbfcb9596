package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trknhr/viterbi/internal/logger"
	"github.com/trknhr/viterbi/internal/server"
	"github.com/trknhr/viterbi/internal/worker"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve decoding and the model registry over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine(true)
			if err != nil {
				return err
			}

			if dir := a.cfg.Models.Dir; dir != "" {
				workers, err := worker.NewModelSyncWorkers(dir, a.models, a.meta)
				if err != nil {
					logger.Warn("model sync skipped: %v", err)
				} else {
					worker.LaunchSyncWorkers(workers...)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(e, a.metrics).Run(ctx, a.cfg.Server.Addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("models-dir", "", "import model files from this directory on startup")
	return cmd
}
