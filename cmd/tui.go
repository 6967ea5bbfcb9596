package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/trknhr/viterbi/internal/tui"
)

func newTuiCmd(a *app) *cobra.Command {
	var modelName string

	cmd := &cobra.Command{
		Use:   "tui [observation...]",
		Short: "Pick a registered model and decode observations interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine(true)
			if err != nil {
				return err
			}
			return tui.Run(e, modelName, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVarP(&modelName, "model", "m", "", "model to select initially")
	return cmd
}
