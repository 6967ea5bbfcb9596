package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trknhr/viterbi/internal/logger"
	"github.com/trknhr/viterbi/internal/shell"
)

func newPromptCmd(a *app) *cobra.Command {
	var saveAs string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Enter a model and an observation sequence interactively, then decode it",
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := shell.NewSession(cmd.InOrStdin(), cmd.OutOrStdout()).Run()
			if err != nil {
				// already printed by the session
				logger.Debug("prompt session ended: %v", err)
				return err
			}
			if saveAs == "" {
				return nil
			}

			if err := a.open(); err != nil {
				return err
			}
			outcome.Document.Name = saveAs
			if err := a.models.SaveModel(outcome.Document); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved model %s\n", saveAs)
			return nil
		},
	}
	cmd.Flags().StringVar(&saveAs, "save", "", "register the entered model under this name")
	return cmd
}
