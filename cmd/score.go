package cmd

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trknhr/viterbi/internal/sequence"
)

func newScoreCmd(a *app) *cobra.Command {
	var modelRef, obs, path string

	cmd := &cobra.Command{
		Use:     "score",
		Short:   "Print the joint probability of a given state path and observations",
		Example: `  viterbi score --model weather --obs walk,shop,walk --path sunny,sunny,sunny`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := modelRequest(modelRef)
			if err != nil {
				return err
			}
			req.Observations = sequence.Split(obs)
			states := sequence.Split(path)
			if len(states) == 0 {
				return errors.New("--path is required")
			}

			e, err := a.engine(false)
			if err != nil {
				return err
			}
			p, err := e.Score(cmd.Context(), req, states)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(p, 'g', -1, 64))
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelRef, "model", "m", "", "registered model name or model file path")
	cmd.Flags().StringVar(&obs, "obs", "", "observations separated by commas or spaces")
	cmd.Flags().StringVar(&path, "path", "", "state path separated by commas or spaces")
	return cmd
}
