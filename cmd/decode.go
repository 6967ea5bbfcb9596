package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trknhr/viterbi/internal/engine"
	"github.com/trknhr/viterbi/internal/sequence"
	"github.com/trknhr/viterbi/internal/shell"
)

func newDecodeCmd(a *app) *cobra.Command {
	var (
		modelRef string
		obs      string
		asJSON   bool
		noSave   bool
	)

	cmd := &cobra.Command{
		Use:   "decode [observation...]",
		Short: "Print the most probable hidden state path for one observation sequence",
		Example: `  viterbi decode --model weather walk shop walk
  viterbi decode --model ./weather.yaml --obs walk,shop,walk --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := modelRequest(modelRef)
			if err != nil {
				return err
			}
			req.Observations = append(sequence.Split(obs), args...)
			if len(req.Observations) == 0 {
				return errors.New("no observations given; use --obs or positional arguments")
			}

			e, err := a.engine(!noSave)
			if err != nil {
				return err
			}
			resp, err := e.Decode(cmd.Context(), req)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			printResponse(cmd, resp)
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelRef, "model", "m", "", "registered model name or model file path")
	cmd.Flags().StringVar(&obs, "obs", "", "observations separated by commas or spaces")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the run in the registry")
	return cmd
}

func printResponse(cmd *cobra.Command, resp engine.Response) {
	out := cmd.OutOrStdout()
	if len(resp.Unknown) > 0 {
		fmt.Fprintf(out, "Warning: %s not in the model's symbols; emission probability 0\n", strings.Join(resp.Unknown, ", "))
	}
	fmt.Fprintf(out, "Best hidden state sequence: %s\n", shell.FormatPath(resp.Path))
	fmt.Fprintf(out, "Probability of the best path: %s\n", strconv.FormatFloat(resp.Probability, 'g', -1, 64))
}
