package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trknhr/viterbi/internal/logger"
	"github.com/trknhr/viterbi/internal/sequence"
	"github.com/trknhr/viterbi/internal/shell"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		modelRef string
		input    string
		tail     int
		asJSON   bool
		noSave   bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Decode every sequence of a file, one sequence per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := modelRequest(modelRef)
			if err != nil {
				return err
			}
			if input == "" {
				return errors.New("--input is required")
			}
			seqs, err := sequence.LoadTail(input, tail)
			if err != nil {
				return errors.Wrapf(err, "read %s", input)
			}
			logger.Debug("loaded %d sequences from %s", len(seqs), input)

			e, err := a.engine(!noSave)
			if err != nil {
				return err
			}
			resps, err := e.DecodeBatch(cmd.Context(), req, seqs, a.cfg.Decode.Workers)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resps)
			}
			out := cmd.OutOrStdout()
			for i, resp := range resps {
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\n",
					i+1,
					strings.Join(seqs[i], " "),
					shell.FormatPath(resp.Path),
					strconv.FormatFloat(resp.Probability, 'g', -1, 64))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelRef, "model", "m", "", "registered model name or model file path")
	cmd.Flags().StringVarP(&input, "input", "i", "", "file with one observation sequence per line")
	cmd.Flags().IntVar(&tail, "tail", 0, "only decode the last n sequences")
	cmd.Flags().Int("workers", 0, "concurrent decodes (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the results as JSON")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the runs in the registry")
	return cmd
}
