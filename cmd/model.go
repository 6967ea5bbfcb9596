package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trknhr/viterbi/internal/hmm"
	"github.com/trknhr/viterbi/internal/modelfile"
)

func newModelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage the model registry",
	}
	cmd.AddCommand(
		newModelImportCmd(a),
		newModelListCmd(a),
		newModelShowCmd(a),
		newModelCheckCmd(a),
		newModelRmCmd(a),
	)
	return cmd
}

func newModelImportCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Register model files (.yaml, .yml, .json, .hmm, .txt)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name != "" && len(args) > 1 {
				return errors.New("--name needs exactly one file")
			}
			if err := a.open(); err != nil {
				return err
			}
			for _, path := range args {
				doc, err := modelfile.Load(path)
				if err != nil {
					return err
				}
				if name != "" {
					doc.Name = name
				}
				for _, issue := range hmm.Check(doc.Spec()) {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", doc.Name, issue)
				}
				if err := a.models.SaveModel(doc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s from %s\n", doc.Name, path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "register under this name instead of the file's")
	return cmd
}

func newModelListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered models",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			infos, err := a.models.ListModels()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, info := range infos {
				fmt.Fprintf(out, "%s\t%d states\t%d symbols\t%s\t%s\n",
					info.Name, info.NumStates, info.NumSymbols, info.Hash[:12],
					info.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newModelShowCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a registered model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			doc, err := a.models.GetModel(args[0])
			if err != nil {
				return err
			}
			data, err := modelfile.Marshal(doc, modelfile.Format(format))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(modelfile.FormatYAML), "output format: yaml, json or text")
	return cmd
}

func newModelCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <name|file>",
		Short: "Report missing entries and rows that do not sum to 1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc *modelfile.Document
			if fileExists(args[0]) {
				var err error
				if doc, err = modelfile.Load(args[0]); err != nil {
					return err
				}
			} else {
				if err := a.open(); err != nil {
					return err
				}
				var err error
				if doc, err = a.models.GetModel(args[0]); err != nil {
					return err
				}
			}

			if _, err := doc.Model(); err != nil {
				return err
			}
			issues := hmm.Check(doc.Spec())
			out := cmd.OutOrStdout()
			for _, issue := range issues {
				fmt.Fprintln(out, issue)
			}
			if len(issues) > 0 {
				return errors.Errorf("%s: %d issues", doc.Name, len(issues))
			}
			fmt.Fprintf(out, "%s: ok\n", doc.Name)
			return nil
		},
	}
}

func newModelRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>...",
		Short: "Remove registered models",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			for _, name := range args {
				if err := a.models.DeleteModel(name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", name)
			}
			return nil
		},
	}
}
