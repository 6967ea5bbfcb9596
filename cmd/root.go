package cmd

import (
	"database/sql"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trknhr/viterbi/internal/config"
	"github.com/trknhr/viterbi/internal/engine"
	"github.com/trknhr/viterbi/internal/logger"
	"github.com/trknhr/viterbi/internal/metrics"
	"github.com/trknhr/viterbi/internal/modelfile"
	"github.com/trknhr/viterbi/internal/store"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	configFile string
	cfg        *config.Config

	db      *sql.DB
	models  store.ModelStore
	runs    store.RunStore
	meta    *store.MetaStore
	metrics *metrics.Metrics
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "viterbi",
		Short:         "Decode hidden Markov models with the Viterbi algorithm",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), a.configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			if err := logger.Init(cfg.Logger()); err != nil {
				return err
			}
			if cfg.File != "" {
				logger.Debug("config file: %s", cfg.File)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
			logger.Sync()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: viterbi.yaml in $VITERBI_CFG_PATH, . or the user config dir)")
	flags.String("db", "", "model registry database path")
	flags.String("log-level", "", "log level: debug, info, warn, error, none")
	flags.String("log-file", "", "also write logs to this file, rotated")

	cmd.AddCommand(
		newDecodeCmd(a),
		newBatchCmd(a),
		newScoreCmd(a),
		newPromptCmd(a),
		newTuiCmd(a),
		newServeCmd(a),
		newModelCmd(a),
		newSyncCmd(a),
		newRunsCmd(a),
	)
	return cmd
}

func Execute() error {
	return NewRootCmd().Execute()
}

// open connects to the registry once per invocation.
func (a *app) open() error {
	if a.db != nil {
		return nil
	}
	db, err := store.Open(a.cfg.DB.Path)
	if err != nil {
		return err
	}
	a.db = db
	a.models = store.NewSQLModelStore(db)
	a.runs = store.NewSQLRunStore(db)
	a.meta = store.NewMetaStore(db)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logger.Debug("failed to close db: %v", err)
		}
		a.db = nil
	}
}

// engine opens the registry and builds a decoding engine over it.
func (a *app) engine(saveRuns bool) (*engine.Engine, error) {
	if err := a.open(); err != nil {
		return nil, err
	}
	if a.metrics == nil {
		a.metrics = metrics.New()
	}
	return engine.New(a.models, a.runs, a.metrics, saveRuns && a.cfg.Decode.SaveRuns), nil
}

// modelRequest turns a --model value into a request: a path to a model file
// is decoded inline, anything else names a registered model.
func modelRequest(ref string) (engine.Request, error) {
	if ref == "" {
		return engine.Request{}, errors.New("--model is required")
	}
	if _, err := modelfile.FormatFromPath(ref); err == nil && fileExists(ref) {
		doc, err := modelfile.Load(ref)
		if err != nil {
			return engine.Request{}, err
		}
		return engine.Request{Model: doc.Name, Document: doc}, nil
	}
	return engine.Request{Model: ref}, nil
}
