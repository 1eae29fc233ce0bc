package main

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sunsu-Sulution/bear-vault/internal/config"
	"github.com/Sunsu-Sulution/bear-vault/internal/dashboard"
	"github.com/Sunsu-Sulution/bear-vault/internal/db/connection"
	"github.com/Sunsu-Sulution/bear-vault/internal/history"
)

// rootOptions holds state shared by every subcommand
type rootOptions struct {
	configPath string

	cfg *config.Config
	lg  *zap.Logger
	loc *time.Location
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "Filter compilation and chart aggregation for dashboards",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.lg != nil {
				_ = opts.lg.Sync()
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config.yaml")

	cmd.AddCommand(
		newCompileCmd(opts),
		newRunCmd(opts),
		newPreviewCmd(opts),
		newChartsCmd(opts),
		newHistoryCmd(opts),
		newConnectionsCmd(opts),
		newTablesCmd(opts),
		newOperatorsCmd(opts),
	)
	return cmd
}

func (o *rootOptions) setup() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	lg, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	o.cfg, o.loc, o.lg = cfg, loc, lg
	return nil
}

func newLogger(c config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if c.Level != "" {
		level, err := zap.ParseAtomicLevel(c.Level)
		if err != nil {
			return nil, errors.Wrap(err, "parse log level")
		}
		zc.Level = level
	}
	zc.OutputPaths = []string{"stderr"}
	lg, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return lg, nil
}

// env is the wired runtime for commands that talk to databases
type env struct {
	cfg     *config.Config
	lg      *zap.Logger
	sources *connection.Manager
	store   *history.Store
	runner  *dashboard.Runner
}

func (o *rootOptions) openEnv() *env {
	e := &env{
		cfg:     o.cfg,
		lg:      o.lg,
		sources: connection.NewManager(o.cfg.Connections, o.cfg.Performance.ConnectionPoolSize, o.loc, connection.WithManagerLogger(o.lg)),
	}

	runnerOpts := []dashboard.RunnerOption{
		dashboard.WithLocation(o.loc),
		dashboard.WithLimit(o.cfg.General.DefaultLimit),
		dashboard.WithSampleSize(o.cfg.General.SampleSize),
		dashboard.WithLogger(o.lg),
	}
	if o.cfg.History.Enabled {
		store, err := o.openHistory()
		if err != nil {
			o.lg.Warn("History disabled", zap.Error(err))
		} else {
			e.store = store
			runnerOpts = append(runnerOpts, dashboard.WithRecorder(store))
		}
	}
	e.runner = dashboard.NewRunner(e.sources, runnerOpts...)
	return e
}

func (o *rootOptions) openHistory() (*history.Store, error) {
	path, err := o.cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	return history.NewStore(path, o.cfg.History.MaxEntries)
}

// withTimeout bounds a single chart run by the configured query timeout
func (e *env) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d := e.cfg.QueryTimeout(); d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

func (e *env) Close() {
	e.sources.Close()
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.lg.Warn("Close history", zap.Error(err))
		}
	}
}
