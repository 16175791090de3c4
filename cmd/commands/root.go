package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/mgltickets/api/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type globalFlags struct {
	logLevel  string
	logFormat string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	serve := newServeCommand(flags)

	root := &cobra.Command{
		Use:           "mgltickets",
		Short:         "MGLTickets event ticketing API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format (json, console)")
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve)
	root.AddCommand(newMigrateCommand(flags))
	root.AddCommand(newCreateAdminCommand(flags))
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the CLI; serve is the default command.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runtime struct {
	cfg    *config.Config
	logger zerolog.Logger
	db     *gorm.DB
	closer io.Closer
}

func (r *runtime) Close() {
	if sqlDB, err := r.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			r.logger.Warn().Err(err).Msg("failed to close database")
		}
	}
	_ = r.closer.Close()
}

// bootstrap loads config, builds the logger and opens the database.
func bootstrap(flags *globalFlags) (*runtime, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Logging.Format = flags.logFormat
	}

	logger, closer, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	db, err := config.InitDatabase(cfg.Database, logger)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return &runtime{cfg: cfg, logger: logger, db: db, closer: closer}, nil
}
