package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/oteladapters"
	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine"
	"github.com/AntonStoeckl/library-circulation-go/shell"
	"github.com/AntonStoeckl/library-circulation-go/shell/config"
)

const (
	version         = "0.1.0"
	instrumentation = "librarian"
)

var (
	configPath    string
	envFile       string
	verbose       bool
	retries       int
	correlationID string
)

// session is what every subcommand runs against. It is set up in PersistentPreRunE.
type session struct {
	library   *postgresengine.Library
	logger    *slog.Logger
	metrics   *oteladapters.MetricsCollector
	closeDB   func()
	providers *config.ObservabilityProviders
}

var current *session

var rootCmd = &cobra.Command{
	Use:           "librarian",
	Short:         "Run the circulation desk of a library backed by PostgreSQL",
	Long:          `Librarian manages books, members, loans, fees and payments in a PostgreSQL database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if offline(cmd) {
			return nil
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}

		current = s

		return nil
	},
}

// offline reports whether cmd works without a database, like help and shell completion.
func offline(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "help" || c.Name() == "completion" || strings.HasPrefix(c.Name(), "__complete") {
			return true
		}
	}

	return false
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	current.close()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with CIRCULATION_* variables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log executed SQL")
	rootCmd.PersistentFlags().StringVar(&correlationID, "correlation-id", "", "Correlation id stored with journal entries")
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return nil, err
	}

	logger, err := cfg.NewLogger(os.Stderr, verbose)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)

	s := &session{logger: logger}
	options := []postgresengine.Option{postgresengine.WithLogger(logger)}

	if cfg.Observability.Enabled {
		if s.providers, err = cfg.NewObservabilityProviders(ctx, version); err != nil {
			return nil, err
		}

		s.metrics = oteladapters.NewMetricsCollector(s.providers.MeterProvider.Meter(instrumentation))
		options = append(options,
			postgresengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger(instrumentation)),
			postgresengine.WithMetrics(s.metrics),
			postgresengine.WithTracing(oteladapters.NewTracingCollector(s.providers.TracerProvider.Tracer(instrumentation))),
		)
	}

	if s.library, s.closeDB, err = cfg.OpenLibrary(ctx, options...); err != nil {
		s.close()
		return nil, err
	}

	return s, nil
}

func (s *session) close() {
	if s == nil {
		return
	}

	if s.closeDB != nil {
		s.closeDB()
	}

	if s.providers != nil {
		if err := s.providers.Shutdown(); err != nil {
			s.logger.Warn("failed to shut down telemetry", "error", err.Error())
		}
	}
}

// commandContext adds the correlation id flag to the command's context.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if correlationID != "" {
		ctx = circulation.WithCorrelationID(ctx, correlationID)
	}

	return ctx
}

// mutate runs a mutating library call, retrying concurrency conflicts up to --retries times.
func mutate(cmd *cobra.Command, operation string, fn shell.RetryableFunc) error {
	options := []shell.RetryOption{shell.WithMaxAttempts(retries + 1)}
	if current.metrics != nil {
		options = append(options, shell.WithMetrics(current.metrics, operation))
	}

	stats, err := shell.RetryWithExponentialBackoff(commandContext(cmd), fn, options...)
	if stats.Attempts > 1 {
		current.logger.Info("operation retried", "operation", operation, "attempts", stats.Attempts)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s timed out: %w", operation, err)
	}

	return err
}

// addRetriesFlag adds --retries to a mutating command.
func addRetriesFlag(cmd *cobra.Command) {
	cmd.Flags().IntVar(&retries, "retries", 0, "Retries after a concurrency conflict")
}

var eventual bool

// readContext routes a query to the replica when --eventual is set.
func readContext(cmd *cobra.Command) context.Context {
	if eventual {
		return circulation.WithEventualConsistency(cmd.Context())
	}

	return circulation.WithStrongConsistency(cmd.Context())
}

func addEventualFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&eventual, "eventual", false, "Read from the replica, if one is configured")
}
