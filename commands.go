package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/nholding/rate-calendar/internal/config"
	"github.com/nholding/rate-calendar/internal/metrics"
	period "github.com/nholding/rate-calendar/internal/period/domain"
	rate "github.com/nholding/rate-calendar/internal/rate/domain"
	raterepo "github.com/nholding/rate-calendar/internal/rate/repository"
	"github.com/nholding/rate-calendar/internal/rate/service"
	"github.com/nholding/rate-calendar/internal/repository"
	"github.com/nholding/rate-calendar/internal/server"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// errBatchRejected makes the process command exit with status 2.
var errBatchRejected = errors.New("batch rejected")

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "ratecal",
		Short: "Builds a non-overlapping rate calendar from dated rate records",
		Long: `ratecal validates a batch of {periodStart, periodEnd, rate} records,
merges overlapping periods that share a rate, and reports conflicts
between overlapping periods with different rates.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (defaults apply when empty)")

	rootCmd.AddCommand(
		newServeCmd(&configPath),
		newProcessCmd(&configPath),
		newVersionCmd(),
	)
	return rootCmd
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAndValidate(*configPath)
			if err != nil {
				return err
			}

			logger := newLogger(cfg.Log, cmd.OutOrStdout())
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metricsCollectors := metrics.NewCollectors(reg)

			svc, closeSinks, err := newCalendarService(ctx, cfg, logger, metricsCollectors)
			if err != nil {
				return err
			}
			defer closeSinks()

			srv := server.New(cfg, svc, logger, server.WithMetrics(metricsCollectors, reg))
			return srv.Run(ctx)
		},
	}
}

func newProcessCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "process [file|-]",
		Short: "Process one batch from a file or stdin and print the response",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAndValidate(*configPath)
			if err != nil {
				return err
			}

			logger := newLogger(cfg.Log, cmd.ErrOrStderr())

			source := "-"
			if len(args) == 1 {
				source = args[0]
			}
			body, err := readBatch(source, cmd.InOrStdin())
			if err != nil {
				return err
			}

			svc, closeSinks, err := newCalendarService(cmd.Context(), cfg, logger, nil)
			if err != nil {
				return err
			}
			defer closeSinks()

			sub, err := svc.Submit(cmd.Context(), body, "cli")
			if err != nil {
				return err
			}

			if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(sub.Body)); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
			if !sub.Result.Succeeded() {
				return errBatchRejected
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ratecal %s\n", version)
		},
	}
}

func readBatch(source string, stdin io.Reader) ([]byte, error) {
	if source == "-" {
		body, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return body, nil
	}

	body, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return body, nil
}

// newLogger builds the slog logger described by cfg.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newCalendarService wires the pipeline and every enabled audit sink. The
// returned func releases the sinks.
func newCalendarService(ctx context.Context, cfg *config.Config, logger *slog.Logger, mc *metrics.Collectors) (*service.CalendarService, func(), error) {
	loc, err := period.LoadZone(cfg.Calendar.TimeZone)
	if err != nil {
		return nil, nil, err
	}

	clients, err := repository.NewAWSClients(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithMetrics(mc),
	}

	if clients.S3 != nil {
		opts = append(opts, service.WithArchiver(
			raterepo.NewS3Archive(clients.S3.Client, clients.S3.BucketName, clients.S3.Prefix, cfg.Archive.Timeout),
		))
		logger.Info("archive enabled", slog.String("bucket", clients.S3.BucketName))
	}

	if clients.RDS != nil {
		ledger := raterepo.NewSQLLedger(clients.RDS.Client, cfg.Ledger.Timeout)
		if err := ledger.EnsureSchema(ctx); err != nil {
			clients.Close()
			return nil, nil, err
		}
		opts = append(opts, service.WithLedger(ledger))
		logger.Info("ledger enabled", slog.String("endpoint", cfg.Ledger.Endpoint))
	}

	closeSinks := func() {
		if err := clients.Close(); err != nil {
			logger.Warn("closing sinks", slog.String("error", err.Error()))
		}
	}

	return service.NewCalendarService(rate.NewPipeline(loc), opts...), closeSinks, nil
}
