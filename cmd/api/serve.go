package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"attachbridge/internal/config"
	"attachbridge/internal/dispatch"
	"attachbridge/internal/http/middleware"
	"attachbridge/internal/logging"
	"attachbridge/internal/naming"
	"attachbridge/internal/otel"
	"attachbridge/internal/server"
	"attachbridge/internal/service"
	"attachbridge/internal/storage"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var mirrorPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the attach bridge",
		Long: `Run the attach bridge on HOST:PORT (127.0.0.1:8765 by default).

The bridge refuses to start when something already answers on that address.
SIGINT or SIGTERM stop it gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			var sink logging.Sink
			if mirrorPath != "" {
				f, err := os.OpenFile(mirrorPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("open log mirror: %w", err)
				}
				defer f.Close()
				sink = fileSink(f)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, logging.New(cfg.Log, cmd.ErrOrStderr(), sink))
		},
	}

	cmd.Flags().StringVar(&mirrorPath, "log-mirror", "", "also append every log line to this file")
	return cmd
}

// fileSink serializes lines into w, one per record.
func fileSink(w io.Writer) logging.Sink {
	var mu sync.Mutex
	return func(line string) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = io.WriteString(w, strings.TrimRight(line, "\n")+"\n")
	}
}

func runServe(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	addr := cfg.Server.Addr()
	if server.Probe(ctx, addr) {
		logger.Warn("server already running", logging.Addr(addr))
		return nil
	}

	shutdownTracing, err := otel.Init(ctx, cfg.Tracing, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", logging.Err(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}
	attachMetrics, err := service.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register attach metrics: %w", err)
	}

	svcOpts := []service.Option{service.WithMetrics(attachMetrics), service.WithLogger(logger)}
	if cfg.MinIO.Enabled() {
		store, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			logger.Warn("archive disabled", logging.Err(err))
		} else {
			svcOpts = append(svcOpts, service.WithArchive(store, cfg.MinIO.Timeout))
		}
	}

	disp := dispatch.New(cfg.Automation.Platform, nil, cfg.Automation.Timeout)
	svc := service.NewAttachService(naming.New(cfg.OutputDir, nil), disp, svcOpts...)

	app := server.NewApp(svc, logger, server.AppOptions{
		Metrics: httpMetrics,
		Tracing: cfg.Tracing.Enabled,
	})
	bridge := server.New(addr, app, logger)

	logger.Info("attach bridge configured",
		slog.String(logging.KeyPlatform, disp.Platform()),
		slog.String("output_dir", cfg.OutputDir),
		slog.Duration("automation_timeout", cfg.Automation.Timeout),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bridge.Run(gctx) })
	if cfg.Metrics.Addr != "" {
		metrics := server.NewMetricsServer(cfg.Metrics.Addr, reg, logger)
		g.Go(func() error { return metrics.Run(gctx) })
	}
	return g.Wait()
}
