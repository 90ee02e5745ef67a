package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobwatch/internal/metrics"
	"github.com/amishk599/jobwatch/internal/scheduler"
	"github.com/amishk599/jobwatch/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP trigger",
	Long:  "Serves /api/notify, /healthz and /metrics, and runs the cron schedule when one is configured. Blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	logger.Info("config loaded",
		"provider", cfg.Email.Provider,
		"addr", cfg.Server.Addr,
		"schedule", cfg.Schedule,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, subs, err := buildRunner(ctx, cfg, false, logger)
	if err != nil {
		logger.Error("failed to build runner", "error", err)
		return err
	}
	defer subs.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(reg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.New(runner, reg, logger).ListenAndServe(gctx, cfg.Server.Addr)
	})
	if cfg.Schedule != "" {
		sched := scheduler.NewScheduler(cfg.Schedule, func(ctx context.Context) error {
			_, err := runner.Run(ctx)
			return err
		}, logger)
		g.Go(func() error {
			return sched.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}
