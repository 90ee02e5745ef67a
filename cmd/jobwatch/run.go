package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runDryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one notification pass and exit",
	Long:  "Runs the job once and prints the JSON report. --dry-run logs the emails instead of sending them and leaves every watermark untouched.",
	RunE:  runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "log emails instead of sending, do not advance watermarks")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if runDryRun {
		logger.Info("dry-run mode enabled, no email is sent and no watermark is advanced")
	}

	runner, subs, err := buildRunner(ctx, cfg, runDryRun, logger)
	if err != nil {
		logger.Error("failed to build runner", "error", err)
		return err
	}
	defer subs.Close()

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
