package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobwatch/internal/notifier"
)

var notifyTo string

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test email",
	Long:  "Sends a sample digest to --to using the configured mail provider.",
	RunE:  runNotifyTest,
}

func init() {
	notifyTestCmd.Flags().StringVar(&notifyTo, "to", "", "recipient address (required)")
	_ = notifyTestCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	m, err := setupMailer(ctx, cfg, newHTTPClient(cfg), logger)
	if err != nil {
		return fmt.Errorf("setup mailer: %w", err)
	}

	if err := notifier.SendTestMessage(ctx, m, cfg.Email.From, notifyTo); err != nil {
		logger.Error("test email failed", "error", err)
		return err
	}
	logger.Info("test email sent successfully", "to", notifyTo)
	return nil
}
