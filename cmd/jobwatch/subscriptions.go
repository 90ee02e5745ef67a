package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobwatch/internal/model"
)

var subscriptionsCmd = &cobra.Command{
	Use:   "subscriptions",
	Short: "List all saved subscriptions",
	Long:  "Reads the subscription store and prints a table of subscriptions with their criteria and watermark.",
	RunE:  runSubscriptions,
}

func init() {
	rootCmd.AddCommand(subscriptionsCmd)
}

func runSubscriptions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	subs, err := loadSubscriptions(ctx, cfg.Database, silentLogger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-30s %-18s %s\n", "Email", "Last notified", "Criteria")
	fmt.Fprintln(out, strings.Repeat("─", 80))

	invalid := 0
	for _, s := range subs {
		criteria := formatCriteria(s.Criteria)
		if s.CriteriaErr != nil {
			criteria = "invalid: " + s.CriteriaErr.Error()
			invalid++
		}
		last := "never"
		if !s.LastNotified.IsZero() {
			last = s.LastNotified.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(out, "%-30s %-18s %s\n", s.Email, last, criteria)
	}

	fmt.Fprintf(out, "\nTotal: %d subscriptions (%d with invalid criteria)\n", len(subs), invalid)
	return nil
}

func formatCriteria(criteria []model.Criterion) string {
	if len(criteria) == 0 {
		return "(none)"
	}
	parts := make([]string, len(criteria))
	for i, c := range criteria {
		parts[i] = fmt.Sprintf("%s=%s", c.Type, c.Value)
	}
	return strings.Join(parts, ", ")
}
