package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobwatch/internal/listing"
	"github.com/amishk599/jobwatch/internal/model"
	"github.com/amishk599/jobwatch/internal/preview"
	"github.com/amishk599/jobwatch/internal/store"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Browse what a subscription would receive (TUI)",
	Long:  "Shows the subscription picker, then a split view of new listings and the ones that would be emailed. Nothing is sent or written.",
	RunE:  runPreviewCmd,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreviewCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Log output before the alt-screen starts corrupts the display.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	subs, err := loadSubscriptions(ctx, cfg.Database, silentLogger)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		fmt.Println("No subscriptions in the store.")
		return nil
	}

	source := listing.NewHTTPSource(cfg.Listings.URL, cfg.Listings.Token, newHTTPClient(cfg), silentLogger)

	for {
		choice, err := preview.RunSubscriptionPicker(subs)
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		if choice < 0 {
			return nil
		}
		sub := subs[choice]

		if sub.CriteriaErr != nil {
			fmt.Printf("Subscription %s has invalid criteria: %v\n", sub.Email, sub.CriteriaErr)
			continue
		}

		listings, err := preview.RunLoader(source.FetchListings)
		if err != nil {
			fmt.Printf("Error fetching listings: %v\n", err)
			continue
		}

		wantQuit, err := preview.RunPreviewTUI(sub, listings)
		if err != nil {
			return fmt.Errorf("preview: %w", err)
		}
		if wantQuit {
			return nil
		}
	}
}

// loadSubscriptions reads every subscription in a transaction that is always
// rolled back.
func loadSubscriptions(ctx context.Context, dsn string, logger *slog.Logger) ([]model.Subscription, error) {
	s, err := store.Open(ctx, dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	tx, err := s.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(context.WithoutCancel(ctx))

	subs, err := tx.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}
