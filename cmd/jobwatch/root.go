package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amishk599/jobwatch/internal/config"
	"github.com/amishk599/jobwatch/internal/job"
	"github.com/amishk599/jobwatch/internal/listing"
	"github.com/amishk599/jobwatch/internal/model"
	"github.com/amishk599/jobwatch/internal/notifier"
	"github.com/amishk599/jobwatch/internal/ratelimit"
	"github.com/amishk599/jobwatch/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobwatch",
	Short: "Job alerts by email",
	Long:  "jobwatch matches job listings against saved subscriptions and emails a digest of new matches.",
	// `jobwatch` with no args runs the server.
	RunE:         runServe,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBWATCH_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBWATCH_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	if path == "" {
		if env := os.Getenv("JOBWATCH_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Listings.Timeout}
}

// setupMailer builds the configured provider, paced by email.min_delay.
func setupMailer(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (model.Mailer, error) {
	var m model.Mailer
	switch cfg.Email.Provider {
	case config.ProviderResend:
		m = notifier.NewResendMailer(cfg.Email.Resend.BaseURL, cfg.Email.Resend.APIKey, httpClient, logger)
	case config.ProviderSES:
		ses, err := notifier.NewSESMailer(ctx, cfg.Email.SES.Region, logger)
		if err != nil {
			return nil, err
		}
		m = ses
	case config.ProviderSMTP:
		s := cfg.Email.SMTP
		m = notifier.NewSMTPMailer(s.Host, s.Port, s.Username, s.Password, logger)
	default:
		m = notifier.NewLogMailer(logger)
	}
	logger.Info("using mailer", "provider", cfg.Email.Provider, "min_delay", cfg.Email.MinDelay.String())
	return ratelimit.NewRateLimitedMailer(m, cfg.Email.MinDelay), nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (model.SubscriptionStore, error) {
	s, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}

// buildRunner wires the runner. The caller owns the returned store.
func buildRunner(ctx context.Context, cfg *config.Config, dryRun bool, logger *slog.Logger) (*job.Runner, model.SubscriptionStore, error) {
	subs, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	httpClient := newHTTPClient(cfg)
	source := listing.NewHTTPSource(cfg.Listings.URL, cfg.Listings.Token, httpClient, logger)

	var mailer model.Mailer
	if dryRun {
		mailer = notifier.NewLogMailer(logger)
	} else {
		mailer, err = setupMailer(ctx, cfg, httpClient, logger)
		if err != nil {
			subs.Close()
			return nil, nil, err
		}
	}

	return job.NewRunner(subs, source, mailer, cfg.Email.From, dryRun, logger), subs, nil
}
