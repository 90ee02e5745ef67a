package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for jobwatch.
type Config struct {
	Database string // SQLite file path or postgres:// URL
	Listings ListingsConfig
	Email    EmailConfig
	Server   ServerConfig
	Schedule string // cron spec for the in-process trigger; empty disables it
}

// ListingsConfig points at the internal listings endpoint.
type ListingsConfig struct {
	URL     string
	Token   string // optional bearer token
	Timeout time.Duration
}

// EmailConfig selects the mail provider and its settings.
type EmailConfig struct {
	Provider string        // "resend", "ses", "smtp" or "log"
	From     string        // sender address on every digest
	MinDelay time.Duration // minimum gap between two sends
	Resend   ResendConfig
	SES      SESConfig
	SMTP     SMTPConfig
}

// ResendConfig holds Resend API settings.
type ResendConfig struct {
	APIKey  string `yaml:"api_key" env:"RESEND_API_KEY"`
	BaseURL string `yaml:"base_url"`
}

// SESConfig holds Amazon SES settings. Credentials come from the default
// AWS chain.
type SESConfig struct {
	Region string `yaml:"region" env:"AWS_REGION"`
}

// SMTPConfig holds SMTP relay settings.
type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     string `yaml:"port" env:"SMTP_PORT"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
}

// ServerConfig controls the HTTP trigger.
type ServerConfig struct {
	Addr string `yaml:"addr" env:"JOBWATCH_ADDR"`
}

const (
	ProviderResend = "resend"
	ProviderSES    = "ses"
	ProviderSMTP   = "smtp"
	ProviderLog    = "log"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as
// string). env tags let the environment override secrets after parsing.
type rawConfig struct {
	Database string            `yaml:"database" env:"DATABASE_URL"`
	Listings rawListingsConfig `yaml:"listings"`
	Email    rawEmailConfig    `yaml:"email"`
	Server   ServerConfig      `yaml:"server"`
	Schedule string            `yaml:"schedule" env:"JOBWATCH_SCHEDULE"`
}

type rawListingsConfig struct {
	URL     string `yaml:"url" env:"LISTINGS_URL"`
	Token   string `yaml:"token" env:"LISTINGS_TOKEN"`
	Timeout string `yaml:"timeout"`
}

type rawEmailConfig struct {
	Provider string       `yaml:"provider" env:"EMAIL_PROVIDER"`
	From     string       `yaml:"from" env:"EMAIL_FROM"`
	MinDelay string       `yaml:"min_delay"`
	Resend   ResendConfig `yaml:"resend"`
	SES      SESConfig    `yaml:"ses"`
	SMTP     SMTPConfig   `yaml:"smtp"`
}

// Load reads and parses the YAML config file at path, applies environment
// overrides, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Set variables win over the file; unset ones leave it alone.
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	timeout := 30 * time.Second // default
	if raw.Listings.Timeout != "" {
		timeout, err = time.ParseDuration(raw.Listings.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse listings.timeout %q: %w", raw.Listings.Timeout, err)
		}
	}

	minDelay := 500 * time.Millisecond // default: 2 sends per second
	if raw.Email.MinDelay != "" {
		minDelay, err = time.ParseDuration(raw.Email.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse email.min_delay %q: %w", raw.Email.MinDelay, err)
		}
	}

	provider := raw.Email.Provider
	if provider == "" {
		provider = ProviderLog
	}

	smtpCfg := raw.Email.SMTP
	if smtpCfg.Port == "" {
		smtpCfg.Port = "587"
	}

	addr := raw.Server.Addr
	if addr == "" {
		addr = ":8080"
	}

	cfg := &Config{
		Database: raw.Database,
		Listings: ListingsConfig{
			URL:     raw.Listings.URL,
			Token:   raw.Listings.Token,
			Timeout: timeout,
		},
		Email: EmailConfig{
			Provider: provider,
			From:     raw.Email.From,
			MinDelay: minDelay,
			Resend:   raw.Email.Resend,
			SES:      raw.Email.SES,
			SMTP:     smtpCfg,
		},
		Server:   ServerConfig{Addr: addr},
		Schedule: raw.Schedule,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Database == "" {
		return fmt.Errorf("database is required")
	}

	if cfg.Listings.URL == "" {
		return fmt.Errorf("listings.url is required")
	}
	u, err := url.Parse(cfg.Listings.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("listings.url must be an absolute http(s) URL, got %q", cfg.Listings.URL)
	}
	if cfg.Listings.Timeout <= 0 {
		return fmt.Errorf("listings.timeout must be positive, got %v", cfg.Listings.Timeout)
	}

	if cfg.Email.From == "" {
		return fmt.Errorf("email.from is required")
	}
	if cfg.Email.MinDelay < 0 {
		return fmt.Errorf("email.min_delay must not be negative, got %v", cfg.Email.MinDelay)
	}

	switch cfg.Email.Provider {
	case ProviderResend:
		if cfg.Email.Resend.APIKey == "" {
			return fmt.Errorf("email.resend.api_key is required when provider is %q", ProviderResend)
		}
	case ProviderSES:
		if cfg.Email.SES.Region == "" {
			return fmt.Errorf("email.ses.region is required when provider is %q", ProviderSES)
		}
	case ProviderSMTP:
		if cfg.Email.SMTP.Host == "" {
			return fmt.Errorf("email.smtp.host is required when provider is %q", ProviderSMTP)
		}
	case ProviderLog:
	default:
		return fmt.Errorf("email.provider must be one of resend, ses, smtp, log; got %q", cfg.Email.Provider)
	}

	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			return fmt.Errorf("parse schedule %q: %w", cfg.Schedule, err)
		}
	}

	return nil
}
