package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
database: jobwatch.db
listings:
  url: https://internal.example.com/api/listings
  timeout: 10s
email:
  provider: resend
  from: alerts@example.com
  min_delay: 1s
  resend:
    api_key: re_test
schedule: "@every 1h"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database != "jobwatch.db" {
		t.Errorf("Database = %q", cfg.Database)
	}
	if cfg.Listings.URL != "https://internal.example.com/api/listings" || cfg.Listings.Timeout != 10*time.Second {
		t.Errorf("Listings = %+v", cfg.Listings)
	}
	if cfg.Email.Provider != ProviderResend || cfg.Email.Resend.APIKey != "re_test" {
		t.Errorf("Email = %+v", cfg.Email)
	}
	if cfg.Email.MinDelay != time.Second {
		t.Errorf("MinDelay = %v, want 1s", cfg.Email.MinDelay)
	}
	if cfg.Schedule != "@every 1h" {
		t.Errorf("Schedule = %q", cfg.Schedule)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
database: jobwatch.db
listings:
  url: http://localhost:3000/listings
email:
  from: alerts@example.com
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Email.Provider != ProviderLog {
		t.Errorf("Provider = %q, want log", cfg.Email.Provider)
	}
	if cfg.Listings.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Listings.Timeout)
	}
	if cfg.Email.MinDelay != 500*time.Millisecond {
		t.Errorf("MinDelay = %v, want 500ms", cfg.Email.MinDelay)
	}
	if cfg.Email.SMTP.Port != "587" {
		t.Errorf("SMTP.Port = %q, want 587", cfg.Email.SMTP.Port)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Schedule != "" {
		t.Errorf("Schedule = %q, want empty", cfg.Schedule)
	}
}

func TestLoad_ExpandsEnvInFile(t *testing.T) {
	t.Setenv("TEST_LISTINGS_HOST", "listings.internal")
	path := writeConfig(t, `
database: jobwatch.db
listings:
  url: https://${TEST_LISTINGS_HOST}/api
email:
  from: alerts@example.com
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listings.URL != "https://listings.internal/api" {
		t.Errorf("Listings.URL = %q", cfg.Listings.URL)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://jobwatch@db/jobwatch")
	t.Setenv("RESEND_API_KEY", "re_from_env")
	path := writeConfig(t, `
database: jobwatch.db
listings:
  url: https://internal.example.com/api/listings
email:
  provider: resend
  from: alerts@example.com
  resend:
    api_key: re_from_file
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database != "postgres://jobwatch@db/jobwatch" {
		t.Errorf("Database = %q, want env override", cfg.Database)
	}
	if cfg.Email.Resend.APIKey != "re_from_env" {
		t.Errorf("APIKey = %q, want env override", cfg.Email.Resend.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "database: [broken")
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing database",
			content: `
listings: {url: "https://x.example.com"}
email: {from: a@example.com}
`,
			wantErr: "database is required",
		},
		{
			name: "missing listings url",
			content: `
database: db
email: {from: a@example.com}
`,
			wantErr: "listings.url is required",
		},
		{
			name: "relative listings url",
			content: `
database: db
listings: {url: "/api/listings"}
email: {from: a@example.com}
`,
			wantErr: "absolute http(s) URL",
		},
		{
			name: "missing from",
			content: `
database: db
listings: {url: "https://x.example.com"}
`,
			wantErr: "email.from is required",
		},
		{
			name: "unknown provider",
			content: `
database: db
listings: {url: "https://x.example.com"}
email: {from: a@example.com, provider: pigeon}
`,
			wantErr: "email.provider must be one of",
		},
		{
			name: "resend without key",
			content: `
database: db
listings: {url: "https://x.example.com"}
email: {from: a@example.com, provider: resend}
`,
			wantErr: "email.resend.api_key is required",
		},
		{
			name: "smtp without host",
			content: `
database: db
listings: {url: "https://x.example.com"}
email: {from: a@example.com, provider: smtp}
`,
			wantErr: "email.smtp.host is required",
		},
		{
			name: "bad schedule",
			content: `
database: db
listings: {url: "https://x.example.com"}
email: {from: a@example.com}
schedule: "every now and then"
`,
			wantErr: "parse schedule",
		},
		{
			name: "bad timeout",
			content: `
database: db
listings: {url: "https://x.example.com", timeout: soon}
email: {from: a@example.com}
`,
			wantErr: "parse listings.timeout",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
