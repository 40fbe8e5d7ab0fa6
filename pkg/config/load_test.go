package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
workbench:
  base_url: https://wb.example.com
  username: tester
  token: secret
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Workbench.ConnectTimeout != 10*time.Second {
		t.Errorf("ConnectTimeout = %v, want 10s", cfg.Workbench.ConnectTimeout)
	}
	if cfg.Workbench.ListTimeout != 5*time.Minute {
		t.Errorf("ListTimeout = %v, want 5m", cfg.Workbench.ListTimeout)
	}
	if cfg.Scanner.RecordsPerPage != 500 {
		t.Errorf("RecordsPerPage = %d, want 500", cfg.Scanner.RecordsPerPage)
	}
	if cfg.Scanner.MaxWorkers != 15 || cfg.Scanner.BatchSize != 75 {
		t.Errorf("workers/batch = %d/%d, want 15/75", cfg.Scanner.MaxWorkers, cfg.Scanner.BatchSize)
	}
	if cfg.Plan.DefaultDays != 365 || cfg.Plan.DefaultFile != "archive_plan.json" {
		t.Errorf("plan defaults = %d/%q", cfg.Plan.DefaultDays, cfg.Plan.DefaultFile)
	}
	if cfg.Scanner.Exhaustive {
		t.Error("Exhaustive = true, want sampling enabled by default")
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("logging defaults = %s/%s", cfg.Telemetry.Logging.Level, cfg.Telemetry.Logging.Format)
	}
}

func TestLoadExplicitValuesWin(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
scanner:
  records_per_page: 100
  batch_size: 10
  exhaustive: true
plan:
  default_days: 90
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Scanner.RecordsPerPage != 100 || cfg.Scanner.BatchSize != 10 {
		t.Errorf("scanner = %d/%d, want 100/10", cfg.Scanner.RecordsPerPage, cfg.Scanner.BatchSize)
	}
	if !cfg.Scanner.Exhaustive {
		t.Error("Exhaustive = false, want true from file")
	}
	if cfg.Plan.DefaultDays != 90 {
		t.Errorf("DefaultDays = %d, want 90", cfg.Plan.DefaultDays)
	}
	// Untouched sections still get defaults.
	if cfg.Scanner.MaxWorkers != 15 {
		t.Errorf("MaxWorkers = %d, want default 15", cfg.Scanner.MaxWorkers)
	}
}

func TestLoadMissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("WORKBENCH_URL", "https://env.example.com")
	t.Setenv("WORKBENCH_USER", "env-user")
	t.Setenv("WORKBENCH_TOKEN", "env-token")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Workbench.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %q", cfg.Workbench.BaseURL)
	}
	if cfg.Workbench.Username != "env-user" || cfg.Workbench.Token != "env-token" {
		t.Errorf("credentials = %q/%q", cfg.Workbench.Username, cfg.Workbench.Token)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("WORKBENCH_TOKEN", "env-wins")
	t.Setenv("ARCHIVER_SCANNER_BATCH_SIZE", "25")

	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Workbench.Token != "env-wins" {
		t.Errorf("Token = %q, want env override", cfg.Workbench.Token)
	}
	if cfg.Scanner.BatchSize != 25 {
		t.Errorf("BatchSize = %d, want 25 from environment", cfg.Scanner.BatchSize)
	}
}

func TestLoadRejectsIncompleteCredentials(t *testing.T) {
	_, err := Load(writeConfig(t, `
workbench:
  base_url: https://wb.example.com
`))

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(validationErr.Errors) != 2 {
		t.Errorf("errors = %d, want 2 (username and token)", len(validationErr.Errors))
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "workbench: [not a mapping")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workbench.BaseURL = "not a url"
	cfg.Scanner.BatchSize = -1
	cfg.Telemetry.Logging.Level = "loud"
	cfg.Audit.Retention.Schedule = "not cron"

	err := Validate(cfg)
	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	// base_url, username, token, batch_size, log level, cron schedule.
	if len(validationErr.Errors) < 5 {
		t.Errorf("errors = %d, want every failure collected:\n%v", len(validationErr.Errors), err)
	}
}
