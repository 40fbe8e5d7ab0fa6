package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies defaults and
// environment variable overrides, and validates the result. A missing
// file is not an error: the configuration then comes entirely from
// defaults and the environment, which is the common case for one-off
// runs against a single server.
//
// The loading sequence is:
//  1. Load YAML from file (if it exists)
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate the final configuration
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults plus environment only.
	default:
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides. Credentials
// use the short WORKBENCH_* names so they can be shared with other
// Workbench tooling; everything else uses ARCHIVER_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("WORKBENCH_URL"); val != "" {
		cfg.Workbench.BaseURL = val
	}
	if val := os.Getenv("WORKBENCH_USER"); val != "" {
		cfg.Workbench.Username = val
	}
	if val := os.Getenv("WORKBENCH_TOKEN"); val != "" {
		cfg.Workbench.Token = val
	}

	if val := os.Getenv("ARCHIVER_WORKBENCH_CONNECT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Workbench.ConnectTimeout = d
		}
	}
	if val := os.Getenv("ARCHIVER_WORKBENCH_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Workbench.RequestTimeout = d
		}
	}
	if val := os.Getenv("ARCHIVER_WORKBENCH_LIST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Workbench.ListTimeout = d
		}
	}
	if val := os.Getenv("ARCHIVER_WORKBENCH_MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Workbench.MaxRetries = i
		}
	}
	if val := os.Getenv("ARCHIVER_WORKBENCH_RETRY_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Workbench.RetryDelay = d
		}
	}

	if val := os.Getenv("ARCHIVER_SCANNER_RECORDS_PER_PAGE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Scanner.RecordsPerPage = i
		}
	}
	if val := os.Getenv("ARCHIVER_SCANNER_MAX_WORKERS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Scanner.MaxWorkers = i
		}
	}
	if val := os.Getenv("ARCHIVER_SCANNER_BATCH_SIZE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Scanner.BatchSize = i
		}
	}
	if val := os.Getenv("ARCHIVER_SCANNER_EXHAUSTIVE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Scanner.Exhaustive = b
		}
	}

	if val := os.Getenv("ARCHIVER_PLAN_DEFAULT_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Plan.DefaultDays = i
		}
	}
	if val := os.Getenv("ARCHIVER_PLAN_DEFAULT_FILE"); val != "" {
		cfg.Plan.DefaultFile = val
	}

	if val := os.Getenv("ARCHIVER_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("ARCHIVER_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLitePath = val
	}
	if val := os.Getenv("ARCHIVER_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Retention.Days = i
		}
	}

	if val := os.Getenv("ARCHIVER_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("ARCHIVER_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("ARCHIVER_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("ARCHIVER_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
}
