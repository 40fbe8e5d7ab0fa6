package config

import "time"

// Default values applied to zero-valued fields after loading.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultListTimeout    = 5 * time.Minute
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = 2 * time.Second
	DefaultPoolSize       = 20

	DefaultRecordsPerPage = 500
	DefaultMaxPages       = 10000
	DefaultMaxWorkers     = 15
	DefaultBatchSize      = 75

	DefaultPlanDays = 365
	DefaultPlanFile = "archive_plan.json"

	DefaultAuditPath     = "archive_audit.db"
	DefaultRetentionDays = 365

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	DefaultMetricsListenAddress = "127.0.0.1:9090"
)

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults. Explicitly
// configured values are left alone.
func ApplyDefaults(cfg *Config) {
	if cfg.Workbench.ConnectTimeout == 0 {
		cfg.Workbench.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.Workbench.RequestTimeout == 0 {
		cfg.Workbench.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Workbench.ListTimeout == 0 {
		cfg.Workbench.ListTimeout = DefaultListTimeout
	}
	if cfg.Workbench.MaxRetries == 0 {
		cfg.Workbench.MaxRetries = DefaultMaxRetries
	}
	if cfg.Workbench.RetryDelay == 0 {
		cfg.Workbench.RetryDelay = DefaultRetryDelay
	}
	if cfg.Workbench.PoolSize == 0 {
		cfg.Workbench.PoolSize = DefaultPoolSize
	}

	if cfg.Scanner.RecordsPerPage == 0 {
		cfg.Scanner.RecordsPerPage = DefaultRecordsPerPage
	}
	if cfg.Scanner.MaxPages == 0 {
		cfg.Scanner.MaxPages = DefaultMaxPages
	}
	if cfg.Scanner.MaxWorkers == 0 {
		cfg.Scanner.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.Scanner.BatchSize == 0 {
		cfg.Scanner.BatchSize = DefaultBatchSize
	}

	if cfg.Plan.DefaultDays == 0 {
		cfg.Plan.DefaultDays = DefaultPlanDays
	}
	if cfg.Plan.DefaultFile == "" {
		cfg.Plan.DefaultFile = DefaultPlanFile
	}

	if cfg.Audit.SQLitePath == "" {
		cfg.Audit.SQLitePath = DefaultAuditPath
	}
	if cfg.Audit.Retention.Days == 0 {
		cfg.Audit.Retention.Days = DefaultRetentionDays
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
}
