package config

import "time"

// Config is the root configuration for the archiver.
type Config struct {
	// Workbench configures the connection to the Workbench server.
	Workbench WorkbenchConfig `yaml:"workbench"`

	// Scanner configures listing, sampling, and processing.
	Scanner ScannerConfig `yaml:"scanner"`

	// Plan configures plan generation.
	Plan PlanConfig `yaml:"plan"`

	// Audit configures the archive audit trail.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// WorkbenchConfig contains connection settings for the Workbench API.
type WorkbenchConfig struct {
	// BaseURL is the server URL, with or without the /api.php suffix.
	BaseURL string `yaml:"base_url"`

	// Username authenticates API requests.
	Username string `yaml:"username"`

	// Token is the API key paired with Username.
	Token string `yaml:"token"`

	// ConnectTimeout bounds TCP connection establishment.
	// Default: 10s
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// RequestTimeout bounds standard API requests.
	// Default: 30s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// ListTimeout bounds scan listing requests, which can return
	// hundreds of records per page.
	// Default: 5m
	ListTimeout time.Duration `yaml:"list_timeout"`

	// MaxRetries is the number of retries after a timeout or
	// connection failure.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// RetryDelay is the base delay between retries; attempt n waits
	// n times this value.
	// Default: 2s
	RetryDelay time.Duration `yaml:"retry_delay"`

	// PoolSize caps idle connections kept to the server.
	// Default: 20
	PoolSize int `yaml:"pool_size"`
}

// ScannerConfig contains settings for listing and identifying stale scans.
type ScannerConfig struct {
	// RecordsPerPage is the page size used when listing scans.
	// Default: 500
	RecordsPerPage int `yaml:"records_per_page"`

	// MaxPages bounds the listing loop against a server that never
	// returns a short page.
	// Default: 10000
	MaxPages int `yaml:"max_pages"`

	// MaxWorkers caps concurrent detail fetches.
	// Default: 15
	MaxWorkers int `yaml:"max_workers"`

	// BatchSize is the number of scans processed per batch.
	// Default: 75
	BatchSize int `yaml:"batch_size"`

	// Exhaustive disables sampling and processes every listed scan.
	Exhaustive bool `yaml:"exhaustive"`

	// Sampling tunes the sampling pass.
	Sampling SamplingConfig `yaml:"sampling"`
}

// SamplingConfig tunes the sampling pass.
type SamplingConfig struct {
	// ExhaustiveFallback processes the full population, instead of
	// only the first half, when stale samples exist but no contiguous
	// stale region was found.
	ExhaustiveFallback bool `yaml:"exhaustive_fallback"`
}

// PlanConfig contains settings for plan generation.
type PlanConfig struct {
	// DefaultDays is the staleness threshold when --days is not given.
	// Default: 365
	DefaultDays int `yaml:"default_days"`

	// DefaultFile is the plan path when --output/--input is not given.
	// Default: archive_plan.json
	DefaultFile string `yaml:"default_file"`
}

// AuditConfig contains settings for the archive audit trail.
type AuditConfig struct {
	// Enabled turns on audit recording during plan execution.
	Enabled bool `yaml:"enabled"`

	// SQLitePath is the audit database file path.
	// Default: archive_audit.db
	SQLitePath string `yaml:"sqlite_path"`

	// Retention bounds the audit database.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig bounds the audit database by age and size.
type RetentionConfig struct {
	// Days is the number of days to retain audit records.
	// 0 keeps records forever. Default: 365
	Days int `yaml:"days"`

	// Schedule is a cron expression for automatic pruning when the
	// prune command runs with --schedule. Empty disables scheduling.
	Schedule string `yaml:"schedule"`

	// MaxRecords caps the total record count. 0 means unlimited.
	MaxRecords int64 `yaml:"max_records"`
}

// TelemetryConfig contains logging and metrics settings.
type TelemetryConfig struct {
	// Logging configures structured log output.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the optional Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is json or text.
	// Default: text
	Format string `yaml:"format"`
}

// MetricsConfig configures the optional Prometheus endpoint.
type MetricsConfig struct {
	// Enabled starts an HTTP listener serving /metrics for the
	// duration of a run.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the metrics listener address.
	// Default: 127.0.0.1:9090
	ListenAddress string `yaml:"listen_address"`
}
