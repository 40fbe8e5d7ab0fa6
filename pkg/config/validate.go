package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific field.
type FieldError struct {
	// Field is the dotted path to the field (e.g., "workbench.base_url").
	Field string

	// Message is a human-readable error message.
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every validation failure in a configuration.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the configuration, collecting every failure rather than
// stopping at the first.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateWorkbench(&cfg.Workbench)...)
	errs = append(errs, validateScanner(&cfg.Scanner)...)
	errs = append(errs, validatePlan(&cfg.Plan)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateWorkbench(cfg *WorkbenchConfig) []FieldError {
	var errs []FieldError

	if cfg.BaseURL == "" {
		errs = append(errs, FieldError{
			Field:   "workbench.base_url",
			Message: "server URL is required (set workbench.base_url or WORKBENCH_URL)",
		})
	} else if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   "workbench.base_url",
			Message: fmt.Sprintf("invalid URL %q", cfg.BaseURL),
		})
	}
	if cfg.Username == "" {
		errs = append(errs, FieldError{
			Field:   "workbench.username",
			Message: "username is required (set workbench.username or WORKBENCH_USER)",
		})
	}
	if cfg.Token == "" {
		errs = append(errs, FieldError{
			Field:   "workbench.token",
			Message: "API token is required (set workbench.token or WORKBENCH_TOKEN)",
		})
	}
	if cfg.MaxRetries < 0 {
		errs = append(errs, FieldError{
			Field:   "workbench.max_retries",
			Message: "max retries must be non-negative",
		})
	}
	if cfg.RetryDelay < 0 {
		errs = append(errs, FieldError{
			Field:   "workbench.retry_delay",
			Message: "retry delay must be non-negative",
		})
	}
	for _, t := range []struct {
		field string
		value interface{ Seconds() float64 }
	}{
		{"workbench.connect_timeout", cfg.ConnectTimeout},
		{"workbench.request_timeout", cfg.RequestTimeout},
		{"workbench.list_timeout", cfg.ListTimeout},
	} {
		if t.value.Seconds() <= 0 {
			errs = append(errs, FieldError{
				Field:   t.field,
				Message: "timeout must be positive",
			})
		}
	}

	return errs
}

func validateScanner(cfg *ScannerConfig) []FieldError {
	var errs []FieldError

	if cfg.RecordsPerPage <= 0 {
		errs = append(errs, FieldError{
			Field:   "scanner.records_per_page",
			Message: "records per page must be positive",
		})
	}
	if cfg.MaxPages <= 0 {
		errs = append(errs, FieldError{
			Field:   "scanner.max_pages",
			Message: "max pages must be positive",
		})
	}
	if cfg.MaxWorkers <= 0 {
		errs = append(errs, FieldError{
			Field:   "scanner.max_workers",
			Message: "max workers must be positive",
		})
	}
	if cfg.BatchSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "scanner.batch_size",
			Message: "batch size must be positive",
		})
	}

	return errs
}

func validatePlan(cfg *PlanConfig) []FieldError {
	var errs []FieldError

	if cfg.DefaultDays <= 0 {
		errs = append(errs, FieldError{
			Field:   "plan.default_days",
			Message: "default days must be positive",
		})
	}
	if cfg.DefaultFile == "" {
		errs = append(errs, FieldError{
			Field:   "plan.default_file",
			Message: "default plan file is required",
		})
	}

	return errs
}

func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.SQLitePath == "" {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite_path",
			Message: "database path is required when audit is enabled",
		})
	}
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.max_records",
			Message: "max records must be non-negative",
		})
	}
	if cfg.Retention.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "audit.retention.schedule",
				Message: fmt.Sprintf("invalid cron expression %q", cfg.Retention.Schedule),
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be debug, info, warn, or error)", cfg.Logging.Level),
		})
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be json or text)", cfg.Logging.Format),
		})
	}
	if cfg.Metrics.Enabled && cfg.Metrics.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.listen_address",
			Message: "listen address is required when metrics are enabled",
		})
	}

	return errs
}
