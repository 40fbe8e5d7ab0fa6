package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fossid-tools/workbench-archiver/pkg/cli"
	"fossid-tools/workbench-archiver/pkg/config"
	"fossid-tools/workbench-archiver/pkg/telemetry/logging"
	"fossid-tools/workbench-archiver/pkg/telemetry/metrics"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "workbench-archiver",
	Short: "Identify and archive stale FossID Workbench scans",
	Long: `Workbench Archiver keeps large FossID Workbench installations manageable
by archiving scans that have not been updated for a configurable period.

Archival runs in two phases:
  - "plan" lists the server's scans, identifies the stale ones, and
    writes a reviewable archive plan as JSON
  - "archive" executes a previously written plan, one scan at a time

On installations with tens of thousands of scans the plan phase uses
logarithmic sampling to find the regions of the scan listing that contain
stale scans, instead of fetching detail for every scan.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup loads configuration and installs the process logger. Every
// subcommand that talks to the server goes through it.
func setup() (*config.Config, error) {
	// Optional .env for credentials; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}

	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{
		Level:  level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	return cfg, nil
}

// startMetrics serves the collector on /metrics for the duration of the
// run when metrics are enabled.
func startMetrics(cfg *config.Config, collector *metrics.Collector) {
	if !cfg.Telemetry.Metrics.Enabled {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	go func() {
		addr := cfg.Telemetry.Metrics.ListenAddress
		slog.Info("metrics listener started", "address", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Warn("metrics listener stopped", "error", err)
		}
	}()
}
