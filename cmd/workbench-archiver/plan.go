package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"fossid-tools/workbench-archiver/pkg/cli"
	"fossid-tools/workbench-archiver/pkg/plan"
	"fossid-tools/workbench-archiver/pkg/scanner"
	"fossid-tools/workbench-archiver/pkg/telemetry/metrics"
	"fossid-tools/workbench-archiver/pkg/workbench"
)

var planFlags struct {
	days       int
	output     string
	exhaustive bool
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Identify stale scans and write an archive plan",
	Long: `Identify scans that have not been updated for the given number of days
and write them to a reviewable archive plan. No scan is modified.

Examples:
  # Plan for scans untouched for a year (the default)
  workbench-archiver plan

  # Custom threshold and output file
  workbench-archiver plan --days 180 --output q3_cleanup.json

  # Skip sampling and check every scan
  workbench-archiver plan --exhaustive`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().IntVarP(&planFlags.days, "days", "d", 0, "staleness threshold in days (default from config)")
	planCmd.Flags().StringVarP(&planFlags.output, "output", "o", "", "plan output path (default from config)")
	planCmd.Flags().BoolVar(&planFlags.exhaustive, "exhaustive", false, "process every scan instead of sampling")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	days := planFlags.days
	if days <= 0 {
		days = cfg.Plan.DefaultDays
	}
	output := planFlags.output
	if output == "" {
		output = cfg.Plan.DefaultFile
	}
	exhaustive := planFlags.exhaustive || cfg.Scanner.Exhaustive

	collector := metrics.NewCollector()
	startMetrics(cfg, collector)

	client, err := workbench.NewClient(workbench.Config{
		BaseURL:        cfg.Workbench.BaseURL,
		Username:       cfg.Workbench.Username,
		Token:          cfg.Workbench.Token,
		ConnectTimeout: cfg.Workbench.ConnectTimeout,
		RequestTimeout: cfg.Workbench.RequestTimeout,
		ListTimeout:    cfg.Workbench.ListTimeout,
		MaxRetries:     cfg.Workbench.MaxRetries,
		RetryDelay:     cfg.Workbench.RetryDelay,
		PoolSize:       cfg.Workbench.PoolSize,
		Metrics:        collector,
	})
	if err != nil {
		return cli.NewConfigError("workbench", err.Error())
	}

	ctx := cli.SetupSignalHandler()

	fmt.Printf("Checking connection to %s ...\n", client.BaseURL())
	server, err := client.GetServerConfig(ctx)
	if err != nil {
		fmt.Printf("✗ Cannot reach Workbench server\n")
		return cli.NewCommandError("plan", err)
	}
	fmt.Printf("✓ Connected to %s (version %s)\n", server.ServerName, server.Version)

	cutoff := time.Now().AddDate(0, 0, -days)
	fmt.Printf("Identifying scans not updated since %s (%d days)\n",
		cutoff.Format("2006-01-02"), days)

	inv, err := client.ListScans(ctx, cfg.Scanner.RecordsPerPage, cfg.Scanner.MaxPages)
	if err != nil {
		return cli.NewCommandError("plan", err)
	}
	fmt.Printf("✓ Listed %d scans\n", inv.Len())
	if inv.Len() == 0 {
		fmt.Println("✓ No stale scans found")
		return writePlan(plan.New(nil, time.Now()), output)
	}

	fetcher := scanner.NewFetcher(client, cfg.Scanner.MaxWorkers)

	if exhaustive {
		slog.Info("sampling disabled, processing every scan")
	} else {
		sampler := scanner.NewSampler(fetcher, scanner.SamplerConfig{
			ExhaustiveFallback: cfg.Scanner.Sampling.ExhaustiveFallback,
			Metrics:            collector,
		})
		inv, err = sampler.Reduce(ctx, inv, cutoff)
		if err != nil {
			return cli.NewCommandError("plan", err)
		}
		if inv.Len() == 0 {
			fmt.Println("✓ No stale scans detected")
			return writePlan(plan.New(nil, time.Now()), output)
		}
		fmt.Printf("✓ Sampling narrowed processing to %d scans\n", inv.Len())
	}

	processor := scanner.NewProcessor(fetcher, scanner.ProcessorConfig{
		BatchSize: cfg.Scanner.BatchSize,
		Progress:  cli.NewProgressReporter("Processing", nil),
	})
	stale, err := processor.Process(ctx, inv, cutoff)
	if err != nil {
		return cli.NewCommandError("plan", err)
	}

	p := plan.New(stale, time.Now())
	if err := writePlan(p, output); err != nil {
		return err
	}

	if p.TotalScans == 0 {
		fmt.Println("✓ No stale scans found")
	} else {
		fmt.Printf("✓ %d stale scans written to %s\n", p.TotalScans, output)
		fmt.Printf("Review the plan, then run: workbench-archiver archive --input %s\n", output)
	}
	return nil
}

func writePlan(p *plan.Plan, output string) error {
	if err := p.Save(output); err != nil {
		return cli.NewCommandError("plan", err)
	}
	slog.Info("archive plan written",
		"plan_id", p.ID,
		"path", output,
		"scans", p.TotalScans,
	)
	return nil
}
