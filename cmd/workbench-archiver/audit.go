package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fossid-tools/workbench-archiver/pkg/audit"
	"fossid-tools/workbench-archiver/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and maintain the archive audit trail",
}

var auditListFlags struct {
	planID  string
	outcome string
	since   string
	limit   int
	format  string
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded archive attempts",
	Long: `List archive attempts recorded in the audit database, newest first.

Examples:
  # Last 100 attempts
  workbench-archiver audit list

  # Failures from one plan execution
  workbench-archiver audit list --plan 7f3c... --outcome failure

  # Machine-readable output
  workbench-archiver audit list --format json`,
	RunE: runAuditList,
}

var auditPruneFlags struct {
	schedule bool
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete audit records past the retention window",
	Long: `Delete audit records older than the configured retention period or
beyond the configured record cap.

With --schedule the command stays running and prunes on the cron
expression from audit.retention.schedule until interrupted.`,
	RunE: runAuditPrune,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditPruneCmd)

	auditListCmd.Flags().StringVar(&auditListFlags.planID, "plan", "", "filter by plan ID")
	auditListCmd.Flags().StringVar(&auditListFlags.outcome, "outcome", "", "filter by outcome (success, failure)")
	auditListCmd.Flags().StringVar(&auditListFlags.since, "since", "", "only attempts after this date (YYYY-MM-DD)")
	auditListCmd.Flags().IntVar(&auditListFlags.limit, "limit", 100, "maximum records to return")
	auditListCmd.Flags().StringVar(&auditListFlags.format, "format", "text", "output format (text, json)")

	auditPruneCmd.Flags().BoolVar(&auditPruneFlags.schedule, "schedule", false, "run on the configured cron schedule until interrupted")
}

func runAuditList(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	store, err := audit.NewStore(&audit.StoreConfig{Path: cfg.Audit.SQLitePath})
	if err != nil {
		return cli.NewCommandError("audit list", err)
	}
	defer store.Close()

	query := &audit.Query{
		PlanID:  auditListFlags.planID,
		Outcome: auditListFlags.outcome,
		Limit:   auditListFlags.limit,
	}
	if auditListFlags.since != "" {
		since, err := time.Parse("2006-01-02", auditListFlags.since)
		if err != nil {
			return cli.NewConfigError("since", fmt.Sprintf("invalid date %q", auditListFlags.since))
		}
		query.StartTime = &since
	}

	ctx := cli.SetupSignalHandler()
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("audit list", err)
	}

	if auditListFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, records)
	}

	if len(records) == 0 {
		fmt.Println("No audit records found.")
		return nil
	}
	for _, rec := range records {
		line := fmt.Sprintf("%s  %-7s  %-30s %s",
			rec.ArchivedAt.Format("2006-01-02 15:04:05"),
			rec.Outcome, rec.ScanCode, rec.ScanName)
		if rec.Error != "" {
			line += "  (" + rec.Error + ")"
		}
		fmt.Println(line)
	}
	fmt.Printf("%d records\n", len(records))
	return nil
}

func runAuditPrune(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	store, err := audit.NewStore(&audit.StoreConfig{Path: cfg.Audit.SQLitePath})
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}
	defer store.Close()

	pruner := audit.NewPruner(store, &audit.RetentionConfig{
		Days:       cfg.Audit.Retention.Days,
		Schedule:   cfg.Audit.Retention.Schedule,
		MaxRecords: cfg.Audit.Retention.MaxRecords,
	})

	ctx := cli.SetupSignalHandler()

	if auditPruneFlags.schedule {
		if cfg.Audit.Retention.Schedule == "" {
			return cli.NewConfigError("audit.retention.schedule",
				"a cron schedule is required with --schedule")
		}
		if err := pruner.Start(ctx); err != nil {
			return cli.NewCommandError("audit prune", err)
		}
		if next := pruner.NextRun(); next != nil {
			fmt.Printf("Pruning on schedule %q, next run %s. Ctrl-C to stop.\n",
				cfg.Audit.Retention.Schedule, next.Format("2006-01-02 15:04:05"))
		}
		<-ctx.Done()
		pruner.Stop()
		return nil
	}

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}
	fmt.Printf("✓ %d audit records pruned\n", deleted)
	return nil
}
