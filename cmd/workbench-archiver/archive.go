package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fossid-tools/workbench-archiver/pkg/archiver"
	"fossid-tools/workbench-archiver/pkg/audit"
	"fossid-tools/workbench-archiver/pkg/cli"
	"fossid-tools/workbench-archiver/pkg/plan"
	"fossid-tools/workbench-archiver/pkg/telemetry/metrics"
	"fossid-tools/workbench-archiver/pkg/workbench"
)

// previewLimit caps the number of plan entries echoed before confirmation.
const previewLimit = 10

var archiveFlags struct {
	input string
	yes   bool
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Execute a previously written archive plan",
	Long: `Archive every scan listed in an archive plan, one at a time. Each scan
is echoed for review and the run must be confirmed unless --yes is given.

A failed scan does not stop the run; failures are counted and reported at
the end, and the command exits non-zero if any occurred.

Examples:
  workbench-archiver archive --input archive_plan.json

  # Non-interactive (cron, CI)
  workbench-archiver archive --input archive_plan.json --yes`,
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().StringVarP(&archiveFlags.input, "input", "i", "", "plan file to execute (default from config)")
	archiveCmd.Flags().BoolVarP(&archiveFlags.yes, "yes", "y", false, "skip the confirmation prompt")
}

func runArchive(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	input := archiveFlags.input
	if input == "" {
		input = cfg.Plan.DefaultFile
	}

	p, err := plan.Load(input)
	if err != nil {
		return cli.NewCommandError("archive", err)
	}
	if len(p.Scans) == 0 {
		fmt.Println("Plan contains no scans, nothing to do.")
		return nil
	}

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

	// Prove the server is reachable before asking anyone to confirm an
	// irreversible run.
	fmt.Printf("Checking connection to %s ...\n", client.BaseURL())
	server, err := client.GetServerConfig(ctx)
	if err != nil {
		fmt.Printf("✗ Cannot reach Workbench server\n")
		return cli.NewCommandError("archive", err)
	}
	fmt.Printf("✓ Connected to %s (version %s)\n", server.ServerName, server.Version)

	fmt.Printf("Archive plan %s (%d scans, created %s):\n",
		p.ID, len(p.Scans), p.CreatedAt.Format("2006-01-02 15:04"))
	for i, entry := range p.Scans {
		if i == previewLimit {
			fmt.Printf("  ... and %d more\n", len(p.Scans)-previewLimit)
			break
		}
		fmt.Printf("  %-30s %-40s last modified %s (%d days)\n",
			entry.ProjectCode, entry.ScanName, entry.LastModified, entry.AgeDays)
	}

	if !archiveFlags.yes && !confirm(fmt.Sprintf("Archive these %d scans?", len(p.Scans))) {
		fmt.Println("Aborted.")
		return nil
	}

	var store *audit.Store
	if cfg.Audit.Enabled {
		store, err = audit.NewStore(&audit.StoreConfig{Path: cfg.Audit.SQLitePath})
		if err != nil {
			return cli.NewCommandError("archive", err)
		}
		defer store.Close()
	}

	arch := archiver.New(client, archiver.Config{
		Store:    store,
		Progress: cli.NewProgressReporter("Archiving", nil),
		Metrics:  collector,
	})
	result, err := arch.ArchiveAll(ctx, p)
	if err != nil {
		fmt.Printf("\nInterrupted: %d archived, %d failed, %d remaining\n",
			result.Succeeded, result.Failed, len(p.Scans)-result.Succeeded-result.Failed)
		return cli.NewCommandError("archive", err)
	}

	fmt.Printf("✓ %d scans archived", result.Succeeded)
	if result.Failed > 0 {
		fmt.Printf(", %d failed\n", result.Failed)
		return cli.NewCommandError("archive",
			fmt.Errorf("%d of %d scans failed to archive", result.Failed, len(p.Scans)))
	}
	fmt.Println()
	return nil
}

// confirm prompts on stdout and reads a yes/no answer from stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
