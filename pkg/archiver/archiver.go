// Package archiver executes archive plans against a Workbench server, one
// scan at a time, recording each attempt in the audit trail when enabled.
package archiver

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fossid-tools/workbench-archiver/pkg/audit"
	"fossid-tools/workbench-archiver/pkg/cli"
	"fossid-tools/workbench-archiver/pkg/plan"
	"fossid-tools/workbench-archiver/pkg/telemetry/metrics"
)

// Client is the subset of the Workbench API the archiver needs.
type Client interface {
	ArchiveScan(ctx context.Context, scanCode string) error
}

// Config controls plan execution.
type Config struct {
	// Store receives an audit record per attempt. Optional.
	Store *audit.Store

	// Progress receives per-scan progress updates. Optional.
	Progress cli.ProgressReporter

	// Metrics optionally counts archive outcomes.
	Metrics *metrics.Collector
}

// Result summarizes a plan execution.
type Result struct {
	// Succeeded is the number of scans archived.
	Succeeded int

	// Failed is the number of scans whose archive request failed.
	Failed int
}

// Archiver executes archive plans sequentially. Archival mutates server
// state, so requests are deliberately not parallelized: one failure is
// visible before the next scan is touched.
type Archiver struct {
	client   Client
	store    *audit.Store
	progress cli.ProgressReporter
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// New creates an archiver that issues archive requests through client.
func New(client Client, cfg Config) *Archiver {
	return &Archiver{
		client:   client,
		store:    cfg.Store,
		progress: cfg.Progress,
		metrics:  cfg.Metrics,
		logger:   slog.Default().With("component", "archiver"),
	}
}

// ArchiveAll archives every scan in the plan, in order. A failed request
// does not stop the run; the failure is counted, logged, and recorded.
// Cancellation stops the run between scans and returns the context error
// alongside the partial result.
func (a *Archiver) ArchiveAll(ctx context.Context, p *plan.Plan) (*Result, error) {
	total := len(p.Scans)
	a.logger.Info("executing archive plan",
		"plan_id", p.ID,
		"scans", total,
	)
	if a.progress != nil {
		a.progress.Start(int64(total))
	}

	result := &Result{}
	for i, entry := range p.Scans {
		if err := ctx.Err(); err != nil {
			if a.progress != nil {
				a.progress.Error(err)
			}
			a.logger.Warn("archive run interrupted",
				"plan_id", p.ID,
				"succeeded", result.Succeeded,
				"failed", result.Failed,
				"remaining", total-i,
			)
			return result, err
		}

		err := a.client.ArchiveScan(ctx, entry.ScanCode)
		if err != nil {
			result.Failed++
			a.logger.Error("failed to archive scan",
				"scan_code", entry.ScanCode,
				"scan_name", entry.ScanName,
				"error", err,
			)
		} else {
			result.Succeeded++
			a.logger.Info("scan archived",
				"scan_code", entry.ScanCode,
				"scan_name", entry.ScanName,
				"project_code", entry.ProjectCode,
			)
		}

		a.record(ctx, p.ID, entry, err)
		if a.metrics != nil {
			if err != nil {
				a.metrics.ScanArchived("failure")
			} else {
				a.metrics.ScanArchived("success")
			}
		}
		if a.progress != nil {
			a.progress.Update(int64(i + 1))
		}
	}

	if a.progress != nil {
		a.progress.Finish()
	}
	a.logger.Info("archive plan executed",
		"plan_id", p.ID,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)

	return result, nil
}

// record writes the attempt to the audit store, if one is attached.
// Audit failures are logged, never fatal: losing a trail entry should not
// abort an archive run already in flight.
func (a *Archiver) record(ctx context.Context, planID string, entry plan.Entry, archiveErr error) {
	if a.store == nil {
		return
	}

	rec := &audit.Record{
		ID:          uuid.New().String(),
		PlanID:      planID,
		ScanCode:    entry.ScanCode,
		ScanName:    entry.ScanName,
		ProjectCode: entry.ProjectCode,
		Outcome:     audit.OutcomeSuccess,
		ArchivedAt:  time.Now().UTC(),
	}
	if archiveErr != nil {
		rec.Outcome = audit.OutcomeFailure
		rec.Error = archiveErr.Error()
	}

	if err := a.store.Record(ctx, rec); err != nil {
		a.logger.Warn("failed to record audit entry",
			"scan_code", entry.ScanCode,
			"error", err,
		)
	}
}
