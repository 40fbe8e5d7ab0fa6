package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig controls audit record pruning.
type RetentionConfig struct {
	// Days is the number of days to retain audit records.
	// 0 keeps records forever.
	Days int

	// Schedule is a cron expression for automatic pruning,
	// e.g. "0 3 * * *" for daily at 3 AM. Empty disables the scheduler.
	Schedule string

	// MaxRecords caps the total record count. 0 means unlimited.
	MaxRecords int64
}

// DefaultRetentionConfig returns the default retention configuration.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		Days:       365,
		Schedule:   "",
		MaxRecords: 0,
	}
}

// Pruner enforces the retention policy on the audit store.
type Pruner struct {
	store   *Store
	config  *RetentionConfig
	cron    *cron.Cron
	mu      sync.Mutex
	running bool
	logger  *slog.Logger
}

// NewPruner creates a retention pruner over the given store.
func NewPruner(store *Store, config *RetentionConfig) *Pruner {
	if config == nil {
		config = DefaultRetentionConfig()
	}
	return &Pruner{
		store:  store,
		config: config,
		cron:   cron.New(),
		logger: slog.Default().With("component", "audit.retention"),
	}
}

// Prune deletes audit records older than the retention window or beyond
// the record cap, in two phases: age first, then count. Returns the total
// number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.Days > 0 {
		cutoff := time.Now().AddDate(0, 0, -p.config.Days)
		deleted, err := p.store.Delete(ctx, &Query{EndTime: &cutoff})
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Info("pruned audit records by age",
			"deleted", deleted,
			"retention_days", p.config.Days,
		)
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
	}

	return totalDeleted, nil
}

// pruneByCount deletes the oldest records when the total exceeds the cap.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.store.Count(ctx, &Query{})
	if err != nil {
		return 0, err
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}

	toDelete := count - p.config.MaxRecords
	p.logger.Info("audit record count exceeds limit, pruning oldest",
		"current", count,
		"max_records", p.config.MaxRecords,
		"to_delete", toDelete,
	)

	// Records come back newest first; the cutoff is the timestamp of the
	// newest record that still falls in the oldest toDelete.
	all, err := p.store.Query(ctx, &Query{Limit: int(count)})
	if err != nil {
		return 0, err
	}
	if int64(len(all)) <= p.config.MaxRecords {
		return 0, nil
	}

	cutoff := all[p.config.MaxRecords].ArchivedAt
	return p.store.Delete(ctx, &Query{EndTime: &cutoff})
}

// Start begins scheduled pruning based on the configured cron expression.
// It does nothing when no schedule is configured.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.Schedule == "" {
		p.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(p.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", p.config.Schedule, err)
	}

	_, err := p.cron.AddFunc(p.config.Schedule, func() {
		deleted, err := p.Prune(ctx)
		if err != nil {
			p.logger.Error("scheduled pruning failed", "error", err)
			return
		}
		p.logger.Info("scheduled pruning completed", "deleted", deleted)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true
	p.logger.Info("retention scheduler started",
		"schedule", p.config.Schedule,
		"retention_days", p.config.Days,
	)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for any running job to finish.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		<-p.cron.Stop().Done()
		p.running = false
		p.logger.Info("retention scheduler stopped")
	}
}

// NextRun returns the next scheduled pruning time, if scheduled.
func (p *Pruner) NextRun() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
