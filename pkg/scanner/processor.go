package scanner

import (
	"context"
	"log/slog"
	"time"

	"fossid-tools/workbench-archiver/pkg/cli"
	"fossid-tools/workbench-archiver/pkg/workbench"
)

// DefaultBatchSize is the number of scans fetched per processing batch.
const DefaultBatchSize = 75

// ProcessorConfig controls the full-detail processing pass.
type ProcessorConfig struct {
	// BatchSize caps the number of scans handed to the fetcher at a
	// time. Defaults to DefaultBatchSize when zero or negative.
	BatchSize int

	// Progress receives batch-level progress updates. Optional.
	Progress cli.ProgressReporter
}

// Processor fetches full detail for a candidate population and classifies
// each scan against the staleness cutoff.
type Processor struct {
	fetcher   InfoFetcher
	batchSize int
	progress  cli.ProgressReporter
	logger    *slog.Logger
}

// NewProcessor creates a processor that fetches detail through fetcher.
func NewProcessor(fetcher InfoFetcher, cfg ProcessorConfig) *Processor {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Processor{
		fetcher:   fetcher,
		batchSize: batchSize,
		progress:  cfg.Progress,
		logger:    slog.Default().With("component", "scanner.processor"),
	}
}

// Process fetches detail for every scan in the inventory, in batches, and
// returns the scans whose last update predates cutoff. Archived scans,
// scans whose detail fetch failed, and scans with unparseable dates are
// skipped. Processing the same inventory twice yields the same result:
// already-archived scans drop out of the stale set.
func (p *Processor) Process(ctx context.Context, inv *workbench.Inventory, cutoff time.Time) ([]StaleScan, error) {
	total := inv.Len()
	if total == 0 {
		return nil, nil
	}

	p.logger.Info("processing scans",
		"total", total,
		"batch_size", p.batchSize,
		"cutoff", cutoff.Format("2006-01-02"),
	)
	if p.progress != nil {
		p.progress.Start(int64(total))
	}

	var stale []StaleScan
	processed := 0
	for start := 0; start < total; start += p.batchSize {
		if err := ctx.Err(); err != nil {
			if p.progress != nil {
				p.progress.Error(err)
			}
			return nil, err
		}

		end := start + p.batchSize
		if end > total {
			end = total
		}
		codes := make([]string, 0, end-start)
		names := make(map[string]string, end-start)
		for i := start; i < end; i++ {
			rec := inv.At(i)
			codes = append(codes, rec.Code)
			names[rec.Code] = rec.Name
		}

		details := p.fetcher.FetchBatch(ctx, codes)
		for _, code := range codes {
			info, ok := details[code]
			if !ok {
				continue
			}
			if info.IsArchived.Bool() {
				continue
			}

			updated, err := ParseTimestamp(info.Updated)
			if err != nil {
				p.logger.Warn("skipping scan with invalid update date",
					"scan_code", code,
					"updated", info.Updated,
					"error", err,
				)
				continue
			}
			if !updated.Before(cutoff) {
				continue
			}

			created, err := ParseTimestamp(info.Created)
			if err != nil {
				// Archival is irreversible; a scan whose record cannot be
				// read in full is never planned.
				p.logger.Warn("skipping scan with invalid creation date",
					"scan_code", code,
					"created", info.Created,
					"error", err,
				)
				continue
			}
			name := info.Name
			if name == "" {
				name = names[code]
			}
			stale = append(stale, StaleScan{
				ProjectCode: info.ProjectCode,
				Name:        name,
				Code:        code,
				Created:     created,
				Updated:     updated,
			})
		}

		processed = end
		if p.progress != nil {
			p.progress.Update(int64(processed))
		}
		p.logger.Debug("batch processed",
			"processed", processed,
			"total", total,
			"stale", len(stale),
		)
	}

	if p.progress != nil {
		p.progress.Finish()
	}
	p.logger.Info("processing complete",
		"processed", processed,
		"stale", len(stale),
	)

	return stale, nil
}
