package scanner

import (
	"context"
	"log/slog"
	"sync"

	"fossid-tools/workbench-archiver/pkg/workbench"
)

// DefaultMaxWorkers bounds concurrent detail requests.
const DefaultMaxWorkers = 15

// InfoFetcher fetches detail records for a set of scan codes. Codes whose
// fetch fails are absent from the result; callers must treat a missing code
// as "detail unavailable this round", never as stale or fresh.
type InfoFetcher interface {
	FetchBatch(ctx context.Context, codes []string) map[string]*workbench.ScanInfo
}

// Fetcher fetches scan detail concurrently with a bounded worker pool.
type Fetcher struct {
	client     *workbench.Client
	maxWorkers int
	logger     *slog.Logger
}

// NewFetcher creates a fetcher backed by client. maxWorkers <= 0 selects
// the default pool size.
func NewFetcher(client *workbench.Client, maxWorkers int) *Fetcher {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	return &Fetcher{
		client:     client,
		maxWorkers: maxWorkers,
		logger:     slog.Default().With("component", "scanner.fetcher"),
	}
}

// FetchBatch dispatches one detail request per code to the worker pool and
// collects results in completion order. Individual failures are logged and
// omitted; no error escapes to the caller. Retry for transient faults
// happens inside the transport, not here.
func (f *Fetcher) FetchBatch(ctx context.Context, codes []string) map[string]*workbench.ScanInfo {
	results := make(map[string]*workbench.ScanInfo, len(codes))
	if len(codes) == 0 {
		return results
	}

	type fetchResult struct {
		code string
		info *workbench.ScanInfo
	}

	workers := f.maxWorkers
	if workers > len(codes) {
		workers = len(codes)
	}

	jobs := make(chan string)
	out := make(chan fetchResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range jobs {
				info, err := f.client.GetScanInfo(ctx, code)
				if err != nil {
					f.logger.Error("failed to fetch scan info",
						"scan_code", code,
						"error", err,
					)
					out <- fetchResult{code: code}
					continue
				}
				out <- fetchResult{code: code, info: info}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, code := range codes {
			select {
			case jobs <- code:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	for res := range out {
		if res.info != nil {
			results[res.code] = res.info
		}
	}

	return results
}
