package scanner

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"fossid-tools/workbench-archiver/pkg/telemetry/metrics"
	"fossid-tools/workbench-archiver/pkg/workbench"
)

const (
	// minSampledPopulation is the population size below which sampling
	// is skipped and every scan is processed directly.
	minSampledPopulation = 100

	// minRangeBuffer is the smallest expansion applied to each side of a
	// candidate range, in positions.
	minRangeBuffer = 50

	// rangeBufferRatio expands each candidate range by this fraction of
	// its width on both sides.
	rangeBufferRatio = 0.05
)

// SamplerConfig controls the sampling pass.
type SamplerConfig struct {
	// ExhaustiveFallback substitutes a full scan for the first-half
	// heuristic when stale samples exist but no contiguous region was
	// found. The heuristic can miss stale clusters that sit entirely in
	// the second half of the listing; correctness-sensitive deployments
	// should enable this.
	ExhaustiveFallback bool

	// Metrics optionally records sample classifications.
	Metrics *metrics.Collector
}

// Sampler reduces a large scan population to the regions likely to contain
// stale scans. Staleness clusters by creation order, so a sparse sample
// can locate the boundary regions without fetching detail for every scan.
type Sampler struct {
	fetcher InfoFetcher
	cfg     SamplerConfig
	logger  *slog.Logger
}

// NewSampler creates a sampler that probes scan detail through fetcher.
func NewSampler(fetcher InfoFetcher, cfg SamplerConfig) *Sampler {
	return &Sampler{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  slog.Default().With("component", "scanner.sampler"),
	}
}

// SampleIndices returns the listing positions to probe for a population of
// the given size. Populations under 100 are returned in full. Larger ones
// get 10^(floor(log10(n))-1) samples spread evenly across [0, n), deduped
// after rounding — 10 samples at 100 scans, 100 at 1,000, 1,000 at 10,000,
// holding the sampling density roughly constant per decade.
func SampleIndices(total int) []int {
	if total <= 0 {
		return nil
	}

	if total < minSampledPopulation {
		indices := make([]int, total)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	// floor(log10(total)) via integer division; float Log10 can land just
	// under a whole number at decade boundaries.
	decades := 0
	for v := total; v >= 10; v /= 10 {
		decades++
	}
	numSamples := 1
	for i := 0; i < decades-1; i++ {
		numSamples *= 10
	}
	if numSamples > total {
		numSamples = total
	}

	indices := make([]int, 0, numSamples)
	seen := make(map[int]struct{}, numSamples)
	for i := 0; i < numSamples; i++ {
		var idx int
		if numSamples > 1 {
			idx = int(float64(i) / float64(numSamples-1) * float64(total-1))
		} else {
			idx = total / 2
		}
		if _, dup := seen[idx]; !dup {
			seen[idx] = struct{}{}
			indices = append(indices, idx)
		}
	}

	sort.Ints(indices)
	return indices
}

// IdentifyRanges turns classified observations into candidate ranges:
// maximal runs of consecutive stale sample positions, extended to the end
// of the population when the last sampled position is stale, then buffered
// and merged.
func IdentifyRanges(observations []Observation, total int) []Range {
	obs := make([]Observation, len(observations))
	copy(obs, observations)
	sort.Slice(obs, func(i, j int) bool { return obs[i].Position < obs[j].Position })

	var ranges []Range
	start := -1
	for _, o := range obs {
		switch {
		case o.IsStale && start < 0:
			start = o.Position
		case !o.IsStale && start >= 0:
			ranges = append(ranges, Range{Start: start, End: o.Position})
			start = -1
		}
	}
	if start >= 0 {
		ranges = append(ranges, Range{Start: start, End: total})
	}

	return extendAndMerge(ranges, total)
}

// extendAndMerge expands each range by max(50, 5% of width) on both sides,
// clamped to [0, total), then merges overlapping or adjacent ranges into a
// minimal disjoint set.
func extendAndMerge(ranges []Range, total int) []Range {
	if len(ranges) == 0 {
		return ranges
	}

	extended := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		buffer := int(float64(r.Width()) * rangeBufferRatio)
		if buffer < minRangeBuffer {
			buffer = minRangeBuffer
		}
		start := r.Start - buffer
		if start < 0 {
			start = 0
		}
		end := r.End + buffer
		if end > total {
			end = total
		}
		extended = append(extended, Range{Start: start, End: end})
	}

	merged := []Range{extended[0]}
	for _, r := range extended[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
		} else {
			merged = append(merged, r)
		}
	}

	return merged
}

// Reduce returns the subset of the inventory worth processing in full.
//
// Small populations pass through unchanged. Otherwise a sparse sample is
// fetched and classified against the cutoff: no usable samples falls back
// to the full population, zero stale samples returns an empty inventory,
// and anything else becomes the union of the buffered, merged candidate
// ranges in population order. The result is a superset (with buffer) of
// the true stale population, modulo the clustered-staleness assumption.
func (s *Sampler) Reduce(ctx context.Context, inv *workbench.Inventory, cutoff time.Time) (*workbench.Inventory, error) {
	total := inv.Len()
	if total == 0 {
		return inv, nil
	}
	if total < minSampledPopulation {
		s.logger.Info("small population, processing every scan", "total", total)
		return inv, nil
	}

	indices := SampleIndices(total)
	codes := make([]string, len(indices))
	for i, idx := range indices {
		codes[i] = inv.At(idx).Code
	}

	s.logger.Info("sampling population",
		"samples", len(codes),
		"total", total,
		"rate_percent", float64(len(codes))/float64(total)*100,
	)

	details := s.fetcher.FetchBatch(ctx, codes)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	observations := make([]Observation, 0, len(indices))
	staleCount := 0
	for i, code := range codes {
		info, ok := details[code]
		if !ok {
			continue
		}
		if info.IsArchived.Bool() {
			s.observe("archived")
			continue
		}
		updated, err := ParseTimestamp(info.Updated)
		if err != nil {
			s.logger.Warn("sample has invalid update date",
				"scan_code", code,
				"error", err,
			)
			s.observe("invalid")
			continue
		}

		isStale := updated.Before(cutoff)
		if isStale {
			staleCount++
			s.observe("stale")
		} else {
			s.observe("fresh")
		}
		observations = append(observations, Observation{
			Position: indices[i],
			IsStale:  isStale,
			Updated:  updated,
		})
	}

	if len(observations) == 0 {
		s.logger.Warn("no usable samples, falling back to exhaustive processing")
		return inv, nil
	}
	if staleCount == 0 {
		s.logger.Info("no stale scans detected in samples, skipping full processing")
		return workbench.NewInventory(), nil
	}

	s.logger.Info("stale scans present in samples",
		"stale_samples", staleCount,
		"samples", len(observations),
	)

	ranges := IdentifyRanges(observations, total)
	if len(ranges) == 0 {
		if s.cfg.ExhaustiveFallback {
			s.logger.Warn("no contiguous stale region found, falling back to exhaustive processing")
			return inv, nil
		}
		// Heuristic, not a guarantee: stale clusters entirely in the
		// second half are missed.
		s.logger.Warn("no contiguous stale region found, processing first half")
		ranges = []Range{{Start: 0, End: total / 2}}
	}

	reduced := workbench.NewInventory()
	for _, r := range ranges {
		for i := r.Start; i < r.End; i++ {
			key, rec := inv.Entry(i)
			reduced.Add(key, rec)
		}
	}

	s.logger.Info("sampling reduced population",
		"ranges", len(ranges),
		"candidates", reduced.Len(),
		"total", total,
		"reduction_percent", float64(total-reduced.Len())/float64(total)*100,
	)

	return reduced, nil
}

func (s *Sampler) observe(result string) {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.SampleObserved(result)
	}
}
