package scanner

import (
	"context"
	"testing"
	"time"

	"fossid-tools/workbench-archiver/pkg/workbench"
)

func TestProcessClassifiesByCutoff(t *testing.T) {
	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)

	inv := workbench.NewInventory()
	inv.Add("1", workbench.ScanRecord{Code: "old_1", Name: "Old 1"})
	inv.Add("2", workbench.ScanRecord{Code: "fresh_1", Name: "Fresh 1"})
	inv.Add("3", workbench.ScanRecord{Code: "old_2", Name: "Old 2"})
	inv.Add("4", workbench.ScanRecord{Code: "fresh_2", Name: "Fresh 2"})

	fetcher := &stubFetcher{infos: map[string]*workbench.ScanInfo{
		"old_1":   {Code: "old_1", Name: "Old 1", ProjectCode: "P1", Created: "2020-01-01 00:00:00", Updated: "2023-06-01 10:00:00"},
		"fresh_1": {Code: "fresh_1", Name: "Fresh 1", ProjectCode: "P1", Created: "2020-01-01 00:00:00", Updated: "2025-06-01 10:00:00"},
		"old_2":   {Code: "old_2", Name: "Old 2", ProjectCode: "P2", Created: "2020-01-01 00:00:00", Updated: "2024-12-31 23:59:59"},
		"fresh_2": {Code: "fresh_2", Name: "Fresh 2", ProjectCode: "P2", Created: "2020-01-01 00:00:00", Updated: "2025-01-01 00:00:00"},
	}}

	processor := NewProcessor(fetcher, ProcessorConfig{})
	stale, err := processor.Process(context.Background(), inv, cutoff)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(stale) != 2 {
		t.Fatalf("stale count = %d, want 2", len(stale))
	}
	if stale[0].Code != "old_1" || stale[1].Code != "old_2" {
		t.Errorf("stale = %v, want old_1 then old_2 in listing order", stale)
	}
	// A scan updated exactly at the cutoff is not stale.
	for _, s := range stale {
		if s.Code == "fresh_2" {
			t.Error("scan updated exactly at cutoff classified stale")
		}
	}
}

func TestProcessSkipsArchivedAndMissing(t *testing.T) {
	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)

	inv := workbench.NewInventory()
	inv.Add("1", workbench.ScanRecord{Code: "archived"})
	inv.Add("2", workbench.ScanRecord{Code: "vanished"})
	inv.Add("3", workbench.ScanRecord{Code: "stale"})

	fetcher := &stubFetcher{infos: map[string]*workbench.ScanInfo{
		"archived": {Code: "archived", Created: "2019-01-01 00:00:00", Updated: "2020-01-01 00:00:00", IsArchived: true},
		// "vanished" has no detail record: fetch failed.
		"stale": {Code: "stale", Created: "2019-01-01 00:00:00", Updated: "2020-01-01 00:00:00"},
	}}

	processor := NewProcessor(fetcher, ProcessorConfig{})
	stale, err := processor.Process(context.Background(), inv, cutoff)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(stale) != 1 || stale[0].Code != "stale" {
		t.Errorf("stale = %v, want only the unarchived stale scan", stale)
	}
}

func TestProcessSkipsUnparseableTimestamps(t *testing.T) {
	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)

	inv := workbench.NewInventory()
	inv.Add("1", workbench.ScanRecord{Code: "bad_updated"})
	inv.Add("2", workbench.ScanRecord{Code: "bad_created"})
	inv.Add("3", workbench.ScanRecord{Code: "good"})

	fetcher := &stubFetcher{infos: map[string]*workbench.ScanInfo{
		"bad_updated": {Code: "bad_updated", Created: "2019-01-01 00:00:00", Updated: "not a date"},
		"bad_created": {Code: "bad_created", Created: "garbage", Updated: "2020-01-01 00:00:00"},
		"good":        {Code: "good", Created: "2019-01-01 00:00:00", Updated: "2020-01-01 00:00:00"},
	}}

	processor := NewProcessor(fetcher, ProcessorConfig{})
	stale, err := processor.Process(context.Background(), inv, cutoff)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	// A scan whose record cannot be read in full is never planned, whether
	// the unreadable field is the update or the creation date.
	if len(stale) != 1 || stale[0].Code != "good" {
		t.Fatalf("stale = %v, want only the fully parseable scan", stale)
	}
}

func TestProcessBatches(t *testing.T) {
	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	inv := buildInventory(10)
	fetcher := &stubFetcher{infos: populateInfos(10, cutoff, 0, 10)}

	processor := NewProcessor(fetcher, ProcessorConfig{BatchSize: 3})
	stale, err := processor.Process(context.Background(), inv, cutoff)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(stale) != 10 {
		t.Errorf("stale count = %d, want 10", len(stale))
	}
	if len(fetcher.requested) != 4 {
		t.Fatalf("batches = %d, want 4 (3+3+3+1)", len(fetcher.requested))
	}
	if len(fetcher.requested[3]) != 1 {
		t.Errorf("last batch size = %d, want 1", len(fetcher.requested[3]))
	}
}

func TestProcessEmptyInventory(t *testing.T) {
	processor := NewProcessor(&stubFetcher{}, ProcessorConfig{})
	stale, err := processor.Process(context.Background(), workbench.NewInventory(), time.Now())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if stale != nil {
		t.Errorf("stale = %v, want nil", stale)
	}
}

func TestProcessStopsOnCancellation(t *testing.T) {
	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	inv := buildInventory(10)
	fetcher := &stubFetcher{infos: populateInfos(10, cutoff, 0, 10)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewProcessor(fetcher, ProcessorConfig{BatchSize: 3})
	if _, err := processor.Process(ctx, inv, cutoff); err == nil {
		t.Error("expected context error from canceled processing")
	}
}

func TestParseTimestampFormats(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2024-06-01 12:30:00", false},
		{"2024-06-01T12:30:00", false},
		{"2024-06-01T12:30:00Z", false},
		{"2024-06-01 12:30:00+02:00", false},
		{"", true},
		{"yesterday", true},
	}

	for _, tt := range tests {
		_, err := ParseTimestamp(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimestamp(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}
