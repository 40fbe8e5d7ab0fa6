package plan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fossid-tools/workbench-archiver/pkg/scanner"
)

func sampleRecords() []scanner.StaleScan {
	return []scanner.StaleScan{
		{
			ProjectCode: "PROJ_A",
			Name:        "webapp backend",
			Code:        "scan_1",
			Created:     time.Date(2022, 3, 10, 9, 0, 0, 0, time.UTC),
			Updated:     time.Date(2023, 1, 15, 14, 30, 0, 0, time.UTC),
		},
		{
			// Scans without a project group under a fallback label.
			ProjectCode: "",
			Name:        "orphan scan",
			Code:        "scan_2",
			Updated:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestNewComputesEntries(t *testing.T) {
	now := time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC)
	p := New(sampleRecords(), now)

	if p.ID == "" {
		t.Error("plan ID is empty")
	}
	if p.TotalScans != 2 || len(p.Scans) != 2 {
		t.Fatalf("TotalScans = %d, Scans = %d, want 2/2", p.TotalScans, len(p.Scans))
	}

	first := p.Scans[0]
	if first.ProjectCode != "PROJ_A" || first.ScanCode != "scan_1" {
		t.Errorf("first entry = %+v", first)
	}
	if first.CreationDate != "2022-03-10T09:00:00" {
		t.Errorf("CreationDate = %q", first.CreationDate)
	}
	if first.LastModified != "2023-01-15T14:30:00" {
		t.Errorf("LastModified = %q", first.LastModified)
	}
	// 2023-01-15 to 2025-08-31 is 958 days.
	if first.AgeDays != 958 {
		t.Errorf("AgeDays = %d, want 958", first.AgeDays)
	}

	second := p.Scans[1]
	if second.ProjectCode != "No Project" {
		t.Errorf("empty project code mapped to %q, want \"No Project\"", second.ProjectCode)
	}
	if second.CreationDate != "" {
		t.Errorf("CreationDate = %q, want empty for zero time", second.CreationDate)
	}
}

func TestNewEmptyRecords(t *testing.T) {
	p := New(nil, time.Now())
	if p.TotalScans != 0 {
		t.Errorf("TotalScans = %d, want 0", p.TotalScans)
	}
	if len(p.Scans) != 0 {
		t.Errorf("Scans = %v, want empty", p.Scans)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	now := time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC)
	p := New(sampleRecords(), now)

	path := filepath.Join(t.TempDir(), "plan.json")
	if err := p.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got.ID != p.ID {
		t.Errorf("ID = %q, want %q", got.ID, p.ID)
	}
	if got.TotalScans != p.TotalScans || len(got.Scans) != len(p.Scans) {
		t.Fatalf("loaded %d/%d scans, want %d/%d", got.TotalScans, len(got.Scans), p.TotalScans, len(p.Scans))
	}
	for i := range p.Scans {
		if got.Scans[i] != p.Scans[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got.Scans[i], p.Scans[i])
		}
	}
}

func TestLoadRejectsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "this is not json"},
		{"json array", `[1, 2, 3]`},
		{"missing scans field", `{"id": "x", "total_scans": 0}`},
		{"wrong scans type", `{"scans": "nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := Load(path)
			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Errorf("Load() error = %v, want *FormatError", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Errorf("Load() error = %v, want *FormatError", err)
	}
}
