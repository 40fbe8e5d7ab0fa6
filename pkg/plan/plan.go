package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"fossid-tools/workbench-archiver/pkg/scanner"
)

// timeLayout is the timestamp format used inside plan files.
const timeLayout = "2006-01-02T15:04:05"

// fallbackProjectCode labels scans that are not attached to a project.
const fallbackProjectCode = "No Project"

// Entry is one scan scheduled for archival.
type Entry struct {
	ProjectCode  string `json:"project_code"`
	ScanCode     string `json:"scan_code"`
	ScanName     string `json:"scan_name"`
	CreationDate string `json:"creation_date"`
	LastModified string `json:"last_modified"`
	AgeDays      int    `json:"age_days"`
}

// Plan is a reviewable archive plan: the output of the identification
// phase and the input of the execution phase.
type Plan struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	TotalScans int       `json:"total_scans"`
	Scans      []Entry   `json:"scans"`
}

// FormatError reports a plan file that could not be read or decoded.
type FormatError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *FormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid plan file %s: %s: %v", e.Path, e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid plan file %s: %s", e.Path, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Cause
}

// New builds a plan from identified stale scans. Ages are computed in
// whole days relative to now.
func New(records []scanner.StaleScan, now time.Time) *Plan {
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		projectCode := rec.ProjectCode
		if projectCode == "" {
			projectCode = fallbackProjectCode
		}
		creationDate := ""
		if !rec.Created.IsZero() {
			creationDate = rec.Created.Format(timeLayout)
		}
		entries = append(entries, Entry{
			ProjectCode:  projectCode,
			ScanCode:     rec.Code,
			ScanName:     rec.Name,
			CreationDate: creationDate,
			LastModified: rec.Updated.Format(timeLayout),
			AgeDays:      int(now.Sub(rec.Updated).Hours() / 24),
		})
	}

	return &Plan{
		ID:         uuid.New().String(),
		CreatedAt:  now,
		TotalScans: len(entries),
		Scans:      entries,
	}
}

// Save writes the plan to path as indented JSON.
func (p *Plan) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating plan file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		f.Close()
		return fmt.Errorf("writing plan file: %w", err)
	}
	return f.Close()
}

// Load reads a plan from path, validating its shape before use.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FormatError{Path: path, Reason: "reading file", Cause: err}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &FormatError{Path: path, Reason: "not a JSON object", Cause: err}
	}
	if _, ok := raw["scans"]; !ok {
		return nil, &FormatError{Path: path, Reason: "missing scans field"}
	}

	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &FormatError{Path: path, Reason: "decoding plan", Cause: err}
	}
	return &p, nil
}
