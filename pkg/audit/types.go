package audit

import "time"

// Archive attempt outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Record is one archive attempt against a single scan.
type Record struct {
	// ID uniquely identifies this attempt.
	ID string `json:"id"`

	// PlanID is the ID of the plan the attempt was executed from.
	PlanID string `json:"plan_id"`

	// ScanCode is the unique code of the scan that was archived.
	ScanCode string `json:"scan_code"`

	// ScanName is the scan's display name at the time of archival.
	ScanName string `json:"scan_name"`

	// ProjectCode is the scan's owning project, if any.
	ProjectCode string `json:"project_code"`

	// Outcome is OutcomeSuccess or OutcomeFailure.
	Outcome string `json:"outcome"`

	// Error holds the failure message for failed attempts.
	Error string `json:"error,omitempty"`

	// ArchivedAt is when the attempt completed.
	ArchivedAt time.Time `json:"archived_at"`
}

// Query filters audit records. Zero values mean no filter.
type Query struct {
	// PlanID restricts results to one plan execution.
	PlanID string

	// Outcome restricts results to one outcome.
	Outcome string

	// StartTime and EndTime bound ArchivedAt.
	StartTime *time.Time
	EndTime   *time.Time

	// Limit caps the number of results. 0 means the default of 100.
	Limit int

	// Offset skips results for pagination.
	Offset int
}
