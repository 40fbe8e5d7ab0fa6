package scanner

import (
	"fmt"
	"strings"
	"time"
)

// StaleScan is one confirmed-stale scan, ready for plan creation.
type StaleScan struct {
	ProjectCode string
	Name        string
	Code        string
	Created     time.Time
	Updated     time.Time
}

// Observation is one classified sample: the position of a scan in the
// ordered listing and whether it was stale at observation time.
type Observation struct {
	Position int
	IsStale  bool
	Updated  time.Time
}

// Range is a half-open [Start, End) interval of listing positions inferred
// to contain stale scans.
type Range struct {
	Start int
	End   int
}

// Width returns the number of positions the range covers.
func (r Range) Width() int {
	return r.End - r.Start
}

// ParseTimestamp parses a Workbench timestamp. The primary format is
// "YYYY-MM-DD HH:MM:SS"; ISO-8601 variants (space or T separator, with or
// without offset) are accepted as fallbacks. Offset-free timestamps are
// taken as local time, the same clock the staleness cutoff is computed
// from.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local); err == nil {
		return t, nil
	}

	iso := strings.ReplaceAll(s, " ", "T")
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", iso, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, iso); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
