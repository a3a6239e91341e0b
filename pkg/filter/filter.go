package filter

import (
	"errors"
	"fmt"
	"time"

	"budgetu/pkg/mapper"
	"budgetu/pkg/table"
)

// ErrInvalidDateRange means the user supplied a malformed range, usually
// only one of the two endpoints. Nothing downstream runs until it is fixed.
var ErrInvalidDateRange = errors.New("select a valid date range")

// ErrNoRows means the filters matched nothing. A warning for the user, not
// a fault; downstream rendering is skipped.
var ErrNoRows = errors.New("no records found for selected filters")

// Spec narrows normalized rows to an inclusive date interval and a set of
// allowed categories.
type Spec struct {
	Start      time.Time
	End        time.Time
	Categories map[string]bool
}

// NewSpec builds a Spec from resolved endpoints and an allowed-category list.
func NewSpec(start, end time.Time, categories []string) Spec {
	allowed := make(map[string]bool, len(categories))
	for _, c := range categories {
		allowed[c] = true
	}
	return Spec{Start: day(start), End: day(end), Categories: allowed}
}

// ParseRange resolves the raw endpoint strings. Both empty means the caller
// should fall back to DefaultRange (ok=false). Exactly one endpoint, or an
// endpoint that does not parse as a date, is ErrInvalidDateRange.
func ParseRange(start, end string) (time.Time, time.Time, bool, error) {
	if start == "" && end == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, false, fmt.Errorf("%w: both endpoints are required", ErrInvalidDateRange)
	}
	from := mapper.ParseDate(start)
	to := mapper.ParseDate(end)
	if !from.Valid || !to.Valid {
		return time.Time{}, time.Time{}, false, fmt.Errorf("%w: endpoints must be dates", ErrInvalidDateRange)
	}
	return from.Time, to.Time, true, nil
}

// DefaultRange spans the valid dates in the rows. When no row has a valid
// date the range falls back to January 1st of the current year through
// today, so the range picker always has a sane initial value.
func DefaultRange(rows []table.NormalizedRow) (time.Time, time.Time) {
	var min, max time.Time
	for _, r := range rows {
		if !r.Date.Valid {
			continue
		}
		if min.IsZero() || r.Date.Time.Before(min) {
			min = r.Date.Time
		}
		if max.IsZero() || r.Date.Time.After(max) {
			max = r.Date.Time
		}
	}
	if min.IsZero() {
		now := time.Now()
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), day(now)
	}
	return day(min), day(max)
}

// Apply keeps rows whose date is valid and inside the interval and whose
// category is allowed, preserving the original order.
func Apply(rows []table.NormalizedRow, spec Spec) []table.NormalizedRow {
	kept := make([]table.NormalizedRow, 0, len(rows))
	for _, r := range rows {
		if !r.Date.Valid {
			continue
		}
		d := day(r.Date.Time)
		if d.Before(spec.Start) || d.After(spec.End) {
			continue
		}
		if !spec.Categories[r.Category] {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// day truncates a timestamp to its UTC calendar day so interval checks
// compare dates, not clock times.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
