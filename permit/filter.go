package permit

import (
	"strings"
	"time"
)

// DateRange is an inclusive range of calendar dates. The zero value means
// "unbounded" to BuildDashboard.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange builds a range from two dates, dropping the time of day. A
// reversed range (start after end) is normalized by swapping the bounds.
func NewDateRange(start, end time.Time) DateRange {
	start, end = dateOf(start), dateOf(end)
	if start.After(end) {
		start, end = end, start
	}
	return DateRange{Start: start, End: end}
}

// IsZero reports whether the range was left unset.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t's calendar date lies within the range, bounds
// included.
func (r DateRange) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	d := dateOf(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Bounds returns the earliest and latest creation dates among records. It
// reports false when no record has a date.
func Bounds(records []Record) (DateRange, bool) {
	var r DateRange
	found := false
	for _, rec := range records {
		if !rec.HasCreatedDate() {
			continue
		}
		if !found || rec.CreatedDate.Before(r.Start) {
			r.Start = rec.CreatedDate
		}
		if !found || rec.CreatedDate.After(r.End) {
			r.End = rec.CreatedDate
		}
		found = true
	}
	return r, found
}

// FilterDateRange returns the records created within r. Undated records are
// always excluded. The input slice is not modified.
func FilterDateRange(records []Record, r DateRange) []Record {
	return filterRange(records, NewDateRange(r.Start, r.End))
}

// filterRange is FilterDateRange without normalizing r, so a range whose
// start lies after its end matches nothing.
func filterRange(records []Record, r DateRange) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.CreatedDate) {
			out = append(out, rec)
		}
	}
	return out
}

// FilterDepartments keeps records whose department is one of depts, compared
// case-insensitively. An empty depts keeps everything.
func FilterDepartments(records []Record, depts []string) []Record {
	if len(depts) == 0 {
		return records
	}
	want := make(map[string]bool, len(depts))
	for _, d := range depts {
		want[strings.ToUpper(strings.TrimSpace(d))] = true
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if want[rec.Department] {
			out = append(out, rec)
		}
	}
	return out
}

// Departments lists the distinct non-blank departments in first-occurrence
// order.
func Departments(records []Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range records {
		if rec.Department == "" || seen[rec.Department] {
			continue
		}
		seen[rec.Department] = true
		out = append(out, rec.Department)
	}
	return out
}
