package permit

import (
	"errors"
	"fmt"
)

// Query carries one interaction's selections. Zero date ranges default to
// the bounds of the data they filter; empty Departments and Columns select
// everything; an empty Plant skips the plant summary.
type Query struct {
	Global             DateRange
	Result             DateRange
	Departments        []string
	WorkflowDepartment string
	Columns            []string
	Plant              string
}

// Dashboard is every derived table for one Query over one Snapshot.
type Dashboard struct {
	GlobalRange        DateRange     `json:"globalRange"`
	ResultRange        DateRange     `json:"resultRange"`
	DepartmentOptions  []string      `json:"departmentOptions"`
	DepartmentCounts   []Count       `json:"departmentCounts"`
	WorkflowDepartment string        `json:"workflowDepartment"`
	WorkflowStates     []Count       `json:"workflowStates"`
	Summary            Summary       `json:"summary"`
	Plant              *PlantSummary `json:"plant,omitempty"`
	PlantNoData        bool          `json:"plantNoData"`
	TotalPermits       int           `json:"totalPermits"`
	Warnings           []string      `json:"warnings,omitempty"`
}

// BuildDashboard recomputes the dashboard from scratch. Records pass through
// the global date range, then the result date range, then the department
// filter; every table is built from what remains. When the snapshot has no
// creation dates both date stages are skipped.
func BuildDashboard(snap Snapshot, q Query) (Dashboard, error) {
	d := Dashboard{
		WorkflowDepartment: q.WorkflowDepartment,
		Warnings:           append([]string(nil), snap.Warnings...),
	}
	if d.WorkflowDepartment == "" {
		d.WorkflowDepartment = "All"
	}

	base := snap.Records
	filtered := base
	if snap.HasDates {
		d.GlobalRange = resolveRange(q.Global, snap.Records)
		base = filterRange(snap.Records, d.GlobalRange)
		d.ResultRange = resolveRange(q.Result, base)
		filtered = filterRange(base, d.ResultRange)
	}
	d.DepartmentOptions = Departments(base)
	filtered = FilterDepartments(filtered, q.Departments)

	d.TotalPermits = len(filtered)
	d.DepartmentCounts = DepartmentCounts(filtered)
	d.WorkflowStates = WorkflowStates(filtered, q.WorkflowDepartment)

	summary, err := BuildSummary(filtered).Select(q.Columns)
	if err != nil {
		return Dashboard{}, err
	}
	d.Summary = summary

	if q.Plant != "" {
		ps, err := BuildPlantSummary(filtered, q.Plant)
		switch {
		case errors.Is(err, ErrNoData):
			d.PlantNoData = true
		case err != nil:
			return Dashboard{}, fmt.Errorf("plant summary: %w", err)
		default:
			d.Plant = &ps
		}
	}
	return d, nil
}

// resolveRange returns r normalized, or the bounds of records when r is
// unset. A half-open r takes its missing bound from the data and is never
// swapped: an explicit bound beyond the data leaves a range that matches
// nothing. With no dated records the unset range stays zero and matches
// nothing.
func resolveRange(r DateRange, records []Record) DateRange {
	b, _ := Bounds(records)
	switch {
	case r.IsZero():
		return b
	case r.Start.IsZero():
		return DateRange{Start: b.Start, End: dateOf(r.End)}
	case r.End.IsZero():
		return DateRange{Start: dateOf(r.Start), End: b.End}
	}
	return NewDateRange(r.Start, r.End)
}
