package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zalepa/permits/permit"
	"github.com/zalepa/permits/sheet"
)

const dayLayout = "2006-01-02"

var errBadDate = errors.New("invalid date, want YYYY-MM-DD")

// queryFlags are the dashboard selections shared by summary and export.
type queryFlags struct {
	start, end             string
	resultStart, resultEnd string
	depts                  []string
	workflowDept           string
	columns                []string
	plant                  string
}

func (f *queryFlags) bind(c *cobra.Command) {
	fs := c.Flags()
	fs.StringVar(&f.start, "start", "", "global range start date (YYYY-MM-DD)")
	fs.StringVar(&f.end, "end", "", "global range end date (YYYY-MM-DD)")
	fs.StringVar(&f.resultStart, "result-start", "", "result range start date (YYYY-MM-DD)")
	fs.StringVar(&f.resultEnd, "result-end", "", "result range end date (YYYY-MM-DD)")
	fs.StringSliceVar(&f.depts, "dept", nil, "keep only these departments (repeatable)")
	fs.StringVar(&f.workflowDept, "workflow-dept", "All", "department for the workflow breakdown")
	fs.StringSliceVar(&f.columns, "columns", nil, "summary columns to show (default all)")
	fs.StringVar(&f.plant, "plant", "", "plant for the plantwise summary: "+strings.Join(permit.Plants, ", "))
}

func (f *queryFlags) query() (permit.Query, error) {
	return buildQuery(f.start, f.end, f.resultStart, f.resultEnd, f.depts, f.workflowDept, f.columns, f.plant)
}

// queryFromValues reads the dashboard selections from URL query parameters.
func queryFromValues(v url.Values) (permit.Query, error) {
	return buildQuery(v.Get("start"), v.Get("end"), v.Get("result_start"), v.Get("result_end"),
		v["dept"], v.Get("workflow_dept"), v["col"], v.Get("plant"))
}

func buildQuery(start, end, resultStart, resultEnd string, depts []string, workflowDept string, columns []string, plant string) (permit.Query, error) {
	global, err := rangeOf(start, end)
	if err != nil {
		return permit.Query{}, err
	}
	result, err := rangeOf(resultStart, resultEnd)
	if err != nil {
		return permit.Query{}, err
	}
	return permit.Query{
		Global:             global,
		Result:             result,
		Departments:        nonEmpty(depts),
		WorkflowDepartment: strings.TrimSpace(workflowDept),
		Columns:            nonEmpty(columns),
		Plant:              strings.TrimSpace(plant),
	}, nil
}

// rangeOf parses an optional pair of dates. Either bound may be left empty
// and is then filled from the data.
func rangeOf(start, end string) (permit.DateRange, error) {
	s, err := parseDay(start)
	if err != nil {
		return permit.DateRange{}, err
	}
	e, err := parseDay(end)
	if err != nil {
		return permit.DateRange{}, err
	}
	if !s.IsZero() && !e.IsZero() {
		return permit.NewDateRange(s, e), nil
	}
	return permit.DateRange{Start: s, End: e}, nil
}

func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", errBadDate, s)
	}
	return t, nil
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// loadSnapshot reads and normalizes a permit sheet, logging data warnings.
func loadSnapshot(path string) (permit.Snapshot, error) {
	ds, err := sheet.ReadFile(path, sheet.Options{Sheet: cfg.Sheet})
	if err != nil {
		return permit.Snapshot{}, err
	}
	snap, err := permit.Normalize(ds)
	if err != nil {
		return permit.Snapshot{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	for _, w := range snap.Warnings {
		logger.Warn(w, zap.String("file", path))
	}
	logger.Debug("sheet loaded",
		zap.String("file", path),
		zap.Int("rows", len(snap.Records)),
		zap.Bool("dates", snap.HasDates))
	return snap, nil
}
