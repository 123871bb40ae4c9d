package permit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrMissingColumn is returned by Normalize when a column the core cannot
// work without is absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// dateLayouts are tried in order against text creation dates. Day-first and
// month-first slash layouts are ambiguous; month-first wins, as it does in
// the spreadsheets this tool is fed.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"02-Jan-2006",
	"02-Jan-06",
	"Jan 2, 2006",
	"2 January 2006",
	"01-02-06",
	"02-01-2006",
	"2006/01/02",
}

// maxSerial is the spreadsheet serial of 9999-12-31, the last date a
// workbook can hold.
const maxSerial = 2958465

// Normalize classifies every row of ds and parses its creation date. Row-level
// problems never fail the run: an unparseable date is treated as missing and
// counted in a warning. Only a dataset missing Department, Workflow State or
// Responsibility Areas is rejected.
func Normalize(ds Dataset) (Snapshot, error) {
	for _, col := range requiredColumns {
		if !ds.HasColumn(col) {
			return Snapshot{}, fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
	}

	snap := Snapshot{
		Columns:  append([]string(nil), ds.Columns...),
		Records:  make([]Record, 0, len(ds.Rows)),
		HasDates: ds.HasColumn(ColCreatedDate),
	}
	if !snap.HasDates {
		snap.Warnings = append(snap.Warnings,
			fmt.Sprintf("%q column not found; date filtering skipped", ColCreatedDate))
	}

	badDates := 0
	for _, row := range ds.Rows {
		rec := normalizeRow(row)
		if snap.HasDates && !rec.HasCreatedDate() && text(row[ColCreatedDate]) != "" {
			badDates++
		}
		snap.Records = append(snap.Records, rec)
	}
	if badDates > 0 {
		snap.Warnings = append(snap.Warnings,
			fmt.Sprintf("%d rows have an unparseable %q and are treated as undated", badDates, ColCreatedDate))
	}
	return snap, nil
}

func normalizeRow(row Row) Record {
	fields := make(Row, len(row))
	for k, v := range row {
		fields[k] = v
	}
	state := row[ColWorkflowState]
	created, _ := ParseDate(row[ColCreatedDate])
	return Record{
		PermitNumber:        strings.TrimSpace(text(row[ColPermitNumber])),
		Department:          strings.ToUpper(strings.TrimSpace(text(row[ColDepartment]))),
		ResponsibilityAreas: text(row[ColResponsibilityAreas]),
		WorkflowState:       text(state),
		CreatedDate:         created,
		Area:                ClassifyArea(row[ColResponsibilityAreas]),
		Status:              ClassifyStatus(state),
		Closed:              IsClosed(state),
		Fields:              fields,
	}
}

// ParseDate converts a raw cell value to a calendar date at UTC midnight.
// Numbers, and text holding only a number, are read as spreadsheet serials
// in the 1900 date system. It reports false for missing values and text that
// matches no known layout.
func ParseDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return dateOf(x), true
	case float64:
		return serialDate(x)
	case int:
		return serialDate(float64(x))
	case int64:
		return serialDate(float64(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return dateOf(t), true
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return serialDate(f)
		}
	}
	return time.Time{}, false
}

func serialDate(serial float64) (time.Time, bool) {
	if !(serial >= 1 && serial <= maxSerial) {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return dateOf(t), true
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
