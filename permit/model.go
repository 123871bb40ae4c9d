package permit

import (
	"fmt"
	"strconv"
	"time"
)

// Column names read from the permit sheet.
const (
	ColPermitNumber        = "Permit Number"
	ColDepartment          = "Department"
	ColResponsibilityAreas = "Responsibility Areas"
	ColWorkflowState       = "Workflow State"
	ColCreatedDate         = "Created Date"
)

// requiredColumns must be present for a dataset to be usable at all.
var requiredColumns = []string{ColDepartment, ColResponsibilityAreas, ColWorkflowState}

// Row is one raw permit row keyed by column name. Values are string,
// time.Time, a number, or nil. An absent key is the same as nil.
type Row map[string]any

// Dataset is a raw permit sheet: ordered column names plus rows.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the header contains name.
func (d Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Record is a normalized permit row.
type Record struct {
	PermitNumber        string
	Department          string // upper-cased
	ResponsibilityAreas string
	WorkflowState       string
	CreatedDate         time.Time // zero when missing or unparseable
	Area                Area
	Status              Status
	Closed              bool
	Fields              Row
}

// HasCreatedDate reports whether the record carries a usable creation date.
func (r Record) HasCreatedDate() bool {
	return !r.CreatedDate.IsZero()
}

// Snapshot is the normalized form of one loaded dataset. It is never mutated
// after Normalize returns.
type Snapshot struct {
	Columns  []string
	Records  []Record
	HasDates bool
	Warnings []string
}

// Table is a rectangular result ready for display or export.
type Table struct {
	Header []string `json:"header"`
	Rows   [][]any  `json:"rows"`
}

// text coerces a raw cell value to its textual form. Missing values become "".
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
