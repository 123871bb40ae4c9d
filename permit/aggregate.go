package permit

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownColumn is returned by Summary.Select for a column outside
// SummaryColumns.
var ErrUnknownColumn = errors.New("unknown summary column")

// Summary column labels.
const (
	ColExpired        = "EXPIRED"
	ColPendingClosure = "PENDING CLOSURE"
	ColClosed         = "CLOSED"

	TotalLabel = "TOTAL"
	AreaHeader = "RESPONSIBILITY AREAS"
)

// DepartmentColumns are the department columns of the summary, in display
// order. Departments outside this list are not shown in the summary.
var DepartmentColumns = []string{
	"CES ELECTRICAL", "CIVIL", "FIRE", "HSEF", "INSTRUMENTATION", "MECHANICAL", "PROCESS",
}

// SummaryColumns is the full, fixed column set of the composite summary.
var SummaryColumns = append(append([]string(nil), DepartmentColumns...),
	ColExpired, ColPendingClosure, ColClosed)

// Count is one labelled group size.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Label formats the count the way charts annotate slices: "<name> (<count>)".
func (c Count) Label() string {
	return fmt.Sprintf("%s (%d)", c.Name, c.Count)
}

// countBy groups records by key, skipping blank keys. Groups are ordered by
// descending size; equal sizes keep first-occurrence order.
func countBy(records []Record, key func(Record) string) []Count {
	index := make(map[string]int)
	var counts []Count
	for _, rec := range records {
		k := key(rec)
		if k == "" {
			continue
		}
		i, ok := index[k]
		if !ok {
			i = len(counts)
			index[k] = i
			counts = append(counts, Count{Name: k})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// DepartmentCounts counts permits per department.
func DepartmentCounts(records []Record) []Count {
	return countBy(records, func(r Record) string { return r.Department })
}

// WorkflowStates counts permits per raw workflow state, optionally restricted
// to one department. dept "" or "All" means every department.
func WorkflowStates(records []Record, dept string) []Count {
	dept = strings.TrimSpace(dept)
	if dept != "" && !strings.EqualFold(dept, "All") {
		records = FilterDepartments(records, []string{dept})
	}
	return countBy(records, func(r Record) string { return r.WorkflowState })
}

// SummaryRow is one area's counts, aligned with Summary.Columns.
type SummaryRow struct {
	Area   string `json:"area"`
	Values []int  `json:"values"`
}

// Summary is the Area x (Department, Status, Closed) cross-tabulation.
type Summary struct {
	Columns []string     `json:"columns"`
	Rows    []SummaryRow `json:"rows"`
	Total   SummaryRow   `json:"total"`
}

// BuildSummary builds the composite summary. Three partial tables are built
// independently (area x department, area x status, area x closed) and merged
// on area with zero for missing cells. Every column of SummaryColumns is
// present even when the data has none of it. Rows are sorted by area name;
// Total sums every column over all rows.
func BuildSummary(records []Record) Summary {
	depts := make(map[Area]map[string]int)
	statuses := make(map[Area]map[string]int)
	closed := make(map[Area]int)

	for _, rec := range records {
		if rec.Department != "" {
			bump(depts, rec.Area, rec.Department)
		}
		if rec.Status != StatusNone {
			bump(statuses, rec.Area, string(rec.Status))
		}
		if rec.Closed {
			closed[rec.Area]++
		} else if _, ok := closed[rec.Area]; !ok {
			closed[rec.Area] = 0
		}
	}

	keys := make(map[Area]bool)
	for a := range depts {
		keys[a] = true
	}
	for a := range statuses {
		keys[a] = true
	}
	for a := range closed {
		keys[a] = true
	}
	areas := make([]string, 0, len(keys))
	for a := range keys {
		areas = append(areas, string(a))
	}
	sort.Strings(areas)

	s := Summary{
		Columns: append([]string(nil), SummaryColumns...),
		Total:   SummaryRow{Area: TotalLabel, Values: make([]int, len(SummaryColumns))},
	}
	for _, name := range areas {
		a := Area(name)
		row := SummaryRow{Area: name, Values: make([]int, len(SummaryColumns))}
		for i, col := range SummaryColumns {
			switch col {
			case ColExpired, ColPendingClosure:
				row.Values[i] = statuses[a][col]
			case ColClosed:
				row.Values[i] = closed[a]
			default:
				row.Values[i] = depts[a][col]
			}
			s.Total.Values[i] += row.Values[i]
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

func bump(m map[Area]map[string]int, a Area, col string) {
	if m[a] == nil {
		m[a] = make(map[string]int)
	}
	m[a][col]++
}

// Select restricts the summary to cols, in the given order. TOTAL values are
// taken from the full table, so they remain the column sums. An empty cols
// keeps every column.
func (s Summary) Select(cols []string) (Summary, error) {
	if len(cols) == 0 {
		return s, nil
	}
	idx := make([]int, len(cols))
	for i, c := range cols {
		j := s.columnIndex(c)
		if j < 0 {
			return Summary{}, fmt.Errorf("%w %q", ErrUnknownColumn, c)
		}
		idx[i] = j
	}
	pick := func(r SummaryRow) SummaryRow {
		out := SummaryRow{Area: r.Area, Values: make([]int, len(idx))}
		for i, j := range idx {
			out.Values[i] = r.Values[j]
		}
		return out
	}
	sel := Summary{
		Columns: append([]string(nil), cols...),
		Total:   pick(s.Total),
	}
	for _, r := range s.Rows {
		sel.Rows = append(sel.Rows, pick(r))
	}
	return sel, nil
}

// Value returns the cell for (area, col). area may be TotalLabel.
func (s Summary) Value(area, col string) (int, bool) {
	j := s.columnIndex(col)
	if j < 0 {
		return 0, false
	}
	if area == TotalLabel {
		return s.Total.Values[j], true
	}
	for _, r := range s.Rows {
		if r.Area == area {
			return r.Values[j], true
		}
	}
	return 0, false
}

func (s Summary) columnIndex(col string) int {
	for i, c := range s.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Table lays the summary out as rows of area label followed by counts, with
// the TOTAL row last.
func (s Summary) Table() Table {
	t := Table{Header: append([]string{AreaHeader}, s.Columns...)}
	for _, r := range append(append([]SummaryRow(nil), s.Rows...), s.Total) {
		row := make([]any, 0, len(r.Values)+1)
		row = append(row, r.Area)
		for _, v := range r.Values {
			row = append(row, v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
