package permit

import (
	"github.com/montanaflynn/stats"
)

// PreviewRows is how many leading rows Describe keeps as a preview.
const PreviewRows = 5

// ColumnProfile summarizes one raw column.
type ColumnProfile struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Unique int    `json:"unique"`
	Top    string `json:"top"`
	Freq   int    `json:"freq"`
}

// CountStats describes a distribution of group sizes.
type CountStats struct {
	Groups int     `json:"groups"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Profile is a quick look at a loaded dataset.
type Profile struct {
	Rows          int             `json:"rows"`
	Preview       Table           `json:"preview"`
	Columns       []ColumnProfile `json:"columns"`
	Created       *DateRange      `json:"created,omitempty"`
	PerDepartment CountStats      `json:"perDepartment"`
	PerArea       CountStats      `json:"perArea"`
}

// Describe profiles every column of the snapshot (non-missing count, distinct
// values, most frequent value) and the spread of permits per department and
// per area.
func Describe(snap Snapshot) Profile {
	p := Profile{
		Rows:    len(snap.Records),
		Preview: Table{Header: append([]string(nil), snap.Columns...)},
	}
	for i, rec := range snap.Records {
		if i == PreviewRows {
			break
		}
		row := make([]any, len(snap.Columns))
		for j, col := range snap.Columns {
			row[j] = rec.Fields[col]
		}
		p.Preview.Rows = append(p.Preview.Rows, row)
	}

	for _, col := range snap.Columns {
		p.Columns = append(p.Columns, profileColumn(snap.Records, col))
	}
	if b, ok := Bounds(snap.Records); ok {
		p.Created = &b
	}
	p.PerDepartment = countStats(DepartmentCounts(snap.Records))
	p.PerArea = countStats(countBy(snap.Records, func(r Record) string { return string(r.Area) }))
	return p
}

func profileColumn(records []Record, col string) ColumnProfile {
	cp := ColumnProfile{Name: col}
	freq := make(map[string]int)
	for _, rec := range records {
		v := text(rec.Fields[col])
		if v == "" {
			continue
		}
		cp.Count++
		freq[v]++
		// Ties go to the value seen first.
		if freq[v] > cp.Freq {
			cp.Top, cp.Freq = v, freq[v]
		}
	}
	cp.Unique = len(freq)
	return cp
}

func countStats(counts []Count) CountStats {
	cs := CountStats{Groups: len(counts)}
	if len(counts) == 0 {
		return cs
	}
	data := make(stats.Float64Data, len(counts))
	for i, c := range counts {
		data[i] = float64(c.Count)
	}
	// Errors only arise for empty input, handled above.
	cs.Mean, _ = data.Mean()
	cs.Median, _ = data.Median()
	cs.StdDev, _ = data.StandardDeviation()
	cs.Min, _ = data.Min()
	cs.Max, _ = data.Max()
	return cs
}
