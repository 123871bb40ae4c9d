package permit

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNoData is returned by BuildPlantSummary when no record matches the
	// selected plant. It is distinct from a table of zeros.
	ErrNoData = errors.New("no data found for selected plant")

	// ErrUnknownPlant is returned for a selector outside Plants.
	ErrUnknownPlant = errors.New("unknown plant")
)

// PlantPP is matched by prefix rather than substring; see matchesPlant.
const PlantPP = "PP"

// Plants lists the plant selectors offered for the plantwise summary.
var Plants = []string{
	"CPP", "HDPE", "HSEF", "IOP ECR", "IOP NCR", "IOP SCR", "LLDPE",
	"NCAU", "NCU", "IOP BAGGING", "OTHERS", PlantPP,
}

// Plant summary headers.
const (
	PlantAreaHeader  = "RESPONSIBILITY AREA"
	PlantDeptHeader  = "DEPARTMENT"
	PlantCountHeader = "Permit Count"
)

// PlantRow is one (area, department) group of a plant summary.
type PlantRow struct {
	Area       string `json:"area"`
	Department string `json:"department"`
	Count      int    `json:"count"`
}

// PlantSummary counts a plant's permits per area and department.
type PlantSummary struct {
	Plant string     `json:"plant"`
	Rows  []PlantRow `json:"rows"`
	Total int        `json:"total"`
}

// matchesPlant selects rows for a plant by their raw responsibility area text.
// "PP" is a case-sensitive prefix match because a substring match would also
// pick up HDPE, LLDPE and CPP rows. Every other plant is a case-insensitive
// substring match.
func matchesPlant(areas, plant string) bool {
	if plant == PlantPP {
		return strings.HasPrefix(areas, PlantPP)
	}
	return strings.Contains(strings.ToUpper(areas), strings.ToUpper(plant))
}

// BuildPlantSummary selects the records of one plant and counts them per
// (area, department). The area is the record's classified Area, except for the
// PP selector where it is forced to "PP". Rows are sorted by area then
// department. An empty selection returns ErrNoData.
func BuildPlantSummary(records []Record, plant string) (PlantSummary, error) {
	if !isPlant(plant) {
		return PlantSummary{}, fmt.Errorf("%w %q", ErrUnknownPlant, plant)
	}

	type key struct{ area, dept string }
	groups := make(map[key]int)
	selected := 0
	for _, rec := range records {
		if !matchesPlant(rec.ResponsibilityAreas, plant) {
			continue
		}
		selected++
		area := string(rec.Area)
		if plant == PlantPP {
			area = PlantPP
		}
		if rec.Department == "" {
			continue
		}
		groups[key{area, rec.Department}]++
	}
	if selected == 0 {
		return PlantSummary{}, ErrNoData
	}

	ps := PlantSummary{Plant: plant}
	for k, n := range groups {
		ps.Rows = append(ps.Rows, PlantRow{Area: k.area, Department: k.dept, Count: n})
		ps.Total += n
	}
	sort.Slice(ps.Rows, func(i, j int) bool {
		if ps.Rows[i].Area != ps.Rows[j].Area {
			return ps.Rows[i].Area < ps.Rows[j].Area
		}
		return ps.Rows[i].Department < ps.Rows[j].Department
	})
	return ps, nil
}

func isPlant(plant string) bool {
	for _, p := range Plants {
		if p == plant {
			return true
		}
	}
	return false
}

// Table lays the plant summary out with a trailing TOTAL row whose department
// is blank.
func (ps PlantSummary) Table() Table {
	t := Table{Header: []string{PlantAreaHeader, PlantDeptHeader, PlantCountHeader}}
	for _, r := range ps.Rows {
		t.Rows = append(t.Rows, []any{r.Area, r.Department, r.Count})
	}
	t.Rows = append(t.Rows, []any{TotalLabel, "", ps.Total})
	return t
}
