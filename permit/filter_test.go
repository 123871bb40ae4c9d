package permit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func dated(num string, y, day int) Record {
	return Record{PermitNumber: num, CreatedDate: date(y, time.June, day)}
}

func numbers(records []Record) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.PermitNumber)
	}
	return out
}

func TestFilterDateRangeInclusive(t *testing.T) {
	records := []Record{
		dated("before", 2024, 9),
		dated("start", 2024, 10),
		dated("middle", 2024, 15),
		dated("end", 2024, 20),
		dated("after", 2024, 21),
		{PermitNumber: "undated"},
	}
	got := FilterDateRange(records, NewDateRange(date(2024, 6, 10), date(2024, 6, 20)))
	assert.Equal(t, []string{"start", "middle", "end"}, numbers(got))
}

func TestFilterDateRangeIgnoresTimeOfDay(t *testing.T) {
	rec := Record{PermitNumber: "late", CreatedDate: date(2024, 6, 20).Add(23 * time.Hour)}
	r := DateRange{Start: date(2024, 6, 20), End: date(2024, 6, 20)}
	assert.Len(t, FilterDateRange([]Record{rec}, r), 1)
}

func TestFilterDateRangeReversedBounds(t *testing.T) {
	records := []Record{dated("a", 2024, 10), dated("b", 2024, 30)}
	r := DateRange{Start: date(2024, 6, 20), End: date(2024, 6, 1)}
	assert.Equal(t, []string{"a"}, numbers(FilterDateRange(records, r)))
	assert.Equal(t, NewDateRange(date(2024, 6, 1), date(2024, 6, 20)), NewDateRange(r.Start, r.End))
}

func TestBounds(t *testing.T) {
	_, ok := Bounds([]Record{{PermitNumber: "undated"}})
	assert.False(t, ok)

	b, ok := Bounds([]Record{dated("a", 2024, 12), {}, dated("b", 2024, 3), dated("c", 2024, 28)})
	assert.True(t, ok)
	assert.Equal(t, date(2024, 6, 3), b.Start)
	assert.Equal(t, date(2024, 6, 28), b.End)
}

func TestFilterDepartments(t *testing.T) {
	records := []Record{
		{PermitNumber: "1", Department: "CIVIL"},
		{PermitNumber: "2", Department: "FIRE"},
		{PermitNumber: "3", Department: "PROCESS"},
	}
	assert.Equal(t, []string{"1", "2", "3"}, numbers(FilterDepartments(records, nil)))
	assert.Equal(t, []string{"1", "3"}, numbers(FilterDepartments(records, []string{"civil", " Process "})))
	assert.Empty(t, FilterDepartments(records, []string{"HSEF"}))
}

func TestDepartments(t *testing.T) {
	records := []Record{{Department: "FIRE"}, {Department: ""}, {Department: "CIVIL"}, {Department: "FIRE"}}
	assert.Equal(t, []string{"FIRE", "CIVIL"}, Departments(records))
}
