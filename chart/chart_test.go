package chart

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalepa/permits/permit"
)

func dashboard(t *testing.T, plant string) permit.Dashboard {
	t.Helper()
	cols := []string{permit.ColPermitNumber, permit.ColDepartment, permit.ColResponsibilityAreas, permit.ColWorkflowState, permit.ColCreatedDate}
	rows := []permit.Row{
		{permit.ColPermitNumber: "1", permit.ColDepartment: "CIVIL", permit.ColResponsibilityAreas: "NCU", permit.ColWorkflowState: "CLOSED", permit.ColCreatedDate: "2024-01-01"},
		{permit.ColPermitNumber: "2", permit.ColDepartment: "FIRE", permit.ColResponsibilityAreas: "PP", permit.ColWorkflowState: "EXPIRED", permit.ColCreatedDate: "2024-01-05"},
		{permit.ColPermitNumber: "3", permit.ColDepartment: "CIVIL", permit.ColResponsibilityAreas: "HDPE", permit.ColWorkflowState: "PENDING CLOSURE", permit.ColCreatedDate: "2024-01-09"},
	}
	snap, err := permit.Normalize(permit.Dataset{Columns: cols, Rows: rows})
	require.NoError(t, err)
	d, err := permit.BuildDashboard(snap, permit.Query{Plant: plant})
	require.NoError(t, err)
	return d
}

func TestBarCharts(t *testing.T) {
	counts := []permit.Count{{Name: "CIVIL", Count: 2}, {Name: "FIRE", Count: 1}}

	p, err := DepartmentChart(counts)
	require.NoError(t, err)
	assert.Equal(t, "Department-wise Permit Count", p.Title.Text)
	assert.InDelta(t, 2.3, p.Y.Max, 1e-9)

	p, err = WorkflowChart(counts, "")
	require.NoError(t, err)
	assert.Equal(t, "Workflow State Distribution - All", p.Title.Text)

	_, err = DepartmentChart(nil)
	assert.True(t, errors.Is(err, ErrNoCounts))
}

func TestCountTicks(t *testing.T) {
	for _, tick := range (countTicks{}).Ticks(0, 3) {
		if tick.Label == "" {
			continue
		}
		assert.NotContains(t, tick.Label, ".")
	}
}

func TestWritePNG(t *testing.T) {
	p, err := DepartmentChart([]permit.Count{{Name: "CIVIL", Count: 4}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, p, PNGWidth, PNGHeight))
	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Greater(t, cfg.Width, cfg.Height)
}

func TestReport(t *testing.T) {
	tests := []struct {
		name  string
		plant string
		pages int
	}{
		{"no plant", "", 4},
		{"plant", "NCU", 5},
		{"plant without data", "LLDPE", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := Report(&buf, "Permit Report", dashboard(t, tt.plant))
			require.NoError(t, err)
			assert.Equal(t, tt.pages, n)

			got, err := PageCount(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, tt.pages, got)
		})
	}
}

func TestPageCountInvalid(t *testing.T) {
	_, err := PageCount(bytes.NewReader([]byte("not a pdf")))
	assert.Error(t, err)
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{12, "12"},
		{999, "999"},
		{1000, "1,000"},
		{1234, "1,234"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
		{-9876543, "-9,876,543"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatInt(tt.in))
	}
}
