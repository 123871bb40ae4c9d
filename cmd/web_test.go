package cmd

import (
	"bytes"
	"encoding/json"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/zalepa/permits/internal/config"
	"github.com/zalepa/permits/permit"
	"github.com/zalepa/permits/sheet"
)

func testServer(t *testing.T) (*server, http.Handler) {
	t.Helper()
	c := config.Default()
	c.MaxSessions = 2
	s := newServer(c, zap.NewNop())
	return s, s.routes()
}

func upload(t *testing.T, h http.Handler, name string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func uploadCSV(t *testing.T, h http.Handler) uploadResponse {
	t.Helper()
	rec := upload(t, h, "permits.csv", []byte(permitsCSV))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestIndex(t *testing.T) {
	_, h := testServer(t)
	rec := get(h, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Permit Dashboard")
}

func TestUpload(t *testing.T) {
	_, h := testServer(t)
	resp := uploadCSV(t, h)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "permits.csv", resp.Name)
	assert.Equal(t, 4, resp.Rows)
	assert.Equal(t, []string{"CIVIL", "FIRE", "PROCESS"}, resp.Departments)
	assert.Equal(t, permit.Plants, resp.Plants)
	require.NotNil(t, resp.Dates)
	assert.Equal(t, "2024-01-01", resp.Dates.Start.Format(dayLayout))
}

func TestUploadXLSX(t *testing.T) {
	_, h := testServer(t)
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow(sheet.DefaultSheet, "A1", &[]any{permit.ColDepartment, permit.ColResponsibilityAreas, permit.ColWorkflowState}))
	require.NoError(t, f.SetSheetRow(sheet.DefaultSheet, "A2", &[]any{"FIRE", "IOP NCR", "EXPIRED"}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rec := upload(t, h, "permits.xlsx", buf.Bytes())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Rows)
	assert.Nil(t, resp.Dates)
	assert.Len(t, resp.Warnings, 1)
}

func TestUploadErrors(t *testing.T) {
	_, h := testServer(t)

	rec := upload(t, h, "bad.csv", []byte("Department,Workflow State\nCIVIL,OPEN\n"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), permit.ColResponsibilityAreas)

	rec = upload(t, h, "bad.xlsx", []byte("not a workbook"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", strings.NewReader(""))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboard(t *testing.T) {
	_, h := testServer(t)
	id := uploadCSV(t, h).ID

	rec := get(h, "/api/datasets/"+id+"/dashboard?dept=CIVIL&plant=PP&workflow_dept=CIVIL")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var d permit.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, 2, d.TotalPermits)
	assert.Equal(t, []permit.Count{{Name: "CIVIL", Count: 2}}, d.DepartmentCounts)
	require.NotNil(t, d.Plant)
	assert.Equal(t, 1, d.Plant.Total)
	assert.Equal(t, permit.TotalLabel, d.Summary.Total.Area)
}

func TestDashboardErrors(t *testing.T) {
	_, h := testServer(t)
	id := uploadCSV(t, h).ID

	tests := []struct {
		path string
		code int
	}{
		{"/api/datasets/nope/dashboard", http.StatusNotFound},
		{"/api/datasets/" + id + "/dashboard?start=yesterday", http.StatusBadRequest},
		{"/api/datasets/" + id + "/dashboard?plant=REFINERY", http.StatusBadRequest},
		{"/api/datasets/" + id + "/dashboard?col=NOPE", http.StatusBadRequest},
		{"/api/datasets/" + id + "/export/plant.xlsx", http.StatusBadRequest},
		{"/api/datasets/" + id + "/export/plant.xlsx?plant=LLDPE", http.StatusNotFound},
		{"/api/datasets/" + id + "/charts/departments.png?dept=NOBODY", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(h, tt.path)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestProfile(t *testing.T) {
	_, h := testServer(t)
	id := uploadCSV(t, h).ID

	rec := get(h, "/api/datasets/"+id+"/profile")
	require.Equal(t, http.StatusOK, rec.Code)
	var p permit.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 4, p.Rows)
	assert.Len(t, p.Preview.Rows, 4)
	assert.Equal(t, 3, p.PerDepartment.Groups)
}

func TestExports(t *testing.T) {
	_, h := testServer(t)
	id := uploadCSV(t, h).ID

	rec := get(h, "/api/datasets/"+id+"/export/summary.xlsx?col=CIVIL&col=CLOSED")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, sheet.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), sheet.SummaryFile)

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet.SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{permit.AreaHeader, "CIVIL", "CLOSED"}, rows[0])

	rec = get(h, "/api/datasets/"+id+"/export/plant.xlsx?plant=NCU")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), sheet.PlantFile)

	rec = get(h, "/api/datasets/"+id+"/export/report.pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestCharts(t *testing.T) {
	_, h := testServer(t)
	id := uploadCSV(t, h).ID

	for _, name := range []string{"departments", "workflow"} {
		rec := get(h, "/api/datasets/"+id+"/charts/"+name+".png")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		_, err := png.DecodeConfig(rec.Body)
		assert.NoError(t, err)
	}
}

func TestDeleteAndEviction(t *testing.T) {
	s, h := testServer(t)
	first := uploadCSV(t, h).ID
	uploadCSV(t, h)
	uploadCSV(t, h)
	assert.Equal(t, 2, s.sessions.count())
	assert.Equal(t, http.StatusNotFound, get(h, "/api/datasets/"+first+"/profile").Code)

	second := uploadCSV(t, h).ID
	req := httptest.NewRequest(http.MethodDelete, "/api/datasets/"+second, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/datasets/"+second, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
