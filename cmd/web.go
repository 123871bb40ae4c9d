package cmd

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot"

	"github.com/zalepa/permits/chart"
	"github.com/zalepa/permits/internal/config"
	"github.com/zalepa/permits/permit"
	"github.com/zalepa/permits/sheet"
)

//go:embed web.html
var htmlContent embed.FS

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the interactive permit dashboard",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newServer(cfg, log).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("serving", zap.String("url", "http://localhost"+srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type server struct {
	cfg      *config.Config
	log      *zap.Logger
	sessions *sessionStore
}

func newServer(cfg *config.Config, log *zap.Logger) *server {
	return &server{cfg: cfg, log: log, sessions: newSessionStore(cfg.MaxSessions)}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/api/datasets", s.handleUpload)
	r.Route("/api/datasets/{id}", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/profile", s.handleProfile)
		r.Get("/export/summary.xlsx", s.handleSummaryExport)
		r.Get("/export/plant.xlsx", s.handlePlantExport)
		r.Get("/export/report.pdf", s.handleReport)
		r.Get("/charts/departments.png", s.handleDepartmentChart)
		r.Get("/charts/workflow.png", s.handleWorkflowChart)
		r.Delete("/", s.handleDelete)
	})
	return r
}

// requestLogger logs one line per request with its outcome.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, _ := htmlContent.ReadFile("web.html")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

type uploadResponse struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Rows           int               `json:"rows"`
	Columns        []string          `json:"columns"`
	Warnings       []string          `json:"warnings,omitempty"`
	Dates          *permit.DateRange `json:"dates,omitempty"`
	Departments    []string          `json:"departments"`
	Plants         []string          `json:"plants"`
	SummaryColumns []string          `json:"summaryColumns"`
}

func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d MB", s.cfg.MaxUploadMB))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("no file uploaded: %w", err))
		return
	}
	defer file.Close()

	var ds permit.Dataset
	if strings.EqualFold(filepath.Ext(hdr.Filename), ".csv") {
		ds, err = sheet.ReadCSV(file)
	} else {
		ds, err = sheet.Read(file, sheet.Options{Sheet: s.cfg.Sheet})
	}
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			writeError(w, http.StatusBadRequest, fmt.Errorf("unreadable spreadsheet: %w", err))
			return
		}
		s.fail(w, r, err)
		return
	}
	snap, err := permit.Normalize(ds)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sess, evicted := s.sessions.add(hdr.Filename, snap)
	if evicted != "" {
		s.log.Info("session evicted", zap.String("id", evicted))
	}
	for _, warn := range snap.Warnings {
		s.log.Warn(warn, zap.String("id", sess.ID), zap.String("file", hdr.Filename))
	}
	s.log.Info("dataset uploaded",
		zap.String("id", sess.ID),
		zap.String("file", hdr.Filename),
		zap.Int("rows", len(snap.Records)))

	resp := uploadResponse{
		ID:             sess.ID,
		Name:           sess.Name,
		Rows:           len(snap.Records),
		Columns:        snap.Columns,
		Warnings:       snap.Warnings,
		Departments:    permit.Departments(snap.Records),
		Plants:         permit.Plants,
		SummaryColumns: permit.SummaryColumns,
	}
	if b, ok := permit.Bounds(snap.Records); ok {
		resp.Dates = &b
	}
	writeJSON(w, http.StatusCreated, resp)
}

// dashboard resolves the session and query of r, writing the error response
// itself when either is invalid.
func (s *server) dashboard(w http.ResponseWriter, r *http.Request) (*session, permit.Dashboard, bool) {
	sess, ok := s.session(w, r)
	if !ok {
		return nil, permit.Dashboard{}, false
	}
	q, err := queryFromValues(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return nil, permit.Dashboard{}, false
	}
	d, err := permit.BuildDashboard(sess.Snap, q)
	if err != nil {
		s.fail(w, r, err)
		return nil, permit.Dashboard{}, false
	}
	return sess, d, true
}

func (s *server) session(w http.ResponseWriter, r *http.Request) (*session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown dataset %q", id))
	}
	return sess, ok
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if _, d, ok := s.dashboard(w, r); ok {
		writeJSON(w, http.StatusOK, d)
	}
}

func (s *server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		writeJSON(w, http.StatusOK, permit.Describe(sess.Snap))
	}
}

func (s *server) handleSummaryExport(w http.ResponseWriter, r *http.Request) {
	_, d, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	s.writeWorkbook(w, r, sheet.SummaryFile, sheet.SummaryWorkbook(d.Summary))
}

func (s *server) handlePlantExport(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("plant") == "" {
		writeError(w, http.StatusBadRequest, errors.New("plant is required"))
		return
	}
	_, d, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	if d.Plant == nil {
		s.fail(w, r, permit.ErrNoData)
		return
	}
	s.writeWorkbook(w, r, sheet.PlantFile, sheet.PlantWorkbook(*d.Plant))
}

func (s *server) writeWorkbook(w http.ResponseWriter, r *http.Request, name string, sh sheet.Sheet) {
	w.Header().Set("Content-Type", sheet.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := sheet.Write(w, sh); err != nil {
		s.log.Error("write workbook", zap.String("file", name), zap.Error(err))
	}
}

func (s *server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess, d, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ReportFile))
	if _, err := chart.Report(w, "Permit Summary - "+sess.Name, d); err != nil {
		s.log.Error("write report", zap.Error(err))
	}
}

func (s *server) handleDepartmentChart(w http.ResponseWriter, r *http.Request) {
	if _, d, ok := s.dashboard(w, r); ok {
		s.writeChart(w, r, func() (*plot.Plot, error) { return chart.DepartmentChart(d.DepartmentCounts) })
	}
}

func (s *server) handleWorkflowChart(w http.ResponseWriter, r *http.Request) {
	if _, d, ok := s.dashboard(w, r); ok {
		s.writeChart(w, r, func() (*plot.Plot, error) {
			return chart.WorkflowChart(d.WorkflowStates, d.WorkflowDepartment)
		})
	}
}

func (s *server) writeChart(w http.ResponseWriter, r *http.Request, build func() (*plot.Plot, error)) {
	p, err := build()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := chart.WritePNG(w, p, chart.PNGWidth, chart.PNGHeight); err != nil {
		s.log.Error("write chart", zap.Error(err))
	}
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.remove(id) {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown dataset %q", id))
		return
	}
	s.log.Info("session deleted", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// fail maps domain errors to HTTP statuses.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, status, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, permit.ErrNoData), errors.Is(err, chart.ErrNoCounts):
		return http.StatusNotFound
	case errors.Is(err, permit.ErrUnknownPlant), errors.Is(err, permit.ErrUnknownColumn), errors.Is(err, errBadDate):
		return http.StatusBadRequest
	case errors.Is(err, permit.ErrMissingColumn), errors.Is(err, sheet.ErrEmptySheet):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
