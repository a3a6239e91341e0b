package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"budgetu/pkg/config"
	"budgetu/pkg/decoder"
	"budgetu/pkg/export"
	"budgetu/pkg/filter"
	"budgetu/pkg/mapper"
	"budgetu/pkg/pipeline"
	"budgetu/pkg/table"
)

const previewRows = 10

// Server handles HTTP requests for budget file analysis.
type Server struct {
	config   *config.Config
	logger   *log.Logger
	mux      *http.ServeMux
	template *template.Template
	decoder  *decoder.Decoder
	exports  sync.Map
}

// New creates a new HTTP server
func New(cfg *config.Config, logger *log.Logger) *Server {
	tmpl := template.Must(template.ParseGlob("templates/*.html"))
	return &Server{
		config:   cfg,
		logger:   logger,
		mux:      http.NewServeMux(),
		template: tmpl,
		decoder:  decoder.New(logger),
	}
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	s.setupRoutes()
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) setupRoutes() {
	// homepage
	s.mux.HandleFunc("/", s.withLogging(s.handleHome))

	// column discovery for the mapping form
	s.mux.HandleFunc("/api/columns", s.withLogging(s.handleColumns))

	// consolidated summarize endpoint
	s.mux.HandleFunc("/api/process", s.withLogging(s.handleProcess))
	s.mux.HandleFunc("/api/files/", s.withLogging(s.handleFiles))
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if err := s.template.ExecuteTemplate(w, "index.html", nil); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to render page", err)
		return
	}
}

// ---------------- column discovery handler ----------------

// handleColumns decodes an upload and returns its column names plus a raw
// preview, so the client can offer the three column selections.
func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	t, err := s.decoder.Decode(data, filename)
	if err != nil {
		s.respondPipelineError(w, r, err)
		return
	}

	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"columns": t.Columns,
		"rows":    len(t.Rows),
		"preview": rawPreview(t),
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// ---------------- consolidated handler ----------------

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	dateCol := r.FormValue("date_col")
	amountCol := r.FormValue("amount_col")
	if dateCol == "" || amountCol == "" {
		s.respondError(w, r, http.StatusBadRequest, "date_col and amount_col required", nil)
		return
	}

	opts := pipeline.Options{
		Mapping: mapper.Mapping{
			DateColumn:     dateCol,
			AmountColumn:   amountCol,
			CategoryColumn: r.FormValue("category_col"),
		},
		Start:      r.FormValue("start"),
		End:        r.FormValue("end"),
		Categories: formCategories(r),
	}

	t, err := s.decoder.Decode(data, filename)
	if err != nil {
		s.respondPipelineError(w, r, err)
		return
	}

	result, err := pipeline.Run(t, opts)
	if err != nil {
		s.respondPipelineError(w, r, err)
		return
	}

	// cache the export for the download link
	exportName := strings.TrimSuffix(filename, filepath.Ext(filename)) + "-filtered.csv"
	s.exports.Store(exportName, export.CSV(t, result.Filtered))

	s.logger.Info("processed upload", "file", filename, "rows", len(t.Rows), "filtered", len(result.Filtered))

	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"file":        exportName,
		"kpi":         result.Summary.KPI,
		"by_category": result.Summary.ByCategory,
		"by_month":    result.Summary.ByMonth,
		"range": map[string]string{
			"start": result.Spec.Start.Format("2006-01-02"),
			"end":   result.Spec.End.Format("2006-01-02"),
		},
		"categories": mapper.Categories(result.Rows),
		"preview":    filteredPreview(t, result.Filtered),
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// ---------------- file download handler ----------------

// handleFiles serves the filtered CSV produced by a previous process call.
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	filename := strings.TrimPrefix(r.URL.Path, "/api/files/")
	if filename == "" {
		s.respondError(w, r, http.StatusBadRequest, "filename required", nil)
		return
	}

	value, ok := s.exports.Load(filename)
	if !ok {
		s.respondError(w, r, http.StatusNotFound, "file not found", nil)
		return
	}
	data, ok := value.([]byte)
	if !ok {
		s.respondError(w, r, http.StatusInternalServerError, "internal type assertion error", nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to write csv response", "err", err)
	}
}

// --- helpers ---

// PreviewRow pairs one original record with its derived fields for display.
type PreviewRow struct {
	Record   []string `json:"record"`
	Date     string   `json:"date"`
	Amount   string   `json:"amount"`
	Category string   `json:"category"`
}

func rawPreview(t *table.Table) [][]string {
	n := len(t.Rows)
	if n > previewRows {
		n = previewRows
	}
	preview := make([][]string, n)
	for i := 0; i < n; i++ {
		preview[i] = t.Rows[i]
	}
	return preview
}

func filteredPreview(t *table.Table, rows []table.NormalizedRow) []PreviewRow {
	n := len(rows)
	if n > previewRows {
		n = previewRows
	}
	preview := make([]PreviewRow, n)
	for i := 0; i < n; i++ {
		r := rows[i]
		amount := ""
		if r.Amount.Valid {
			amount = r.Amount.Decimal.String()
		}
		preview[i] = PreviewRow{
			Record:   t.Rows[r.Index],
			Date:     r.Date.String(),
			Amount:   amount,
			Category: r.Category,
		}
	}
	return preview
}

// readUpload pulls the multipart file out of the request. On failure it has
// already written the error response.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read file", err)
		return nil, "", false
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to read file", err)
		return nil, "", false
	}
	return data, header.Filename, true
}

func formCategories(r *http.Request) []string {
	if values, ok := r.Form["categories"]; ok && len(values) > 0 {
		return values
	}
	return nil
}

// respondPipelineError maps the pipeline error taxonomy onto HTTP responses.
// An empty filter result is a warning the user can act on, not a fault.
func (s *Server) respondPipelineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, filter.ErrNoRows):
		if werr := s.writeJSON(w, http.StatusOK, map[string]string{
			"status":  "empty",
			"warning": err.Error(),
		}); werr != nil {
			s.logger.Warn("failed to write json response", "err", werr)
		}
	case errors.Is(err, decoder.ErrDecode),
		errors.Is(err, decoder.ErrEmptyTable),
		errors.Is(err, filter.ErrInvalidDateRange):
		s.respondError(w, r, http.StatusBadRequest, err.Error(), nil)
	default:
		s.respondError(w, r, http.StatusInternalServerError, "internal server error", err)
	}
}

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// withLogging wraps a handler to log request start/end and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
			}
		}()
		next(w, r)
	}
}
