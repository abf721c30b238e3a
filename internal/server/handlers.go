package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/ingest"
	"github.com/Veraticus/spice-categorizer/internal/report"
	"github.com/Veraticus/spice-categorizer/internal/session"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error            string   `json:"error"`
	ErrorDescription string   `json:"error_description"`
	Missing          []string `json:"missing,omitempty"`
}

// CategoriesResponse lists the vocabulary offered to the classifier.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: s.orchestrator.Categories()})
}

// handleCategorize handles POST /api/categorize with a multipart "file".
func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	if !s.runMu.TryLock() {
		writeJSONError(w, http.StatusConflict, "run_in_progress", common.ErrRunInProgress.Error())
		return
	}
	defer s.runMu.Unlock()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "File is required")
		return
	}
	defer func() { _ = file.Close() }()

	table, err := ingest.Read(header.Filename, file)
	if err != nil {
		if errors.Is(err, common.ErrUnsupportedFile) {
			writeJSONError(w, http.StatusBadRequest, "unsupported_file", err.Error())
			return
		}
		writeJSONError(w, http.StatusBadRequest, "invalid_file", err.Error())
		return
	}

	txns, err := ingest.Normalize(table)
	if err != nil {
		var schemaErr *common.SchemaError
		if errors.As(err, &schemaErr) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            "schema_error",
				ErrorDescription: schemaErr.Error(),
				Missing:          schemaErr.Missing,
			})
			return
		}
		writeJSONError(w, http.StatusBadRequest, "invalid_file", err.Error())
		return
	}

	started := s.now()
	records, err := s.orchestrator.Run(r.Context(), txns, nil)
	if err != nil {
		s.logger.Warn("categorization aborted", "source", header.Filename, "error", err)
		writeJSONError(w, http.StatusServiceUnavailable, "canceled", err.Error())
		return
	}

	run := session.NewRun(header.Filename, records, started)
	s.store.Replace(run)

	s.logger.Info("categorization finished",
		"run_id", run.ID,
		"source", run.Source,
		"records", len(records),
		"duration", time.Since(started))

	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleLatestRun(w http.ResponseWriter, _ *http.Request) {
	run, ok := s.store.Latest()
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "No categorization run yet")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleExport streams the latest run as a CSV download.
func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	run, ok := s.store.Latest()
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "No categorization run yet")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", run.ExportFilename()))
	w.WriteHeader(http.StatusOK)
	if err := report.WriteCSV(w, run.Records); err != nil {
		s.logger.Error("failed to write export", "run_id", run.ID, "error", err)
	}
}
