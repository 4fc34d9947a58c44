package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/logiprofit/freightsync/internal/engine"
	"github.com/logiprofit/freightsync/internal/freight"
	"github.com/logiprofit/freightsync/internal/tabular"
)

// readUpload pulls the uploaded file out of the multipart form. The body is
// capped at the configured maximum before parsing so an oversized upload
// fails fast instead of buffering.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, fmt.Errorf("%w (limit %d bytes)", engine.ErrFileTooLarge, maxErr.Limit)
		}
		return "", nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errors.New("no file provided")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}

	return header.Filename, data, nil
}

// uploadStatus maps readUpload failures. An oversized body is 413;
// anything else wrong with the form is a plain bad request.
func uploadStatus(err error) int {
	if errors.Is(err, engine.ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// mappingIDParam parses the mapping ID from the URL.
func mappingIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "mappingID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid mapping ID %q", raw)
	}
	return id, nil
}

// handleImport ingests an uploaded file through the configured mapping and
// upserts the resulting freight records.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	mappingID, err := mappingIDParam(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	fileName, data, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err, uploadStatus(err))
		return
	}

	result, err := s.service.Import(r.Context(), tenantID(r), fileName, data, mappingID)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, result)
}

// handlePreview maps the first rows of an uploaded file without writing
// anything, so the caller can verify the mapping before importing.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	mappingID, err := mappingIDParam(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	_, data, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err, uploadStatus(err))
		return
	}

	result, err := s.service.Preview(r.Context(), tenantID(r), data, mappingID)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, result)
}

// handleReconcile compares an uploaded file against the stored freight
// records and reports every difference without changing anything.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	mappingID, err := mappingIDParam(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	_, data, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err, uploadStatus(err))
		return
	}

	result, err := s.service.Reconcile(r.Context(), tenantID(r), data, mappingID)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, result)
}

// handleSync applies file values to the selected folios. The folios travel
// in the "folios" form field as a JSON array.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	mappingID, err := mappingIDParam(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	fileName, data, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err, uploadStatus(err))
		return
	}

	var folios []string
	if raw := r.FormValue("folios"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &folios); err != nil {
			respondError(w, r, fmt.Errorf("invalid folios list: %w", err), http.StatusBadRequest)
			return
		}
	}
	if len(folios) == 0 {
		respondError(w, r, errors.New("no folios selected"), http.StatusBadRequest)
		return
	}

	result, err := s.service.Sync(r.Context(), tenantID(r), fileName, data, mappingID, folios)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, result)
}

// handleExport serializes the tenant's freight records through the mapping
// and streams the file back. An optional format query overrides the
// mapping's own format.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	mappingID, err := mappingIDParam(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	fileName, data, err := s.service.Export(r.Context(), tenantID(r), mappingID, r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(fileName))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	w.Write(data)
}

// handleOperations returns the tenant's recent operation history.
func (s *Server) handleOperations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	entries, err := s.service.Operations(r.Context(), tenantID(r), limit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, entries)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var parseErr *tabular.ParseError
	switch {
	case errors.Is(err, freight.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, engine.ErrMappingInactive),
		errors.Is(err, tabular.ErrUnsupportedFormat),
		errors.As(err, &parseErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// contentTypeFor derives the response MIME type from an export file name.
func contentTypeFor(fileName string) string {
	switch strings.TrimPrefix(path.Ext(fileName), ".") {
	case "csv":
		return "text/csv"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "xml":
		return "application/xml"
	default:
		return "application/octet-stream"
	}
}
