package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/logiprofit/freightsync/internal/config"
	"github.com/logiprofit/freightsync/internal/engine"
	"github.com/logiprofit/freightsync/internal/freight"
	"github.com/logiprofit/freightsync/internal/store/memory"
	"github.com/logiprofit/freightsync/internal/tabular"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			RequestTimeout: 30 * time.Second,
		},
		Import: config.ImportConfig{
			MaxFileSize: 1 << 20,
			PreviewRows: 10,
		},
	}
}

// newTestServer spins up a server over an in-memory store with one active
// CSV mapping registered.
func newTestServer(t *testing.T) (*Server, *memory.Store, uuid.UUID, uuid.UUID) {
	t.Helper()

	store := memory.New()
	tenantID := uuid.New()

	def := &freight.MappingDefinition{
		TenantID: tenantID,
		Format:   "csv",
		Active:   true,
		Fields: []freight.FieldMapping{
			{Canonical: freight.FieldFolio, Column: "Folio"},
			{Canonical: freight.FieldCustomer, Column: "Cliente"},
			{Canonical: freight.FieldOrigin, Column: "Origen"},
			{Canonical: freight.FieldDestination, Column: "Destino"},
			{Canonical: freight.FieldPrice, Column: "Precio"},
		},
	}
	if err := store.PutMapping(def); err != nil {
		t.Fatalf("PutMapping() error = %v", err)
	}

	svc := engine.NewService(store.Stores(), engine.Options{})
	srv := NewServer(svc, testConfig())
	return srv, store, tenantID, def.ID
}

// uploadRequest builds a multipart POST with the payload in the "file" field
// plus any extra form fields.
func uploadRequest(t *testing.T, url string, payload []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "fletes.csv")
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := fw.Write(payload); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(%s) error = %v", k, err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthz(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

func TestRequireTenant(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	tests := []struct {
		name   string
		tenant string
		want   int
	}{
		{"missing header", "", http.StatusBadRequest},
		{"malformed header", "not-a-uuid", http.StatusBadRequest},
		{"valid header", uuid.NewString(), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/operations", nil)
			if tt.tenant != "" {
				req.Header.Set("X-Tenant-ID", tt.tenant)
			}
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestImportEndpoint(t *testing.T) {
	srv, store, tenantID, mappingID := newTestServer(t)

	file := []byte("Folio,Cliente,Origen,Destino,Precio\n" +
		"F-1,Transportes Garza,Monterrey,Laredo,1500.00\n" +
		"F-2,Beta,,Laredo,0\n")

	req := uploadRequest(t, "/api/import/"+mappingID.String(), file, nil)
	req.Header.Set("X-Tenant-ID", tenantID.String())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result struct {
		Total     int `json:"totalRegistros"`
		Succeeded int `json:"exitosos"`
		Failed    int `json:"errores"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if result.Total != 2 || result.Succeeded != 1 || result.Failed != 1 {
		t.Errorf("result = %+v", result)
	}

	if _, err := store.Stores().Freights.GetByFolio(context.Background(), tenantID, "F-1"); err != nil {
		t.Errorf("imported record not in store: %v", err)
	}
}

func TestImportEndpoint_UnknownMapping(t *testing.T) {
	srv, _, tenantID, _ := newTestServer(t)

	req := uploadRequest(t, "/api/import/"+uuid.NewString(), []byte("Folio\nF-1\n"), nil)
	req.Header.Set("X-Tenant-ID", tenantID.String())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body = %s", rec.Code, rec.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Code == "" {
		t.Errorf("error response = %+v, want support code", resp)
	}
}

func TestImportEndpoint_NoFile(t *testing.T) {
	srv, _, tenantID, mappingID := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("other", "x")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/import/"+mappingID.String(), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Tenant-ID", tenantID.String())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestImportEndpoint_OversizedUpload(t *testing.T) {
	srv, _, tenantID, mappingID := newTestServer(t)
	srv.cfg.Import.MaxFileSize = 64

	payload := bytes.Repeat([]byte("Folio,Cliente,Origen,Destino,Precio\n"), 50)
	req := uploadRequest(t, "/api/import/"+mappingID.String(), payload, nil)
	req.Header.Set("X-Tenant-ID", tenantID.String())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413, body = %s", rec.Code, rec.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Code != "FILE001" {
		t.Errorf("error code = %q, want FILE001", resp.Code)
	}
}

func TestSyncEndpoint_RequiresFolios(t *testing.T) {
	srv, _, tenantID, mappingID := newTestServer(t)

	req := uploadRequest(t, "/api/sync/"+mappingID.String(),
		[]byte("Folio,Origen,Destino,Precio\nF-1,Monterrey,Laredo,1500.00\n"), nil)
	req.Header.Set("X-Tenant-ID", tenantID.String())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 without folios", rec.Code)
	}
}

func TestSyncEndpoint(t *testing.T) {
	srv, store, tenantID, mappingID := newTestServer(t)
	ctx := context.Background()

	price := 1500.00
	seed := &freight.Record{
		TenantID:    tenantID,
		Folio:       "F-1",
		CustomerID:  uuid.New(),
		Origin:      "Monterrey",
		Destination: "Laredo",
		Price:       &price,
	}
	if err := store.Stores().Freights.Create(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	file := []byte("Folio,Origen,Destino,Precio\nF-1,Guadalajara,Laredo,1750.00\n")
	req := uploadRequest(t, "/api/sync/"+mappingID.String(), file,
		map[string]string{"folios": `["F-1"]`})
	req.Header.Set("X-Tenant-ID", tenantID.String())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	got, err := store.Stores().Freights.GetByFolio(ctx, tenantID, "F-1")
	if err != nil {
		t.Fatalf("GetByFolio() error = %v", err)
	}
	if got.Origin != "Guadalajara" || *got.Price != 1750.00 {
		t.Errorf("record after sync = %+v", got)
	}
}

func TestExportEndpoint(t *testing.T) {
	srv, store, tenantID, mappingID := newTestServer(t)

	price := 1500.00
	rec := &freight.Record{
		TenantID:    tenantID,
		Folio:       "F-1",
		CustomerID:  uuid.New(),
		Origin:      "Monterrey",
		Destination: "Laredo",
		Price:       &price,
	}
	if err := store.Stores().Freights.Create(context.Background(), rec); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/export/"+mappingID.String(), nil)
	req.Header.Set("X-Tenant-ID", tenantID.String())
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", got)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "fletes_export_") {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !strings.Contains(w.Body.String(), "F-1") {
		t.Errorf("body = %q, want exported record", w.Body.String())
	}
}

func TestAPIKeyAuth(t *testing.T) {
	store := memory.New()
	svc := engine.NewService(store.Stores(), engine.Options{})

	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret-key"}
	srv := NewServer(svc, cfg)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status without key = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status with wrong key = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-API-Key", "secret-key")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status with valid key = %d, want 200", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{freight.ErrNotFound, http.StatusNotFound},
		{engine.ErrMappingInactive, http.StatusBadRequest},
		{engine.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{fmt.Errorf("import: %w", engine.ErrFileTooLarge), http.StatusRequestEntityTooLarge},
		{&tabular.ParseError{Format: tabular.FormatCSV, Reason: "bad"}, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
