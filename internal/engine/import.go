package engine

// import.go implements the import/upsert operation and its read-only preview
// variant. Rows are processed strictly in file order so that each row
// observes the side effects of the rows before it (a customer created by row
// 3 is found, not re-created, by row 7).

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/logiprofit/freightsync/internal/freight"
	"github.com/logiprofit/freightsync/internal/mapping"
)

// ImportResult aggregates one import run. Failed counts rows excluded from
// persistence; ErrorDetails carries every field-level problem of those rows.
type ImportResult struct {
	Total        int                `json:"totalRegistros"`
	Succeeded    int                `json:"exitosos"`
	Updated      int                `json:"actualizados"`
	Failed       int                `json:"errores"`
	ErrorDetails []freight.RowError `json:"detallesErrores"`
}

// Import parses the file once, then maps, validates and upserts every row.
// The folio decides create vs. update; a row that fails validation or
// persistence is recorded and skipped, never aborting the rest of the batch.
// One OperationLog entry is written after all rows are processed.
//
// Rows already persisted stay persisted if the context is cancelled mid-run:
// partial success is the intended semantics, not a transactional batch.
func (s *Service) Import(ctx context.Context, tenantID uuid.UUID, fileName string, data []byte, mappingID uuid.UUID) (*ImportResult, error) {
	def, format, err := s.loadMapping(ctx, tenantID, mappingID)
	if err != nil {
		return nil, err
	}
	table, err := s.parseFile(format, data)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("operation", "import", "tenant", tenantID, "file", fileName)
	logger.Info("import started", "rows", len(table.Rows), "format", format)

	resolver := mapping.NewResolver(s.customers, s.quotes)
	result := &ImportResult{
		Total:        len(table.Rows),
		ErrorDetails: make([]freight.RowError, 0),
	}

	for i, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := i + 2 // 1-indexed, after the header row

		rec, rowErrs := resolver.MapRow(ctx, row, def, tenantID, line)
		rowErrs = append(rowErrs, ValidateRecord(rec, line)...)
		if len(rowErrs) > 0 {
			result.Failed++
			result.ErrorDetails = append(result.ErrorDetails, rowErrs...)
			continue
		}

		created, err := s.upsert(ctx, rec)
		if err != nil {
			result.Failed++
			result.ErrorDetails = append(result.ErrorDetails, freight.RowError{
				Line:    line,
				Message: fmt.Sprintf("persist record: %v", err),
			})
			continue
		}
		if created {
			result.Succeeded++
		} else {
			result.Updated++
		}
	}

	s.logOperation(ctx, &freight.OperationLog{
		TenantID:     tenantID,
		Kind:         freight.OpImport,
		FileName:     fileName,
		Format:       string(format),
		TotalRows:    result.Total,
		Succeeded:    result.Succeeded,
		Updated:      result.Updated,
		Failed:       result.Failed,
		ErrorDetails: result.ErrorDetails,
	})

	logger.Info("import finished",
		"created", result.Succeeded,
		"updated", result.Updated,
		"failed", result.Failed,
	)
	return result, nil
}

// upsert persists one validated record by natural key. Returns true when a
// new record was created, false when an existing one was updated.
func (s *Service) upsert(ctx context.Context, rec *freight.Record) (bool, error) {
	if rec.Folio != "" {
		_, err := s.freights.GetByFolio(ctx, rec.TenantID, rec.Folio)
		switch {
		case err == nil:
			return false, s.freights.UpdateFields(ctx, rec.TenantID, rec.Folio, patchFromRecord(rec))
		case !errors.Is(err, freight.ErrNotFound):
			return false, err
		}
	}
	return true, s.freights.Create(ctx, rec)
}

// patchFromRecord builds the mutable-field update an import applies to an
// existing record. Fields the mapping never produced stay nil and therefore
// untouched in the store.
func patchFromRecord(rec *freight.Record) freight.FieldPatch {
	patch := freight.FieldPatch{
		Price:     rec.Price,
		Distance:  rec.Distance,
		StartDate: rec.StartDate,
		EndDate:   rec.EndDate,
	}
	if rec.Origin != "" {
		patch.Origin = &rec.Origin
	}
	if rec.Destination != "" {
		patch.Destination = &rec.Destination
	}
	if rec.Notes != "" {
		patch.Notes = &rec.Notes
	}
	if rec.CustomerID != uuid.Nil {
		id := rec.CustomerID
		patch.CustomerID = &id
	}
	return patch
}

// PreviewRow pairs one raw file row with its mapped, normalized counterpart.
type PreviewRow struct {
	Line     int               `json:"linea"`
	Original map[string]string `json:"datosOriginales"`
	Mapped   map[string]string `json:"datosMapeados"`
	Errors   []string          `json:"errores,omitempty"`
}

// PreviewResult shows an operator what an import would do, bounded to the
// first PreviewRows data rows.
type PreviewResult struct {
	Total   int               `json:"totalRegistros"`
	Headers []string          `json:"headers"`
	Mapping map[string]string `json:"mapeoActual"`
	Rows    []PreviewRow      `json:"preview"`
}

// Preview runs parse and map over a bounded prefix of the file without
// touching the store. Entity references are resolved but never created;
// an unresolved customer shows up as a row error so the operator can fix
// the catalog (or the file) before committing the import.
func (s *Service) Preview(ctx context.Context, tenantID uuid.UUID, data []byte, mappingID uuid.UUID) (*PreviewResult, error) {
	def, format, err := s.loadMapping(ctx, tenantID, mappingID)
	if err != nil {
		return nil, err
	}
	table, err := s.parseFile(format, data)
	if err != nil {
		return nil, err
	}

	mapeo := make(map[string]string, len(def.Fields))
	for _, fm := range def.Fields {
		mapeo[fm.Canonical] = fm.Column
	}

	result := &PreviewResult{
		Total:   len(table.Rows),
		Headers: table.Columns,
		Mapping: mapeo,
		Rows:    make([]PreviewRow, 0, s.previewRows),
	}

	resolver := mapping.NewReadOnlyResolver(s.customers, s.quotes)
	for i, row := range table.Rows {
		if i >= s.previewRows {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := i + 2

		rec, rowErrs := resolver.MapRow(ctx, row, def, tenantID, line)
		rowErrs = append(rowErrs, ValidateRecord(rec, line)...)

		mapped := make(map[string]string, len(def.Fields))
		for _, fm := range def.Fields {
			mapped[fm.Canonical] = mapping.ExtractField(rec, fm.Canonical)
		}

		pr := PreviewRow{Line: line, Original: row, Mapped: mapped}
		for _, re := range rowErrs {
			pr.Errors = append(pr.Errors, re.Message)
		}
		result.Rows = append(result.Rows, pr)
	}

	return result, nil
}

// logOperation writes the audit entry for a completed operation. Audit
// failures are logged and swallowed: the operation itself already happened
// and its result is still returned to the caller.
func (s *Service) logOperation(ctx context.Context, entry *freight.OperationLog) {
	entry.ID = uuid.New()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.operations.Insert(ctx, entry); err != nil {
		slog.Error("write operation log",
			"kind", entry.Kind,
			"tenant", entry.TenantID,
			"error", err,
		)
	}
}
