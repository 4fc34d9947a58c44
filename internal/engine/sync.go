package engine

// sync.go replays a caller-chosen subset of reconciliation findings as
// targeted updates. The file is re-parsed and re-mapped on every call rather
// than trusting a previous reconciliation snapshot; a file that changed on
// disk between reconcile and sync is therefore synced as it is now, not as
// it was shown. That window is an accepted race, not a defect.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/logiprofit/freightsync/internal/freight"
)

// SyncResult reports one selective-sync run. Errors are plain strings: sync
// failure reporting is deliberately lighter-weight than import's structured
// row errors.
type SyncResult struct {
	Updated int      `json:"actualizados"`
	Errors  []string `json:"errores"`
}

// Sync overwrites the comparable fields of the selected folios in the store
// with the file-derived values. A selected folio missing from either side is
// reported and skipped. Fields absent or unparsable in the file are left
// unchanged in the store, so a partial mapping never erases existing data.
func (s *Service) Sync(ctx context.Context, tenantID uuid.UUID, fileName string, data []byte, mappingID uuid.UUID, folios []string) (*SyncResult, error) {
	def, format, err := s.loadMapping(ctx, tenantID, mappingID)
	if err != nil {
		return nil, err
	}
	table, err := s.parseFile(format, data)
	if err != nil {
		return nil, err
	}

	fileRecs, _ := s.indexFile(ctx, table.Rows, def, tenantID)

	result := &SyncResult{Errors: make([]string, 0)}

	for _, folio := range folios {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fileRec, ok := fileRecs[folio]
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("folio %s: not present in file", folio))
			continue
		}
		if _, err := s.freights.GetByFolio(ctx, tenantID, folio); err != nil {
			if errors.Is(err, freight.ErrNotFound) {
				result.Errors = append(result.Errors, fmt.Sprintf("folio %s: not present in store", folio))
			} else {
				result.Errors = append(result.Errors, fmt.Sprintf("folio %s: %v", folio, err))
			}
			continue
		}

		patch := syncPatch(fileRec)
		if err := s.freights.UpdateFields(ctx, tenantID, folio, patch); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("folio %s: %v", folio, err))
			continue
		}
		result.Updated++
	}

	errorDetails := make([]freight.RowError, 0, len(result.Errors))
	for _, msg := range result.Errors {
		errorDetails = append(errorDetails, freight.RowError{Message: msg})
	}
	s.logOperation(ctx, &freight.OperationLog{
		TenantID:     tenantID,
		Kind:         freight.OpSync,
		FileName:     fileName,
		Format:       string(format),
		TotalRows:    len(folios),
		Updated:      result.Updated,
		Failed:       len(result.Errors),
		ErrorDetails: errorDetails,
	})

	slog.Info("sync finished",
		"tenant", tenantID,
		"selected", len(folios),
		"updated", result.Updated,
		"failed", len(result.Errors),
	)
	return result, nil
}

// syncPatch narrows a file-derived record to the comparable fields, with nil
// (or blank, for strings) meaning "keep the store value".
func syncPatch(rec *freight.Record) freight.FieldPatch {
	patch := freight.FieldPatch{
		Price:    rec.Price,
		Distance: rec.Distance,
	}
	if rec.Origin != "" {
		patch.Origin = &rec.Origin
	}
	if rec.Destination != "" {
		patch.Destination = &rec.Destination
	}
	return patch
}
