package engine

// export.go renders the store back into an external tabular file, honoring
// the same mapping definition in reverse. Export is deterministic for a
// given store state: records iterate in folio order and the file name is
// derived from the operation timestamp.

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/logiprofit/freightsync/internal/freight"
	"github.com/logiprofit/freightsync/internal/mapping"
	"github.com/logiprofit/freightsync/internal/tabular"
)

// Export renders every record in the tenant scope to the requested format.
// An empty formatTag falls back to the mapping definition's own format.
// A field that fails to format becomes an empty cell; the export never
// aborts on one bad value.
func (s *Service) Export(ctx context.Context, tenantID, mappingID uuid.UUID, formatTag string) (string, []byte, error) {
	def, format, err := s.loadMapping(ctx, tenantID, mappingID)
	if err != nil {
		return "", nil, err
	}
	if formatTag != "" {
		format, err = tabular.ParseFormat(formatTag)
		if err != nil {
			return "", nil, err
		}
	}

	records, err := s.freights.ListByTenant(ctx, tenantID)
	if err != nil {
		return "", nil, err
	}

	columns := def.Columns()
	rows := make([]tabular.Row, 0, len(records))
	for i := range records {
		row := make(tabular.Row, len(def.Fields))
		for _, fm := range def.Fields {
			row[fm.Column] = mapping.ExtractField(&records[i], fm.Canonical)
		}
		rows = append(rows, row)
	}

	data, err := tabular.Serialize(format, columns, rows)
	if err != nil {
		return "", nil, err
	}
	fileName := tabular.ExportFileName(format, time.Now())

	s.logOperation(ctx, &freight.OperationLog{
		TenantID:  tenantID,
		Kind:      freight.OpExport,
		FileName:  fileName,
		Format:    string(format),
		TotalRows: len(records),
		Succeeded: len(records),
	})

	slog.Info("export finished",
		"tenant", tenantID,
		"records", len(records),
		"format", format,
		"file", fileName,
	)
	return fileName, data, nil
}

// Operations returns the most recent audit entries for a tenant.
func (s *Service) Operations(ctx context.Context, tenantID uuid.UUID, limit int) ([]freight.OperationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.operations.ListByTenant(ctx, tenantID, limit)
}
