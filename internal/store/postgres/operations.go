package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/logiprofit/freightsync/internal/freight"
)

// Operations implements engine.OperationStore.
type Operations struct {
	pool *pgxpool.Pool
}

const insertOperationQuery = `INSERT INTO operation_log
	(id, tenant_id, kind, file_name, format, total_rows, succeeded, updated,
	 failed, error_details, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

func (o *Operations) Insert(ctx context.Context, entry *freight.OperationLog) error {
	details, err := json.Marshal(entry.ErrorDetails)
	if err != nil {
		return fmt.Errorf("encode error details: %w", err)
	}
	_, err = o.pool.Exec(ctx, insertOperationQuery,
		entry.ID, entry.TenantID, entry.Kind, entry.FileName, entry.Format,
		entry.TotalRows, entry.Succeeded, entry.Updated, entry.Failed,
		details, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert operation log: %w", err)
	}
	return nil
}

const listOperationsQuery = `SELECT id, tenant_id, kind, file_name, format,
	total_rows, succeeded, updated, failed, error_details, created_at
	FROM operation_log
	WHERE tenant_id = $1
	ORDER BY created_at DESC
	LIMIT $2`

func (o *Operations) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]freight.OperationLog, error) {
	rows, err := o.pool.Query(ctx, listOperationsQuery, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	entries := make([]freight.OperationLog, 0, limit)
	for rows.Next() {
		var (
			entry   freight.OperationLog
			details []byte
		)
		err := rows.Scan(
			&entry.ID, &entry.TenantID, &entry.Kind, &entry.FileName, &entry.Format,
			&entry.TotalRows, &entry.Succeeded, &entry.Updated, &entry.Failed,
			&details, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan operation log: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.ErrorDetails); err != nil {
				return nil, fmt.Errorf("decode error details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
