package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/logiprofit/freightsync/internal/freight"
)

// Mappings implements engine.MappingStore. Field pairs live in a jsonb
// column so adding a canonical field never needs a migration.
type Mappings struct {
	pool *pgxpool.Pool
}

const getMappingQuery = `SELECT id, tenant_id, source_system, format, fields, active
	FROM mapping_definitions
	WHERE tenant_id = $1 AND id = $2`

func (m *Mappings) Get(ctx context.Context, tenantID, id uuid.UUID) (*freight.MappingDefinition, error) {
	var (
		def       freight.MappingDefinition
		rawFields []byte
	)
	err := m.pool.QueryRow(ctx, getMappingQuery, tenantID, id).Scan(
		&def.ID, &def.TenantID, &def.SourceSystem, &def.Format, &rawFields, &def.Active,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("mapping %s: %w", id, freight.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get mapping: %w", err)
	}
	if err := json.Unmarshal(rawFields, &def.Fields); err != nil {
		return nil, fmt.Errorf("decode mapping fields: %w", err)
	}
	return &def, nil
}

const upsertMappingQuery = `INSERT INTO mapping_definitions
	(id, tenant_id, source_system, format, fields, active)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		source_system = EXCLUDED.source_system,
		format = EXCLUDED.format,
		fields = EXCLUDED.fields,
		active = EXCLUDED.active,
		updated_at = now()`

// Put validates and upserts a mapping definition.
func (m *Mappings) Put(ctx context.Context, def *freight.MappingDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if def.ID == uuid.Nil {
		def.ID = uuid.New()
	}
	rawFields, err := json.Marshal(def.Fields)
	if err != nil {
		return fmt.Errorf("encode mapping fields: %w", err)
	}
	_, err = m.pool.Exec(ctx, upsertMappingQuery,
		def.ID, def.TenantID, def.SourceSystem, def.Format, rawFields, def.Active)
	if err != nil {
		return fmt.Errorf("put mapping: %w", err)
	}
	return nil
}
