package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/logiprofit/freightsync/internal/freight"
	"github.com/logiprofit/freightsync/internal/mapping"
)

// FreightStore is the engine's view of the shipment-record store. Natural
// keys (folios) are unique per tenant; Create assigns a folio from the
// tenant's sequence when the record arrives without one.
type FreightStore interface {
	// GetByFolio returns the record with the given folio in the tenant
	// scope, or freight.ErrNotFound.
	GetByFolio(ctx context.Context, tenantID uuid.UUID, folio string) (*freight.Record, error)

	// ListByTenant returns every record in scope, ordered by folio.
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]freight.Record, error)

	// Create inserts a new record, assigning ID and, if empty, Folio.
	Create(ctx context.Context, rec *freight.Record) error

	// UpdateFields applies a partial update to the record with the given
	// folio. Nil patch fields are left unchanged.
	UpdateFields(ctx context.Context, tenantID uuid.UUID, folio string, patch freight.FieldPatch) error

	// ExpenseTotals returns accumulated expense amounts per folio. Expense
	// tracking itself is owned by the surrounding application; the engine
	// only reads the totals for reconciliation reports.
	ExpenseTotals(ctx context.Context, tenantID uuid.UUID) (map[string]float64, error)
}

// CustomerStore doubles as the mapping resolver's entity-resolution
// capability.
type CustomerStore interface {
	mapping.CustomerDirectory
}

// QuoteStore resolves quote references for mapping and validation.
type QuoteStore interface {
	mapping.QuoteDirectory
}

// MappingStore loads integration profiles.
type MappingStore interface {
	// Get returns the mapping definition with the given id in the tenant
	// scope, or freight.ErrNotFound.
	Get(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*freight.MappingDefinition, error)
}

// OperationStore persists the audit log.
type OperationStore interface {
	Insert(ctx context.Context, entry *freight.OperationLog) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]freight.OperationLog, error)
}

// Stores bundles every store the engine needs. Passing the bundle explicitly
// keeps the engine free of ambient state and trivially testable with
// in-memory implementations.
type Stores struct {
	Freights   FreightStore
	Customers  CustomerStore
	Quotes     QuoteStore
	Mappings   MappingStore
	Operations OperationStore
}
