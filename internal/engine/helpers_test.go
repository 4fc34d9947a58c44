package engine_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/logiprofit/freightsync/internal/engine"
	"github.com/logiprofit/freightsync/internal/freight"
	"github.com/logiprofit/freightsync/internal/store/memory"
)

// csvMapping covers every comparable field plus folio, customer and quote.
func csvMapping(tenantID uuid.UUID) *freight.MappingDefinition {
	return &freight.MappingDefinition{
		TenantID:     tenantID,
		SourceSystem: "contpaq",
		Format:       "csv",
		Active:       true,
		Fields: []freight.FieldMapping{
			{Canonical: freight.FieldFolio, Column: "Folio"},
			{Canonical: freight.FieldCustomer, Column: "Cliente"},
			{Canonical: freight.FieldQuote, Column: "Cotizacion"},
			{Canonical: freight.FieldOrigin, Column: "Origen"},
			{Canonical: freight.FieldDestination, Column: "Destino"},
			{Canonical: freight.FieldPrice, Column: "Precio"},
			{Canonical: freight.FieldDistance, Column: "Km"},
		},
	}
}

// newTestEngine wires a service over a fresh in-memory store with one active
// CSV mapping definition registered for the tenant.
func newTestEngine(t *testing.T, opts engine.Options) (*engine.Service, *memory.Store, uuid.UUID, uuid.UUID) {
	t.Helper()

	store := memory.New()
	tenantID := uuid.New()

	def := csvMapping(tenantID)
	if err := store.PutMapping(def); err != nil {
		t.Fatalf("PutMapping() error = %v", err)
	}

	svc := engine.NewService(store.Stores(), opts)
	return svc, store, tenantID, def.ID
}

// seedFreight inserts a stored record with the given folio and values.
func seedFreight(t *testing.T, store *memory.Store, tenantID uuid.UUID, folio, origin, destination string, price, distance float64) *freight.Record {
	t.Helper()

	rec := &freight.Record{
		TenantID:    tenantID,
		Folio:       folio,
		CustomerID:  uuid.New(),
		Origin:      origin,
		Destination: destination,
		Price:       &price,
		Distance:    &distance,
	}
	if err := store.Stores().Freights.Create(context.Background(), rec); err != nil {
		t.Fatalf("seed freight %s: %v", folio, err)
	}
	return rec
}
