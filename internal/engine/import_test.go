package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/logiprofit/freightsync/internal/engine"
	"github.com/logiprofit/freightsync/internal/freight"
)

func TestImport_CreatesThenUpdates(t *testing.T) {
	svc, store, tenantID, mappingID := newTestEngine(t, engine.Options{})
	ctx := context.Background()

	file := []byte("Folio,Cliente,Origen,Destino,Precio,Km\n" +
		"F-00001,Transportes Garza,Monterrey,Laredo,1500.00,230.5\n" +
		"F-00002,Beta Logistics,CDMX,Queretaro,980.50,210\n")

	res, err := svc.Import(ctx, tenantID, "fletes.csv", file, mappingID)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Total != 2 || res.Succeeded != 2 || res.Updated != 0 || res.Failed != 0 {
		t.Fatalf("first import = %+v, want 2 created", res)
	}

	updated := []byte("Folio,Cliente,Origen,Destino,Precio,Km\n" +
		"F-00001,Transportes Garza,Monterrey,Laredo,1750.00,230.5\n")

	res, err = svc.Import(ctx, tenantID, "fletes.csv", updated, mappingID)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Succeeded != 0 || res.Updated != 1 {
		t.Fatalf("second import = %+v, want 1 updated", res)
	}

	rec, err := store.Stores().Freights.GetByFolio(ctx, tenantID, "F-00001")
	if err != nil {
		t.Fatalf("GetByFolio() error = %v", err)
	}
	if rec.Price == nil || *rec.Price != 1750 {
		t.Errorf("Price after update = %v, want 1750", rec.Price)
	}
}

func TestImport_AssignsFolioWhenMissing(t *testing.T) {
	svc, store, tenantID, mappingID := newTestEngine(t, engine.Options{})
	ctx := context.Background()

	file := []byte("Folio,Cliente,Origen,Destino,Precio\n" +
		",Transportes Garza,Monterrey,Laredo,1500.00\n")

	res, err := svc.Import(ctx, tenantID, "fletes.csv", file, mappingID)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Succeeded != 1 {
		t.Fatalf("result = %+v, want 1 created", res)
	}

	rec, err := store.Stores().Freights.GetByFolio(ctx, tenantID, "F-00001")
	if err != nil {
		t.Fatalf("sequence-assigned folio not found: %v", err)
	}
	if rec.Origin != "Monterrey" {
		t.Errorf("Origin = %q, want Monterrey", rec.Origin)
	}
}

func TestImport_PartialFailure(t *testing.T) {
	svc, _, tenantID, mappingID := newTestEngine(t, engine.Options{})

	file := []byte("Folio,Cliente,Origen,Destino,Precio\n" +
		"F-1,Transportes Garza,Monterrey,Laredo,1500.00\n" +
		"F-2,Beta Logistics,,Queretaro,0\n")

	res, err := svc.Import(context.Background(), tenantID, "fletes.csv", file, mappingID)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Succeeded != 1 || res.Failed != 1 {
		t.Fatalf("result = %+v, want 1 created 1 failed", res)
	}

	var sawOrigin, sawPrice bool
	for _, re := range res.ErrorDetails {
		if re.Line != 3 {
			t.Errorf("error line = %d, want 3", re.Line)
		}
		switch re.Field {
		case freight.FieldOrigin:
			sawOrigin = true
		case freight.FieldPrice:
			sawPrice = true
		}
	}
	if !sawOrigin || !sawPrice {
		t.Errorf("ErrorDetails = %+v, want origin and price violations", res.ErrorDetails)
	}
}

func TestImport_SharesCustomersAcrossRows(t *testing.T) {
	svc, store, tenantID, mappingID := newTestEngine(t, engine.Options{})
	ctx := context.Background()

	file := []byte("Folio,Cliente,Origen,Destino,Precio\n" +
		"F-1,Transportes Garza,Monterrey,Laredo,1500.00\n" +
		"F-2,Transportes Garza,Saltillo,Laredo,1200.00\n")

	if _, err := svc.Import(ctx, tenantID, "fletes.csv", file, mappingID); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	a, _ := store.Stores().Freights.GetByFolio(ctx, tenantID, "F-1")
	b, _ := store.Stores().Freights.GetByFolio(ctx, tenantID, "F-2")
	if a.CustomerID != b.CustomerID {
		t.Errorf("customer created twice for same name: %s vs %s", a.CustomerID, b.CustomerID)
	}
}

func TestImport_InactiveMapping(t *testing.T) {
	svc, store, tenantID, _ := newTestEngine(t, engine.Options{})

	def := csvMapping(tenantID)
	def.Active = false
	if err := store.PutMapping(def); err != nil {
		t.Fatalf("PutMapping() error = %v", err)
	}

	_, err := svc.Import(context.Background(), tenantID, "f.csv", []byte("Folio\nF-1\n"), def.ID)
	if !errors.Is(err, engine.ErrMappingInactive) {
		t.Errorf("Import() error = %v, want ErrMappingInactive", err)
	}
}

func TestImport_FileTooLarge(t *testing.T) {
	svc, _, tenantID, mappingID := newTestEngine(t, engine.Options{MaxFileSize: 16})

	file := []byte("Folio,Cliente,Origen\nF-1,Acme,Monterrey\n")
	_, err := svc.Import(context.Background(), tenantID, "big.csv", file, mappingID)
	if !errors.Is(err, engine.ErrFileTooLarge) {
		t.Errorf("Import() error = %v, want ErrFileTooLarge", err)
	}
}

func TestImport_WritesOperationLog(t *testing.T) {
	svc, _, tenantID, mappingID := newTestEngine(t, engine.Options{})
	ctx := context.Background()

	file := []byte("Folio,Cliente,Origen,Destino,Precio\n" +
		"F-1,Transportes Garza,Monterrey,Laredo,1500.00\n" +
		"F-2,Beta,,Laredo,0\n")

	if _, err := svc.Import(ctx, tenantID, "marzo.csv", file, mappingID); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	entries, err := svc.Operations(ctx, tenantID, 10)
	if err != nil {
		t.Fatalf("Operations() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("operation log entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Kind != freight.OpImport || e.FileName != "marzo.csv" {
		t.Errorf("entry = %+v, want import of marzo.csv", e)
	}
	if e.TotalRows != 2 || e.Succeeded != 1 || e.Failed != 1 {
		t.Errorf("entry counts = %+v", e)
	}
	if len(e.ErrorDetails) == 0 {
		t.Error("ErrorDetails empty, want row errors persisted")
	}
}

func TestPreview_ReadOnlyAndBounded(t *testing.T) {
	svc, store, tenantID, mappingID := newTestEngine(t, engine.Options{PreviewRows: 2})
	ctx := context.Background()

	file := []byte("Folio,Cliente,Origen,Destino,Precio\n" +
		"F-1,Nuevo Cliente,Monterrey,Laredo,1500.00\n" +
		"F-2,Otro,CDMX,Laredo,900.00\n" +
		"F-3,Tercero,Saltillo,Laredo,800.00\n")

	res, err := svc.Preview(ctx, tenantID, file, mappingID)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if res.Total != 3 {
		t.Errorf("Total = %d, want 3", res.Total)
	}
	if len(res.Rows) != 2 {
		t.Errorf("preview rows = %d, want bounded to 2", len(res.Rows))
	}
	if res.Mapping[freight.FieldFolio] != "Folio" {
		t.Errorf("Mapping = %v, want current column assignment", res.Mapping)
	}

	// Unknown customers are reported, never created.
	found := false
	for _, msg := range res.Rows[0].Errors {
		if strings.Contains(msg, `customer "Nuevo Cliente" not found`) {
			found = true
		}
	}
	if !found {
		t.Errorf("row errors = %v, want unresolved customer reported", res.Rows[0].Errors)
	}

	recs, err := store.Stores().Freights.ListByTenant(ctx, tenantID)
	if err != nil {
		t.Fatalf("ListByTenant() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("store has %d records after preview, want 0", len(recs))
	}
	if id, ok, _ := store.Stores().Customers.FindByName(ctx, tenantID, "Nuevo Cliente"); ok {
		t.Errorf("preview created customer %s", id)
	}

	if got := res.Rows[0].Mapped[freight.FieldPrice]; got != "1500" {
		t.Errorf("mapped price = %q, want 1500", got)
	}
	if got := res.Rows[0].Original["Cliente"]; got != "Nuevo Cliente" {
		t.Errorf("original row = %v", res.Rows[0].Original)
	}
}
