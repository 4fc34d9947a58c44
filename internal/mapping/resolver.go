// Package mapping applies a stored field-mapping definition to raw file rows,
// producing canonical freight records, and provides the reverse extraction
// used by exporters.
package mapping

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/logiprofit/freightsync/internal/freight"
)

// CustomerDirectory is the entity-resolution capability the resolver depends
// on. Resolution is case-insensitive substring matching within the tenant
// scope; creation makes a minimal entity carrying only the name.
//
// ResolveOrCreate is side-effecting. The resolver only calls it in
// create-missing mode, which keeps read-only operations (preview, reconcile)
// from mutating the customer catalog.
type CustomerDirectory interface {
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (uuid.UUID, bool, error)
	Create(ctx context.Context, tenantID uuid.UUID, name string) (uuid.UUID, error)
}

// QuoteDirectory resolves quote references. Quotes are never auto-created;
// an unknown reference is left unresolved for validation to flag.
type QuoteDirectory interface {
	FindByRef(ctx context.Context, tenantID uuid.UUID, ref string) (uuid.UUID, bool, error)
}

// Resolver maps raw rows to canonical records against one mapping definition.
type Resolver struct {
	customers     CustomerDirectory
	quotes        QuoteDirectory
	createMissing bool
}

// NewResolver returns a resolver that creates missing customers on the fly.
// Used by import and any other path that persists records.
func NewResolver(customers CustomerDirectory, quotes QuoteDirectory) *Resolver {
	return &Resolver{customers: customers, quotes: quotes, createMissing: true}
}

// NewReadOnlyResolver returns a resolver that never creates entities.
// Unresolved customer references leave CustomerID unset so validation can
// report them. Used by preview, reconciliation and sync.
func NewReadOnlyResolver(customers CustomerDirectory, quotes QuoteDirectory) *Resolver {
	return &Resolver{customers: customers, quotes: quotes, createMissing: false}
}

// MapRow applies the mapping definition to one raw row. Canonical fields
// without a mapping entry stay unset; unparsable numeric and date cells
// become nil. Mapping itself only errors on entity-directory failures; value
// problems are left for validation.
func (r *Resolver) MapRow(ctx context.Context, row map[string]string, def *freight.MappingDefinition, tenantID uuid.UUID, line int) (*freight.Record, []freight.RowError) {
	rec := &freight.Record{TenantID: tenantID}
	var errs []freight.RowError

	for _, fm := range def.Fields {
		raw, _ := lookupColumn(row, fm.Column)

		switch fm.Canonical {
		case freight.FieldFolio:
			rec.Folio = CleanCell(raw)
		case freight.FieldOrigin:
			rec.Origin = SanitizeText(raw)
		case freight.FieldDestination:
			rec.Destination = SanitizeText(raw)
		case freight.FieldNotes:
			rec.Notes = SanitizeText(raw)
		case freight.FieldPrice:
			rec.Price = ParseNumber(raw)
		case freight.FieldDistance:
			rec.Distance = ParseNumber(raw)
		case freight.FieldStartDate:
			rec.StartDate = ParseDate(raw)
		case freight.FieldEndDate:
			rec.EndDate = ParseDate(raw)
		case freight.FieldCustomer:
			rec.CustomerName = SanitizeText(raw)
			if rec.CustomerName == "" {
				continue
			}
			id, err := r.resolveCustomer(ctx, tenantID, rec.CustomerName)
			if err != nil {
				errs = append(errs, freight.RowError{
					Line:    line,
					Field:   freight.FieldCustomer,
					Message: fmt.Sprintf("resolve customer %q: %v", rec.CustomerName, err),
				})
				continue
			}
			rec.CustomerID = id
		case freight.FieldQuote:
			rec.QuoteRef = CleanCell(raw)
			if rec.QuoteRef == "" {
				continue
			}
			id, ok, err := r.quotes.FindByRef(ctx, tenantID, rec.QuoteRef)
			if err != nil {
				errs = append(errs, freight.RowError{
					Line:    line,
					Field:   freight.FieldQuote,
					Message: fmt.Sprintf("resolve quote %q: %v", rec.QuoteRef, err),
				})
				continue
			}
			if ok {
				rec.QuoteID = &id
			}
		}
	}

	return rec, errs
}

// resolveCustomer looks up a customer and, in create-missing mode, creates a
// minimal entity when no match exists. In read-only mode a miss returns
// uuid.Nil without touching the store.
func (r *Resolver) resolveCustomer(ctx context.Context, tenantID uuid.UUID, name string) (uuid.UUID, error) {
	id, ok, err := r.customers.FindByName(ctx, tenantID, name)
	if err != nil {
		return uuid.Nil, err
	}
	if ok {
		return id, nil
	}
	if !r.createMissing {
		return uuid.Nil, nil
	}
	return r.customers.Create(ctx, tenantID, name)
}

// lookupColumn matches a configured column name against the row keys
// case-insensitively, the same way header lookup works during parsing.
func lookupColumn(row map[string]string, column string) (string, bool) {
	if v, ok := row[column]; ok {
		return v, true
	}
	for k, v := range row {
		if strings.EqualFold(k, column) {
			return v, true
		}
	}
	return "", false
}
