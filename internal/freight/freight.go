// Package freight defines the canonical shipment-record model shared by the
// import, export, reconciliation and sync engines. The types here carry no
// behavior beyond lookup helpers; all processing lives in the engine packages.
package freight

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by stores when a record, mapping or entity does not
// exist within the requested tenant scope.
var ErrNotFound = errors.New("not found")

// Record is the canonical freight-shipment record ("flete"). Folio is the
// natural business key used to correlate the record across systems; it is
// distinct from the internal ID and may be empty before the store assigns one.
//
// Pointer fields are optional: nil means the value was never mapped or could
// not be coerced. A Record is partial while mapping is in progress and is only
// required to be complete once it passes validation.
type Record struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Folio    string

	// CustomerID is the resolved customer entity; uuid.Nil when unresolved.
	// CustomerName keeps the raw mapped value so unresolved references can be
	// reported with the original text.
	CustomerID   uuid.UUID
	CustomerName string

	// QuoteID is the resolved quote reference, if the file carried one.
	// QuoteRef keeps the raw value for error reporting.
	QuoteID  *uuid.UUID
	QuoteRef string

	Origin      string
	Destination string
	Price       *float64
	Distance    *float64
	StartDate   *time.Time
	EndDate     *time.Time
	Notes       string
}

// FieldPatch is a partial update against a stored Record. Nil fields are left
// untouched by the store; this is what makes "missing means keep" possible for
// selective sync and keeps imports from erasing data a mapping never covered.
type FieldPatch struct {
	CustomerID  *uuid.UUID
	Origin      *string
	Destination *string
	Price       *float64
	Distance    *float64
	StartDate   *time.Time
	EndDate     *time.Time
	Notes       *string
}

// Empty reports whether the patch would change nothing.
func (p FieldPatch) Empty() bool {
	return p.CustomerID == nil && p.Origin == nil && p.Destination == nil &&
		p.Price == nil && p.Distance == nil && p.StartDate == nil &&
		p.EndDate == nil && p.Notes == nil
}

// RowError is a line-scoped problem found while mapping or validating one file
// row. Errors are collected, never used as control flow: a row with errors is
// excluded from persistence but stays in the operation result.
type RowError struct {
	Line    int    `json:"linea"`
	Field   string `json:"campo"`
	Message string `json:"error"`
}
