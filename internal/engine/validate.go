package engine

// validate.go checks mapped records before persistence. Rules are evaluated
// independently with no short-circuiting, so an operator sees every problem
// of a row at once. Each field contributes at most one error.

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/logiprofit/freightsync/internal/freight"
)

// ValidateRecord returns every rule violation of a mapped record. A record
// is acceptable for persistence iff the result is empty.
func ValidateRecord(rec *freight.Record, line int) []freight.RowError {
	var errs []freight.RowError

	add := func(field, message string) {
		errs = append(errs, freight.RowError{Line: line, Field: field, Message: message})
	}

	if rec.Origin == "" {
		add(freight.FieldOrigin, "origin is required")
	}
	if rec.Destination == "" {
		add(freight.FieldDestination, "destination is required")
	}

	switch {
	case rec.Price == nil:
		add(freight.FieldPrice, "price is required")
	case *rec.Price <= 0:
		add(freight.FieldPrice, "price must be greater than zero")
	}

	switch {
	case rec.CustomerName == "":
		add(freight.FieldCustomer, "customer is required")
	case rec.CustomerID == uuid.Nil:
		add(freight.FieldCustomer, fmt.Sprintf("customer %q not found", rec.CustomerName))
	}

	if rec.QuoteRef != "" && rec.QuoteID == nil {
		add(freight.FieldQuote, fmt.Sprintf("quote %q not found", rec.QuoteRef))
	}

	if rec.StartDate != nil && rec.EndDate != nil && rec.EndDate.Before(*rec.StartDate) {
		add(freight.FieldEndDate, "end date precedes start date")
	}

	if rec.Distance != nil && *rec.Distance < 0 {
		add(freight.FieldDistance, "distance must not be negative")
	}

	return errs
}
