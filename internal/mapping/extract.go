package mapping

// extract.go is the reverse direction of the resolver: canonical record out
// to external cell values. Extraction is a pure lookup over the closed field
// set. An unknown field name yields an empty string, never an error, so a
// stale mapping definition degrades to blank columns instead of failing an
// export.

import (
	"strconv"
	"time"

	"github.com/logiprofit/freightsync/internal/freight"
)

const exportDateLayout = "2006-01-02"

// ExtractField formats one canonical field of a record for export.
func ExtractField(rec *freight.Record, canonical string) string {
	switch canonical {
	case freight.FieldFolio:
		return rec.Folio
	case freight.FieldCustomer:
		return rec.CustomerName
	case freight.FieldQuote:
		return rec.QuoteRef
	case freight.FieldOrigin:
		return rec.Origin
	case freight.FieldDestination:
		return rec.Destination
	case freight.FieldPrice:
		return formatNumber(rec.Price)
	case freight.FieldDistance:
		return formatNumber(rec.Distance)
	case freight.FieldStartDate:
		return formatDate(rec.StartDate)
	case freight.FieldEndDate:
		return formatDate(rec.EndDate)
	case freight.FieldNotes:
		return rec.Notes
	default:
		return ""
	}
}

func formatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(exportDateLayout)
}
