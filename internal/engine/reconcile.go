package engine

// reconcile.go joins the full file dataset against the full store dataset by
// folio and classifies every discrepancy. Both sides are hash-indexed before
// comparison, so the join is O(n+m) and stays that way as datasets grow.

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/logiprofit/freightsync/internal/freight"
	"github.com/logiprofit/freightsync/internal/mapping"
	"github.com/logiprofit/freightsync/internal/tabular"
)

// Numeric tolerances per comparable field. Differences at or below the
// tolerance are representation noise (float formatting, rounding in the
// external system), not business differences.
const (
	PriceTolerance    = 0.01
	DistanceTolerance = 0.1
)

// comparableFields are the fields reconciliation and sync operate on, in
// report order.
var comparableFields = []string{
	freight.FieldOrigin,
	freight.FieldDestination,
	freight.FieldPrice,
	freight.FieldDistance,
}

// ReconcileResult is the classified diff between file and store.
type ReconcileResult struct {
	TotalFile   int                 `json:"totalFletesArchivo"`
	TotalStore  int                 `json:"totalFletesLogiProfit"`
	Matching    int                 `json:"fletesCoincidentes"`
	Differing   int                 `json:"fletesConDiferencias"`
	OnlyInFile  []string            `json:"fletesSoloEnArchivo"`
	OnlyInStore []string            `json:"fletesSoloEnLogiProfit"`
	Differences []freight.DiffEntry `json:"diferencias"`
	Expenses    map[string]float64  `json:"gastosPorFolio"`
}

// Reconcile parses and maps the whole file, loads the whole store scope and
// produces the classified diff. It is read-only: no entity is created, no
// record touched, no operation logged.
func (s *Service) Reconcile(ctx context.Context, tenantID uuid.UUID, data []byte, mappingID uuid.UUID) (*ReconcileResult, error) {
	def, format, err := s.loadMapping(ctx, tenantID, mappingID)
	if err != nil {
		return nil, err
	}
	table, err := s.parseFile(format, data)
	if err != nil {
		return nil, err
	}

	fileRecs, fileOrder := s.indexFile(ctx, table.Rows, def, tenantID)

	storeList, err := s.freights.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	storeRecs := make(map[string]*freight.Record, len(storeList))
	for i := range storeList {
		storeRecs[storeList[i].Folio] = &storeList[i]
	}

	result := &ReconcileResult{
		TotalFile:   len(fileRecs),
		TotalStore:  len(storeRecs),
		OnlyInFile:  make([]string, 0),
		OnlyInStore: make([]string, 0),
		Differences: make([]freight.DiffEntry, 0),
	}

	for _, folio := range fileOrder {
		fileRec := fileRecs[folio]
		storeRec, ok := storeRecs[folio]
		if !ok {
			result.OnlyInFile = append(result.OnlyInFile, folio)
			result.Differences = append(result.Differences, freight.DiffEntry{
				Folio:     folio,
				FileValue: folio,
				Kind:      freight.ConflictOnlyInFile,
			})
			continue
		}

		diffs := diffRecords(folio, fileRec, storeRec, def)
		if len(diffs) == 0 {
			result.Matching++
		} else {
			result.Differing++
			result.Differences = append(result.Differences, diffs...)
		}
	}

	storeOnly := make([]string, 0)
	for folio := range storeRecs {
		if _, ok := fileRecs[folio]; !ok {
			storeOnly = append(storeOnly, folio)
		}
	}
	sort.Strings(storeOnly)
	for _, folio := range storeOnly {
		result.OnlyInStore = append(result.OnlyInStore, folio)
		result.Differences = append(result.Differences, freight.DiffEntry{
			Folio:      folio,
			FreightID:  storeRecs[folio].ID.String(),
			StoreValue: folio,
			Kind:       freight.ConflictOnlyInStore,
		})
	}

	expenses, err := s.freights.ExpenseTotals(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	result.Expenses = expenses

	slog.Info("reconciliation finished",
		"tenant", tenantID,
		"in_file", result.TotalFile,
		"in_store", result.TotalStore,
		"matching", result.Matching,
		"differing", result.Differing,
	)
	return result, nil
}

// indexFile maps every file row and indexes the results by folio. The last
// row wins on duplicate folios within the file. Rows without a folio or with
// mapping failures cannot be joined and are dropped from the index.
func (s *Service) indexFile(ctx context.Context, rows []tabular.Row, def *freight.MappingDefinition, tenantID uuid.UUID) (map[string]*freight.Record, []string) {
	resolver := mapping.NewReadOnlyResolver(s.customers, s.quotes)

	recs := make(map[string]*freight.Record, len(rows))
	order := make([]string, 0, len(rows))

	for i, row := range rows {
		rec, _ := resolver.MapRow(ctx, row, def, tenantID, i+2)
		if rec.Folio == "" {
			continue
		}
		if _, seen := recs[rec.Folio]; !seen {
			order = append(order, rec.Folio)
		}
		recs[rec.Folio] = rec
	}
	return recs, order
}

// diffRecords compares the comparable fields of one file/store pair and
// returns a DiffEntry per mismatch. Only fields the mapping definition
// actually covers are compared; an unmapped field cannot disagree with
// anything.
func diffRecords(folio string, fileRec, storeRec *freight.Record, def *freight.MappingDefinition) []freight.DiffEntry {
	var diffs []freight.DiffEntry

	for _, field := range comparableFields {
		if _, mapped := def.ColumnFor(field); !mapped {
			continue
		}
		if !fieldDiffers(field, fileRec, storeRec) {
			continue
		}
		diffs = append(diffs, freight.DiffEntry{
			Folio:      folio,
			FreightID:  storeRec.ID.String(),
			Field:      field,
			StoreValue: mapping.ExtractField(storeRec, field),
			FileValue:  mapping.ExtractField(fileRec, field),
			Kind:       freight.ConflictValue,
		})
	}
	return diffs
}

// fieldDiffers applies the per-field comparison rule: exact case-sensitive
// match for strings, tolerance-bounded absolute difference for numerics.
func fieldDiffers(field string, fileRec, storeRec *freight.Record) bool {
	switch field {
	case freight.FieldOrigin:
		return fileRec.Origin != storeRec.Origin
	case freight.FieldDestination:
		return fileRec.Destination != storeRec.Destination
	case freight.FieldPrice:
		return numbersDiffer(fileRec.Price, storeRec.Price, PriceTolerance)
	case freight.FieldDistance:
		return numbersDiffer(fileRec.Distance, storeRec.Distance, DistanceTolerance)
	default:
		return false
	}
}

// numbersDiffer reports a mismatch when the absolute difference strictly
// exceeds the tolerance. A value present on one side only is a mismatch;
// absent on both sides is agreement.
func numbersDiffer(a, b *float64, tolerance float64) bool {
	if a == nil && b == nil {
		return false
	}
	if a == nil || b == nil {
		return true
	}
	return math.Abs(*a-*b) > tolerance
}
