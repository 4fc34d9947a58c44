package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/logiprofit/freightsync/internal/freight"
)

// Freights implements engine.FreightStore.
type Freights struct {
	pool *pgxpool.Pool
}

const freightColumns = `f.id, f.tenant_id, f.folio, f.customer_id, c.name,
	f.quote_id, COALESCE(q.reference, ''), f.origin, f.destination,
	f.price, f.distance_km, f.start_date, f.end_date, COALESCE(f.notes, '')`

const getByFolioQuery = `SELECT ` + freightColumns + `
	FROM freights f
	JOIN customers c ON c.id = f.customer_id
	LEFT JOIN quotes q ON q.id = f.quote_id
	WHERE f.tenant_id = $1 AND f.folio = $2`

func (f *Freights) GetByFolio(ctx context.Context, tenantID uuid.UUID, folio string) (*freight.Record, error) {
	row := f.pool.QueryRow(ctx, getByFolioQuery, tenantID, folio)
	rec, err := scanFreight(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("freight %s: %w", folio, freight.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get freight by folio: %w", err)
	}
	return rec, nil
}

const listByTenantQuery = `SELECT ` + freightColumns + `
	FROM freights f
	JOIN customers c ON c.id = f.customer_id
	LEFT JOIN quotes q ON q.id = f.quote_id
	WHERE f.tenant_id = $1
	ORDER BY f.folio`

func (f *Freights) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]freight.Record, error) {
	rows, err := f.pool.Query(ctx, listByTenantQuery, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list freights: %w", err)
	}
	defer rows.Close()

	recs := make([]freight.Record, 0)
	for rows.Next() {
		rec, err := scanFreight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan freight: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// A file-supplied folio is kept; an empty one is assigned from the
// per-tenant sequence inside the insert so concurrent imports never hand
// out the same number.
const createFreightQuery = `INSERT INTO freights
	(id, tenant_id, folio, customer_id, quote_id, origin, destination,
	 price, distance_km, start_date, end_date, notes)
	VALUES ($1, $2, COALESCE(NULLIF($3, ''), next_folio($2)), $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING folio`

func (f *Freights) Create(ctx context.Context, rec *freight.Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	err := f.pool.QueryRow(ctx, createFreightQuery,
		rec.ID, rec.TenantID, rec.Folio, rec.CustomerID, toPgUUID(rec.QuoteID),
		rec.Origin, rec.Destination,
		toPgFloat(rec.Price), toPgFloat(rec.Distance),
		toPgDate(rec.StartDate), toPgDate(rec.EndDate),
		toPgText(rec.Notes),
	).Scan(&rec.Folio)
	if err != nil {
		return fmt.Errorf("create freight: %w", err)
	}
	return nil
}

func (f *Freights) UpdateFields(ctx context.Context, tenantID uuid.UUID, folio string, patch freight.FieldPatch) error {
	sets := make([]string, 0, 8)
	args := []any{tenantID, folio}
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.CustomerID != nil {
		add("customer_id", *patch.CustomerID)
	}
	if patch.Origin != nil {
		add("origin", *patch.Origin)
	}
	if patch.Destination != nil {
		add("destination", *patch.Destination)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Distance != nil {
		add("distance_km", *patch.Distance)
	}
	if patch.StartDate != nil {
		add("start_date", *patch.StartDate)
	}
	if patch.EndDate != nil {
		add("end_date", *patch.EndDate)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if len(sets) == 0 {
		return nil
	}

	query := "UPDATE freights SET " + strings.Join(sets, ", ") +
		", updated_at = now() WHERE tenant_id = $1 AND folio = $2"
	tag, err := f.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update freight %s: %w", folio, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("freight %s: %w", folio, freight.ErrNotFound)
	}
	return nil
}

const expenseTotalsQuery = `SELECT f.folio, COALESCE(SUM(e.amount), 0)
	FROM freights f
	JOIN expenses e ON e.freight_id = f.id
	WHERE f.tenant_id = $1
	GROUP BY f.folio`

func (f *Freights) ExpenseTotals(ctx context.Context, tenantID uuid.UUID) (map[string]float64, error) {
	rows, err := f.pool.Query(ctx, expenseTotalsQuery, tenantID)
	if err != nil {
		return nil, fmt.Errorf("expense totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var folio string
		var amount float64
		if err := rows.Scan(&folio, &amount); err != nil {
			return nil, fmt.Errorf("scan expense total: %w", err)
		}
		totals[folio] = amount
	}
	return totals, rows.Err()
}

func scanFreight(row pgx.Row) (*freight.Record, error) {
	var (
		rec      freight.Record
		quoteID  pgtype.UUID
		price    pgtype.Float8
		distance pgtype.Float8
		start    pgtype.Date
		end      pgtype.Date
	)
	err := row.Scan(
		&rec.ID, &rec.TenantID, &rec.Folio, &rec.CustomerID, &rec.CustomerName,
		&quoteID, &rec.QuoteRef, &rec.Origin, &rec.Destination,
		&price, &distance, &start, &end, &rec.Notes,
	)
	if err != nil {
		return nil, err
	}
	if quoteID.Valid {
		id := uuid.UUID(quoteID.Bytes)
		rec.QuoteID = &id
	}
	rec.Price = fromPgFloat(price)
	rec.Distance = fromPgFloat(distance)
	rec.StartDate = fromPgDate(start)
	rec.EndDate = fromPgDate(end)
	return &rec, nil
}

func toPgUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgFloat(v *float64) pgtype.Float8 {
	if v == nil {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: *v, Valid: true}
}

func fromPgFloat(v pgtype.Float8) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func toPgDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func fromPgDate(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}
