package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Customers implements engine.CustomerStore.
type Customers struct {
	pool *pgxpool.Pool
}

// FindByName matches case-insensitively on substring. Ordering by creation
// time keeps repeated lookups deterministic when several customers match.
const findCustomerQuery = `SELECT id FROM customers
	WHERE tenant_id = $1 AND name ILIKE '%' || $2 || '%'
	ORDER BY created_at
	LIMIT 1`

func (c *Customers) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := c.pool.QueryRow(ctx, findCustomerQuery, tenantID, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("find customer: %w", err)
	}
	return id, true, nil
}

const createCustomerQuery = `INSERT INTO customers (id, tenant_id, name)
	VALUES ($1, $2, $3)`

func (c *Customers) Create(ctx context.Context, tenantID uuid.UUID, name string) (uuid.UUID, error) {
	id := uuid.New()
	if _, err := c.pool.Exec(ctx, createCustomerQuery, id, tenantID, name); err != nil {
		return uuid.Nil, fmt.Errorf("create customer: %w", err)
	}
	return id, nil
}

// Quotes implements engine.QuoteStore.
type Quotes struct {
	pool *pgxpool.Pool
}

const findQuoteQuery = `SELECT id FROM quotes
	WHERE tenant_id = $1 AND lower(reference) = lower($2)`

func (q *Quotes) FindByRef(ctx context.Context, tenantID uuid.UUID, ref string) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := q.pool.QueryRow(ctx, findQuoteQuery, tenantID, ref).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("find quote: %w", err)
	}
	return id, true, nil
}
