// Package postgres implements the engine store interfaces on top of a
// pgx connection pool. One view type per dataset; all of them share the
// pool held by Store.
package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/logiprofit/freightsync/internal/engine"
)

// Store wraps a pgx pool and hands out the per-dataset views.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store over an existing pool. The caller owns the pool's
// lifecycle.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Stores bundles the views for engine.NewService.
func (s *Store) Stores() engine.Stores {
	return engine.Stores{
		Freights:   &Freights{pool: s.pool},
		Customers:  &Customers{pool: s.pool},
		Quotes:     &Quotes{pool: s.pool},
		Mappings:   &Mappings{pool: s.pool},
		Operations: &Operations{pool: s.pool},
	}
}
