// Package memory provides in-memory store implementations mirroring the
// PostgreSQL semantics. They back the engine's tests and let the server run
// without a database for local experiments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/logiprofit/freightsync/internal/engine"
	"github.com/logiprofit/freightsync/internal/freight"
)

// Store holds every dataset for every tenant behind one mutex. The engine
// interfaces are exposed through per-dataset views so their method sets do
// not collide.
type Store struct {
	mu sync.RWMutex

	freights  map[uuid.UUID]map[string]*freight.Record // tenant -> folio -> record
	folioSeq  map[uuid.UUID]int
	customers map[uuid.UUID][]customer
	quotes    map[uuid.UUID]map[string]uuid.UUID // tenant -> lowercased ref -> id
	mappings  map[uuid.UUID]*freight.MappingDefinition
	ops       []freight.OperationLog
	expenses  map[uuid.UUID]map[string]float64
}

type customer struct {
	id   uuid.UUID
	name string
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		freights:  make(map[uuid.UUID]map[string]*freight.Record),
		folioSeq:  make(map[uuid.UUID]int),
		customers: make(map[uuid.UUID][]customer),
		quotes:    make(map[uuid.UUID]map[string]uuid.UUID),
		mappings:  make(map[uuid.UUID]*freight.MappingDefinition),
		expenses:  make(map[uuid.UUID]map[string]float64),
	}
}

// Stores bundles the views for engine.NewService.
func (s *Store) Stores() engine.Stores {
	return engine.Stores{
		Freights:   Freights{s},
		Customers:  Customers{s},
		Quotes:     Quotes{s},
		Mappings:   Mappings{s},
		Operations: Operations{s},
	}
}

// AddExpense accumulates an expense amount against a folio. Expense capture
// itself happens outside the sync engine.
func (s *Store) AddExpense(tenantID uuid.UUID, folio string, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expenses[tenantID] == nil {
		s.expenses[tenantID] = make(map[string]float64)
	}
	s.expenses[tenantID][folio] += amount
}

// AddQuote registers a quote reference and returns its id.
func (s *Store) AddQuote(tenantID uuid.UUID, ref string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quotes[tenantID] == nil {
		s.quotes[tenantID] = make(map[string]uuid.UUID)
	}
	id := uuid.New()
	s.quotes[tenantID][strings.ToLower(strings.TrimSpace(ref))] = id
	return id
}

// PutMapping stores a mapping definition after validating it.
func (s *Store) PutMapping(def *freight.MappingDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if def.ID == uuid.Nil {
		def.ID = uuid.New()
	}
	cp := *def
	s.mappings[def.ID] = &cp
	return nil
}

// Freights implements engine.FreightStore.
type Freights struct{ s *Store }

func (f Freights) GetByFolio(_ context.Context, tenantID uuid.UUID, folio string) (*freight.Record, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	rec, ok := f.s.freights[tenantID][folio]
	if !ok {
		return nil, fmt.Errorf("freight %s: %w", folio, freight.ErrNotFound)
	}
	cp := *rec
	return &cp, nil
}

func (f Freights) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]freight.Record, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	recs := make([]freight.Record, 0, len(f.s.freights[tenantID]))
	for _, rec := range f.s.freights[tenantID] {
		recs = append(recs, *rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Folio < recs[j].Folio })
	return recs, nil
}

func (f Freights) Create(_ context.Context, rec *freight.Record) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	if f.s.freights[rec.TenantID] == nil {
		f.s.freights[rec.TenantID] = make(map[string]*freight.Record)
	}
	if rec.Folio == "" {
		f.s.folioSeq[rec.TenantID]++
		rec.Folio = fmt.Sprintf("F-%05d", f.s.folioSeq[rec.TenantID])
	}
	if _, exists := f.s.freights[rec.TenantID][rec.Folio]; exists {
		return fmt.Errorf("freight %s already exists", rec.Folio)
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	cp := *rec
	f.s.freights[rec.TenantID][rec.Folio] = &cp
	return nil
}

func (f Freights) UpdateFields(_ context.Context, tenantID uuid.UUID, folio string, patch freight.FieldPatch) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	rec, ok := f.s.freights[tenantID][folio]
	if !ok {
		return fmt.Errorf("freight %s: %w", folio, freight.ErrNotFound)
	}
	if patch.CustomerID != nil {
		rec.CustomerID = *patch.CustomerID
	}
	if patch.Origin != nil {
		rec.Origin = *patch.Origin
	}
	if patch.Destination != nil {
		rec.Destination = *patch.Destination
	}
	if patch.Price != nil {
		rec.Price = patch.Price
	}
	if patch.Distance != nil {
		rec.Distance = patch.Distance
	}
	if patch.StartDate != nil {
		rec.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		rec.EndDate = patch.EndDate
	}
	if patch.Notes != nil {
		rec.Notes = *patch.Notes
	}
	return nil
}

func (f Freights) ExpenseTotals(_ context.Context, tenantID uuid.UUID) (map[string]float64, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	totals := make(map[string]float64, len(f.s.expenses[tenantID]))
	for folio, amount := range f.s.expenses[tenantID] {
		totals[folio] = amount
	}
	return totals, nil
}

// Customers implements engine.CustomerStore.
type Customers struct{ s *Store }

// FindByName matches case-insensitively on substring, returning the earliest
// created match so repeated lookups stay stable.
func (c Customers) FindByName(_ context.Context, tenantID uuid.UUID, name string) (uuid.UUID, bool, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return uuid.Nil, false, nil
	}
	for _, cu := range c.s.customers[tenantID] {
		if strings.Contains(strings.ToLower(cu.name), needle) {
			return cu.id, true, nil
		}
	}
	return uuid.Nil, false, nil
}

func (c Customers) Create(_ context.Context, tenantID uuid.UUID, name string) (uuid.UUID, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	id := uuid.New()
	c.s.customers[tenantID] = append(c.s.customers[tenantID], customer{id: id, name: name})
	return id, nil
}

// Quotes implements engine.QuoteStore.
type Quotes struct{ s *Store }

func (q Quotes) FindByRef(_ context.Context, tenantID uuid.UUID, ref string) (uuid.UUID, bool, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()

	id, ok := q.s.quotes[tenantID][strings.ToLower(strings.TrimSpace(ref))]
	return id, ok, nil
}

// Mappings implements engine.MappingStore.
type Mappings struct{ s *Store }

func (m Mappings) Get(_ context.Context, tenantID, id uuid.UUID) (*freight.MappingDefinition, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	def, ok := m.s.mappings[id]
	if !ok || def.TenantID != tenantID {
		return nil, fmt.Errorf("mapping %s: %w", id, freight.ErrNotFound)
	}
	cp := *def
	return &cp, nil
}

// Operations implements engine.OperationStore.
type Operations struct{ s *Store }

func (o Operations) Insert(_ context.Context, entry *freight.OperationLog) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	o.s.ops = append(o.s.ops, *entry)
	return nil
}

func (o Operations) ListByTenant(_ context.Context, tenantID uuid.UUID, limit int) ([]freight.OperationLog, error) {
	o.s.mu.RLock()
	defer o.s.mu.RUnlock()

	entries := make([]freight.OperationLog, 0, limit)
	for i := len(o.s.ops) - 1; i >= 0 && len(entries) < limit; i-- {
		if o.s.ops[i].TenantID == tenantID {
			entries = append(entries, o.s.ops[i])
		}
	}
	return entries, nil
}
