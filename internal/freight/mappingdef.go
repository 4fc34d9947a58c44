package freight

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// FieldMapping pairs one canonical field with the external column (or XML tag)
// that carries it in a particular source system's files.
type FieldMapping struct {
	Canonical string `json:"campoCanonico"`
	Column    string `json:"columnaExterna"`
}

// MappingDefinition is one integration profile: which external system, which
// file format, and how its columns translate to canonical fields. Definitions
// are owned by the surrounding application and are immutable during a single
// operation; updates replace the definition rather than mutating it in place.
type MappingDefinition struct {
	ID           uuid.UUID      `json:"id"`
	TenantID     uuid.UUID      `json:"-"`
	SourceSystem string         `json:"sistemaOrigen"`
	Format       string         `json:"formato"`
	Fields       []FieldMapping `json:"campos"`
	Active       bool           `json:"activo"`
}

// Validate checks that every mapped field is a member of the canonical set and
// that no canonical field is mapped twice. Called when a definition is stored,
// not per operation.
func (d *MappingDefinition) Validate() error {
	seen := make(map[string]bool, len(d.Fields))
	for _, fm := range d.Fields {
		if !KnownField(fm.Canonical) {
			return fmt.Errorf("unknown canonical field %q", fm.Canonical)
		}
		if strings.TrimSpace(fm.Column) == "" {
			return fmt.Errorf("empty column for field %q", fm.Canonical)
		}
		if seen[fm.Canonical] {
			return fmt.Errorf("field %q mapped twice", fm.Canonical)
		}
		seen[fm.Canonical] = true
	}
	return nil
}

// ColumnFor returns the external column configured for a canonical field.
func (d *MappingDefinition) ColumnFor(canonical string) (string, bool) {
	for _, fm := range d.Fields {
		if fm.Canonical == canonical {
			return fm.Column, true
		}
	}
	return "", false
}

// Columns returns the external column names in definition order.
func (d *MappingDefinition) Columns() []string {
	cols := make([]string, len(d.Fields))
	for i, fm := range d.Fields {
		cols[i] = fm.Column
	}
	return cols
}
