// Package engine implements the import, preview, reconciliation, selective
// sync and export operations over canonical freight records. All operations
// are request-scoped and single-pass: they parse the incoming payload once,
// walk rows sequentially and run to completion within one invocation.
// Concurrent operations against the same tenant are not coordinated here and
// must be serialized by the caller.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/logiprofit/freightsync/internal/freight"
	"github.com/logiprofit/freightsync/internal/tabular"
)

// Fatal operation errors. These abort with zero side effects; everything
// else is collected as row- or key-scoped detail in the operation result.
var (
	ErrFileTooLarge    = errors.New("file exceeds size limit")
	ErrMappingInactive = errors.New("mapping definition is inactive")
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultMaxFileSize = 10 << 20 // 10 MiB
	DefaultPreviewRows = 10
)

// Options tunes operational limits of the engine.
type Options struct {
	// MaxFileSize bounds incoming payloads in bytes.
	MaxFileSize int64
	// PreviewRows bounds how many data rows Preview maps and returns.
	PreviewRows int
}

// Service orchestrates the engine operations over the injected stores.
type Service struct {
	freights   FreightStore
	customers  CustomerStore
	quotes     QuoteStore
	mappings   MappingStore
	operations OperationStore

	maxFileSize int64
	previewRows int
}

// NewService creates an engine service over the given stores.
func NewService(st Stores, opts Options) *Service {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = DefaultPreviewRows
	}
	return &Service{
		freights:    st.Freights,
		customers:   st.Customers,
		quotes:      st.Quotes,
		mappings:    st.Mappings,
		operations:  st.Operations,
		maxFileSize: opts.MaxFileSize,
		previewRows: opts.PreviewRows,
	}
}

// loadMapping fetches an active mapping definition and resolves its format
// tag. Missing, inactive or unknown-format definitions are fatal.
func (s *Service) loadMapping(ctx context.Context, tenantID, mappingID uuid.UUID) (*freight.MappingDefinition, tabular.Format, error) {
	def, err := s.mappings.Get(ctx, tenantID, mappingID)
	if err != nil {
		return nil, "", fmt.Errorf("mapping %s: %w", mappingID, err)
	}
	if !def.Active {
		return nil, "", fmt.Errorf("mapping %s: %w", mappingID, ErrMappingInactive)
	}
	format, err := tabular.ParseFormat(def.Format)
	if err != nil {
		return nil, "", err
	}
	return def, format, nil
}

// parseFile enforces the size bound and decodes the payload once for the
// whole operation.
func (s *Service) parseFile(format tabular.Format, data []byte) (*tabular.Table, error) {
	if int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("%w (%d bytes, limit %d)", ErrFileTooLarge, len(data), s.maxFileSize)
	}
	return tabular.Parse(format, data)
}
