package freight

import (
	"time"

	"github.com/google/uuid"
)

// OperationKind identifies the top-level operation an OperationLog records.
type OperationKind string

const (
	OpImport OperationKind = "import"
	OpExport OperationKind = "export"
	OpSync   OperationKind = "sync"
)

// OperationLog is the immutable audit record written exactly once per import,
// export or sync invocation. It is never mutated after creation; corrections
// happen by running another operation, which writes its own entry.
type OperationLog struct {
	ID           uuid.UUID     `json:"id"`
	TenantID     uuid.UUID     `json:"-"`
	Kind         OperationKind `json:"tipo"`
	FileName     string        `json:"archivo"`
	Format       string        `json:"formato"`
	TotalRows    int           `json:"totalRegistros"`
	Succeeded    int           `json:"exitosos"`
	Updated      int           `json:"actualizados"`
	Failed       int           `json:"fallidos"`
	ErrorDetails []RowError    `json:"detallesErrores,omitempty"`
	CreatedAt    time.Time     `json:"fecha"`
}
