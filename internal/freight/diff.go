package freight

// ConflictKind classifies one reconciliation discrepancy.
type ConflictKind string

const (
	// ConflictValue marks a field whose value differs between file and store.
	ConflictValue ConflictKind = "valor_diferente"
	// ConflictOnlyInFile marks a folio present in the file but not the store.
	ConflictOnlyInFile ConflictKind = "solo_en_archivo"
	// ConflictOnlyInStore marks a folio present in the store but not the file.
	ConflictOnlyInStore ConflictKind = "solo_en_logiprofit"
)

// DiffEntry is one reconciliation finding. A record with three differing
// fields produces three entries sharing the same folio. Entries are immutable
// once produced.
type DiffEntry struct {
	Folio      string       `json:"folio"`
	FreightID  string       `json:"fleteId"`
	Field      string       `json:"campo"`
	StoreValue string       `json:"valorLogiProfit"`
	FileValue  string       `json:"valorArchivo"`
	Kind       ConflictKind `json:"tipoConflicto"`
}
