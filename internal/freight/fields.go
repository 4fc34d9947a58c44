package freight

// Canonical field names are a closed enumeration. Mapping definitions may only
// reference these names; anything else is rejected when the definition is
// validated, so a typo fails at configuration time instead of silently at
// runtime.
const (
	FieldFolio       = "folio"
	FieldCustomer    = "cliente"
	FieldQuote       = "cotizacion"
	FieldOrigin      = "origen"
	FieldDestination = "destino"
	FieldPrice       = "precioCliente"
	FieldDistance    = "kilometrosReales"
	FieldStartDate   = "fechaInicio"
	FieldEndDate     = "fechaFin"
	FieldNotes       = "notas"
)

// CanonicalFields lists every canonical field in its natural export order.
var CanonicalFields = []string{
	FieldFolio,
	FieldCustomer,
	FieldQuote,
	FieldOrigin,
	FieldDestination,
	FieldPrice,
	FieldDistance,
	FieldStartDate,
	FieldEndDate,
	FieldNotes,
}

var canonicalSet = func() map[string]bool {
	m := make(map[string]bool, len(CanonicalFields))
	for _, f := range CanonicalFields {
		m[f] = true
	}
	return m
}()

// KnownField reports whether name is a member of the canonical field set.
func KnownField(name string) bool {
	return canonicalSet[name]
}
