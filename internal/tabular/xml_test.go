package tabular

import (
	"errors"
	"testing"
)

func TestParseXML_RecordArray(t *testing.T) {
	data := []byte(`<?xml version="1.0"?>
<fletes>
  <flete><Folio>F-1</Folio><Origen>Monterrey</Origen></flete>
  <flete><Folio>F-2</Folio><Origen>CDMX</Origen></flete>
</fletes>`)

	table, err := Parse(FormatXML, data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2", len(table.Rows))
	}
	if got := table.Rows[1]["Origen"]; got != "CDMX" {
		t.Errorf("Origen = %q, want CDMX", got)
	}
	if len(table.Columns) != 2 {
		t.Errorf("Columns = %v, want [Folio Origen]", table.Columns)
	}
}

func TestParseXML_NestedEnvelope(t *testing.T) {
	data := []byte(`<export><meta><fecha>2024-03-01</fecha></meta><datos>
  <registro><Folio>F-1</Folio></registro>
  <registro><Folio>F-2</Folio></registro>
</datos></export>`)

	table, err := Parse(FormatXML, data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(table.Rows) != 2 {
		t.Errorf("Rows = %d, want repeated element found under envelope", len(table.Rows))
	}
}

func TestParseXML_AttributesKeptButNotColumns(t *testing.T) {
	data := []byte(`<fletes>
  <flete id="10"><Folio>F-1</Folio></flete>
  <flete id="11"><Folio>F-2</Folio></flete>
</fletes>`)

	table, err := Parse(FormatXML, data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	for _, col := range table.Columns {
		if col == "-id" {
			t.Error("attribute key listed in Columns")
		}
	}
	if got := table.Rows[0]["-id"]; got != "10" {
		t.Errorf("row attribute -id = %q, want 10", got)
	}
}

func TestParseXML_SingleRecord(t *testing.T) {
	data := []byte(`<fletes>
  <flete><Folio>F-00010</Folio><Origen>Monterrey</Origen><Destino>Laredo</Destino></flete>
</fletes>`)

	table, err := Parse(FormatXML, data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("Rows = %d, want single record accepted", len(table.Rows))
	}
	if got := table.Rows[0]["Folio"]; got != "F-00010" {
		t.Errorf("Folio = %q, want F-00010", got)
	}
	if len(table.Columns) != 3 {
		t.Errorf("Columns = %v, want [Destino Folio Origen]", table.Columns)
	}
}

func TestParseXML_SingleRecordWithoutEnvelope(t *testing.T) {
	data := []byte(`<flete><Folio>F-1</Folio><Origen>CDMX</Origen></flete>`)

	table, err := Parse(FormatXML, data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0]["Origen"] != "CDMX" {
		t.Errorf("Rows = %+v, want one record", table.Rows)
	}
}

func TestParseXML_NoRecordElement(t *testing.T) {
	data := []byte(`<fletes></fletes>`)

	_, err := Parse(FormatXML, data)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
	if pe.Format != FormatXML {
		t.Errorf("ParseError.Format = %q, want xml", pe.Format)
	}
}

func TestParseXML_Malformed(t *testing.T) {
	_, err := Parse(FormatXML, []byte("<fletes><flete>"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
}

func TestSerializeXML_SingleRowRoundTrip(t *testing.T) {
	columns := []string{"Folio", "Origen"}
	rows := []Row{{"Folio": "F-1", "Origen": "Monterrey"}}

	out, err := Serialize(FormatXML, columns, rows)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	table, err := Parse(FormatXML, out)
	if err != nil {
		t.Fatalf("Parse(serialized) error = %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0]["Folio"] != "F-1" {
		t.Errorf("Rows = %+v, want the single record back", table.Rows)
	}
}

func TestSerializeXML_RoundTrip(t *testing.T) {
	columns := []string{"Folio", "Origen"}
	rows := []Row{
		{"Folio": "F-1", "Origen": "Monterrey"},
		{"Folio": "F-2", "Origen": "CDMX"},
	}

	out, err := Serialize(FormatXML, columns, rows)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	table, err := Parse(FormatXML, out)
	if err != nil {
		t.Fatalf("Parse(serialized) error = %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2", len(table.Rows))
	}
	if got := table.Rows[0]["Folio"]; got != "F-1" {
		t.Errorf("Folio = %q, want F-1", got)
	}
}
