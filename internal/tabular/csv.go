package tabular

// csv.go handles the delimited-text format. Real-world CSV exports arrive
// with a UTF-8 BOM, invalid byte sequences and ragged rows, so the payload is
// cleaned before encoding/csv sees it and short rows are padded to header
// width afterwards.

import (
	"bytes"
	"encoding/csv"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// parseCSV decodes a delimited-text payload. The first record becomes the
// column list; every following record becomes a row, with missing trailing
// cells captured as empty strings.
func parseCSV(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{Format: FormatCSV, Reason: err.Error()}
	}
	if len(records) == 0 {
		return nil, &ParseError{Format: FormatCSV, Reason: "empty file"}
	}

	columns := make([]string, len(records[0]))
	for i, h := range records[0] {
		columns[i] = trimCell(h)
	}

	table := &Table{Columns: columns}
	for _, rec := range records[1:] {
		if isEmptyRow(rec) {
			continue
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// serializeCSV renders the table as delimited text with a header row.
func serializeCSV(columns []string, rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columns); err != nil {
		return nil, err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with the Unicode replacement
// character. Valid input is returned unchanged without copying.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}
	return buf.Bytes()
}
