// Package tabular decodes raw file payloads of a declared format into a
// uniform table shape and renders tables back out again. Parsing is pure:
// a malformed payload yields a single ParseError and no partial table, so
// the calling operation can abort with zero side effects.
package tabular

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Format tags the supported tabular file formats.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXML  Format = "xml"
)

// ErrUnsupportedFormat is returned for format tags outside the supported set.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseFormat normalizes a format tag, rejecting unknown values.
func ParseFormat(tag string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "xml":
		return FormatXML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, tag)
	}
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	return string(f)
}

// ContentType returns the MIME type used when serving files of this format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatXML:
		return "application/xml"
	default:
		return "application/octet-stream"
	}
}

// ParseError reports a payload that could not be decoded at all. It is the
// fatal half of the error taxonomy: callers abort the operation with zero
// rows processed.
type ParseError struct {
	Format Format
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed %s payload: %s", e.Format, e.Reason)
}

// Row holds one data row keyed by column name. XML rows may carry
// attribute-prefixed keys that are not listed in Table.Columns.
type Row map[string]string

// Lookup returns the value for a column, matching the name case-insensitively.
func (r Row) Lookup(column string) (string, bool) {
	if v, ok := r[column]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, column) {
			return v, true
		}
	}
	return "", false
}

// Table is the uniform parse result: an ordered column list and the data rows
// in file order. Tables are ephemeral; they are consumed by mapping and never
// persisted.
type Table struct {
	Columns []string
	Rows    []Row
}

// Parse decodes data according to format. The result row order matches the
// file; empty cells are preserved as empty strings.
func Parse(format Format, data []byte) (*Table, error) {
	switch format {
	case FormatCSV:
		return parseCSV(data)
	case FormatXLSX:
		return parseXLSX(data)
	case FormatXML:
		return parseXML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Serialize renders columns and rows to the requested format. It is the
// inverse of Parse and degrades per cell: a value that cannot be rendered
// becomes an empty cell rather than aborting the export.
func Serialize(format Format, columns []string, rows []Row) ([]byte, error) {
	switch format {
	case FormatCSV:
		return serializeCSV(columns, rows)
	case FormatXLSX:
		return serializeXLSX(columns, rows)
	case FormatXML:
		return serializeXML(columns, rows)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ExportFileName builds the deterministic name for an exported file from the
// operation timestamp and format extension.
func ExportFileName(format Format, t time.Time) string {
	return fmt.Sprintf("fletes_export_%s.%s", t.UTC().Format("20060102T150405"), format.Ext())
}

// trimCell trims surrounding whitespace from a header or cell value.
func trimCell(s string) string {
	return strings.TrimSpace(s)
}

// isEmptyRow reports whether every cell in the record is blank.
func isEmptyRow(cells []string) bool {
	for _, v := range cells {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
