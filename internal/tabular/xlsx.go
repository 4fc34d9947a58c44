package tabular

// xlsx.go handles the spreadsheet format via excelize. Only the first sheet
// is read; accounting systems that emit multi-sheet workbooks put their data
// export on the first one.

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

// parseXLSX decodes the first sheet of an xlsx workbook. The first row
// becomes the column list, as with CSV.
func parseXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: FormatXLSX, Reason: err.Error()}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Format: FormatXLSX, Reason: "workbook has no sheets"}
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Format: FormatXLSX, Reason: err.Error()}
	}
	if len(records) == 0 {
		return nil, &ParseError{Format: FormatXLSX, Reason: "empty sheet"}
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

// serializeXLSX renders the table as a single-sheet workbook. A cell that
// fails to write is left empty; the export continues.
func serializeXLSX(columns []string, rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	cells := make([]interface{}, len(columns))
	for i, row := range rows {
		for j, col := range columns {
			cells[j] = row[col]
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			continue
		}
		if err := f.SetSheetRow(exportSheet, addr, &cells); err != nil {
			continue
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
