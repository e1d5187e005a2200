// Package ingest reads CSV and Excel files into the raw tabular form
// consumed by the schema validator. Extra columns are carried through (and
// ignored downstream); column order is irrelevant.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rfrancav/vendalytics/internal/schema"
)

// Read dispatches on the file extension. Supported: .csv, .xlsx, .xlsm.
func Read(path, sheet string) (schema.RawTable, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ReadCSV(path)
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, sheet)
	default:
		return nil, fmt.Errorf("ingest: unsupported format %q; use .csv, .xlsx, or .xlsm", ext)
	}
}

// tableFromRows builds a column-oriented table from a header row and data
// rows. Short rows are padded so all columns share the same length.
func tableFromRows(header []string, rows [][]string) schema.RawTable {
	table := make(schema.RawTable, len(header))
	cols := make([][]string, len(header))
	for i := range header {
		cols[i] = make([]string, len(rows))
	}
	for r, row := range rows {
		for c := range header {
			if c < len(row) {
				cols[c][r] = row[c]
			}
		}
	}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		table[key] = cols[i]
	}
	return table
}
