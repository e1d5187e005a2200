package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rfrancav/vendalytics/config"
	"github.com/rfrancav/vendalytics/internal/schema"
)

// ReadXLSX loads one sheet of an Excel workbook into a raw table using
// streaming row reads. An empty sheet name selects the first sheet. The
// first non-empty row is taken as the header.
func ReadXLSX(path, sheet string) (schema.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("ingest: workbook has no sheets")
		}
		sheet = sheets[0]
	}

	r, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("ingest: sheet %q: %w", sheet, err)
	}
	defer func() { _ = r.Close() }()

	var header []string
	var rows [][]string
	for r.Next() {
		vals, err := r.Columns()
		if err != nil {
			return nil, fmt.Errorf("ingest: read row: %w", err)
		}
		if header == nil {
			if emptyRow(vals) {
				continue
			}
			header = vals
			continue
		}
		rows = append(rows, vals)
		if len(rows) > config.DefaultMaxRows {
			return nil, fmt.Errorf("ingest: sheet %q exceeds %d rows", sheet, config.DefaultMaxRows)
		}
	}
	if err := r.Error(); err != nil {
		return nil, fmt.Errorf("ingest: stream rows: %w", err)
	}
	if header == nil {
		return nil, fmt.Errorf("ingest: sheet %q is empty", sheet)
	}
	return tableFromRows(header, rows), nil
}

func emptyRow(vals []string) bool {
	for _, v := range vals {
		if v != "" {
			return false
		}
	}
	return true
}
