package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/rfrancav/vendalytics/internal/schema"
)

// ReadCSV loads a CSV file with a header row into a raw table.
func ReadCSV(path string) (schema.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()
	return FromCSV(f)
}

// FromCSV reads CSV content from any reader. Rows with a deviating field
// count are tolerated (short rows are padded downstream).
func FromCSV(r io.Reader) (schema.RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("ingest: empty CSV input")
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, rec)
	}
	return tableFromRows(header, rows), nil
}
