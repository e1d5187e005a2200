package schema

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns missing from the input header. It is
// fatal: a run aborts before cleaning when the schema cannot be satisfied.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: required columns missing: %s", strings.Join(e.Missing, ", "))
}

// EmptyDatasetError reports that zero valid rows survived validation. It is
// fatal: no metrics or profiles are produced.
type EmptyDatasetError struct {
	TotalRows int
	Rejected  int
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("schema: no valid rows after validation (%d rows read, %d rejected)", e.TotalRows, e.Rejected)
}

// ParseError describes a single rejected cell. Rows carrying one are dropped
// and counted; the run continues. A bounded sample is kept in the
// ValidationReport for diagnostics.
type ParseError struct {
	Row    int // 1-based data row index
	Column string
	Value  string
	Reason Reason
}

func (e ParseError) Error() string {
	return fmt.Sprintf("schema: row %d column %s: %s (value %q)", e.Row, e.Column, e.Reason.Describe(), e.Value)
}
