package schema

// ValidationReport accumulates row accounting across validation and
// cleaning. The validator fills the acceptance counters; the cleaning
// pipeline fills deduplication, imputation, and outlier counters.
type ValidationReport struct {
	TotalRows int
	Accepted  int
	Rejected  map[string]int // reason code -> count

	// Filled by the cleaning pipeline.
	DuplicatesRemoved int
	Imputed           map[string]int // column -> count
	OutliersClipped   int
	OutliersDropped   int
	ValuesReconciled  int

	// Bounded sample of rejected cells for diagnostics.
	Samples []ParseError
}

// NewValidationReport returns a report with initialized counters.
func NewValidationReport() *ValidationReport {
	return &ValidationReport{
		Rejected: map[string]int{},
		Imputed:  map[string]int{},
	}
}

// RejectedTotal sums rejections across all reasons.
func (r *ValidationReport) RejectedTotal() int {
	n := 0
	for _, c := range r.Rejected {
		n += c
	}
	return n
}

// reject counts a rejection and keeps a bounded sample of the offending cell.
func (r *ValidationReport) reject(pe ParseError, sampleCap int) {
	r.Rejected[string(pe.Reason)]++
	if len(r.Samples) < sampleCap {
		r.Samples = append(r.Samples, pe)
	}
}
