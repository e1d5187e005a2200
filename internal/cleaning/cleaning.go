// Package cleaning transforms validated order lines into the cleaned
// dataset consumed by every downstream aggregation: deduplication, missing
// value imputation, IQR outlier treatment, total reconciliation, and derived
// calendar attributes. Given identical input and options the output is
// byte-for-byte identical.
package cleaning

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rfrancav/vendalytics/config"
	"github.com/rfrancav/vendalytics/internal/schema"
)

// OutlierPolicy selects how out-of-bounds valor_total rows are treated.
type OutlierPolicy string

const (
	OutlierClip OutlierPolicy = "clip"
	OutlierDrop OutlierPolicy = "drop"
	OutlierKeep OutlierPolicy = "keep"
)

// Options configures the cleaning pipeline.
type Options struct {
	OutlierPolicy OutlierPolicy
	// IQRMultiplier widens the Q1/Q3 fence; 1.5 is the conventional value.
	IQRMultiplier float64
	// Tolerance is the absolute mismatch allowed between valor_total and
	// quantidade*preco_unitario before the total is recomputed.
	Tolerance decimal.Decimal
}

// DefaultOptions returns cleaning defaults from the config package.
func DefaultOptions() Options {
	tol, _ := decimal.NewFromString(config.DefaultValueTolerance)
	return Options{
		OutlierPolicy: OutlierPolicy(config.DefaultOutlierPolicy),
		IQRMultiplier: config.DefaultIQRMultiplier,
		Tolerance:     tol,
	}
}

// Dataset is the cleaned, ordered sequence of order lines. It is owned by
// this package and read without mutation downstream.
type Dataset struct {
	Orders []schema.OrderLine
}

// Revenue sums valor_total across all orders with decimal accumulation.
func (d *Dataset) Revenue() decimal.Decimal {
	sum := decimal.Zero
	for _, o := range d.Orders {
		sum = sum.Add(o.TotalValue)
	}
	return sum
}

// Clean runs the full pipeline over validated lines. The report passed in is
// the one produced by schema.Validate; dedup, imputation, and outlier
// counters are filled here.
func Clean(lines []schema.OrderLine, report *schema.ValidationReport, opts Options) (*Dataset, error) {
	if opts.IQRMultiplier <= 0 {
		opts.IQRMultiplier = config.DefaultIQRMultiplier
	}
	if opts.Tolerance.IsZero() {
		opts.Tolerance = DefaultOptions().Tolerance
	}
	switch opts.OutlierPolicy {
	case OutlierClip, OutlierDrop, OutlierKeep:
	case "":
		opts.OutlierPolicy = OutlierClip
	default:
		return nil, fmt.Errorf("cleaning: unknown outlier policy %q", opts.OutlierPolicy)
	}

	orders := dedupe(lines, report)
	imputeCategoricals(orders, report)
	imputeTotals(orders, report)
	reconcileTotals(orders, report, opts.Tolerance)
	orders = treatOutliers(orders, report, opts)
	deriveCalendar(orders)

	return &Dataset{Orders: orders}, nil
}

// dedupe collapses rows sharing an order id, keeping the first occurrence.
func dedupe(lines []schema.OrderLine, report *schema.ValidationReport) []schema.OrderLine {
	seen := make(map[string]struct{}, len(lines))
	out := make([]schema.OrderLine, 0, len(lines))
	for _, l := range lines {
		if _, dup := seen[l.OrderID]; dup {
			report.DuplicatesRemoved++
			continue
		}
		seen[l.OrderID] = struct{}{}
		out = append(out, l)
	}
	return out
}

// imputeCategoricals fills empty categorical fields with the sentinel value
// and counts each imputation per column.
func imputeCategoricals(orders []schema.OrderLine, report *schema.ValidationReport) {
	for i := range orders {
		if orders[i].Category == "" {
			orders[i].Category = config.CategoricalSentinel
			report.Imputed[schema.ColCategory]++
		}
		if orders[i].State == "" {
			orders[i].State = config.CategoricalSentinel
			report.Imputed[schema.ColState]++
		}
		if orders[i].Channel == "" {
			orders[i].Channel = config.CategoricalSentinel
			report.Imputed[schema.ColChannel]++
		}
	}
}

// imputeTotals fills missing valor_total with the column median of the known
// totals. Reconciliation afterwards corrects any imputed value that
// disagrees with quantidade*preco_unitario beyond tolerance.
func imputeTotals(orders []schema.OrderLine, report *schema.ValidationReport) {
	known := make([]decimal.Decimal, 0, len(orders))
	for _, o := range orders {
		if o.HasTotal {
			known = append(known, o.TotalValue)
		}
	}
	median := medianDecimal(known)
	for i := range orders {
		if orders[i].HasTotal {
			continue
		}
		orders[i].TotalValue = median
		orders[i].HasTotal = true
		report.Imputed[schema.ColTotalValue]++
	}
}

// reconcileTotals enforces total_value == quantity * unit_price within
// tolerance, recomputing the total when the invariant is violated.
func reconcileTotals(orders []schema.OrderLine, report *schema.ValidationReport, tolerance decimal.Decimal) {
	for i := range orders {
		expect := orders[i].UnitPrice.Mul(decimal.NewFromInt(int64(orders[i].Quantity)))
		if orders[i].TotalValue.Sub(expect).Abs().GreaterThan(tolerance) {
			orders[i].TotalValue = expect
			report.ValuesReconciled++
		}
	}
}

// treatOutliers fences valor_total at Q1-k*IQR and Q3+k*IQR and clips or
// drops out-of-bounds rows per policy.
func treatOutliers(orders []schema.OrderLine, report *schema.ValidationReport, opts Options) []schema.OrderLine {
	if opts.OutlierPolicy == OutlierKeep || len(orders) < 4 {
		return orders
	}
	vals := make([]float64, len(orders))
	for i, o := range orders {
		vals[i] = o.TotalValue.InexactFloat64()
	}
	q1 := quantile(vals, 0.25)
	q3 := quantile(vals, 0.75)
	iqr := q3 - q1
	lo := decimal.NewFromFloat(q1 - opts.IQRMultiplier*iqr)
	hi := decimal.NewFromFloat(q3 + opts.IQRMultiplier*iqr)

	out := orders[:0]
	for _, o := range orders {
		switch {
		case o.TotalValue.LessThan(lo):
			if opts.OutlierPolicy == OutlierDrop {
				report.OutliersDropped++
				continue
			}
			o.TotalValue = lo
			report.OutliersClipped++
		case o.TotalValue.GreaterThan(hi):
			if opts.OutlierPolicy == OutlierDrop {
				report.OutliersDropped++
				continue
			}
			o.TotalValue = hi
			report.OutliersClipped++
		}
		out = append(out, o)
	}
	return out
}

// deriveCalendar fills the temporal attributes used by period groupings.
func deriveCalendar(orders []schema.OrderLine) {
	for i := range orders {
		d := orders[i].OrderDate
		orders[i].Year = d.Year()
		orders[i].Month = int(d.Month())
		orders[i].Quarter = (int(d.Month())-1)/3 + 1
		_, orders[i].Week = d.ISOWeek()
		orders[i].Weekday = d.Weekday()
	}
}

// quantile returns the linearly-interpolated q-quantile of vals (q in 0..1).
func quantile(vals []float64, q float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

func medianDecimal(vals []decimal.Decimal) decimal.Decimal {
	if len(vals) == 0 {
		return decimal.Zero
	}
	sorted := make([]decimal.Decimal, len(vals))
	copy(sorted, vals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}
