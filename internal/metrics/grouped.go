package metrics

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rfrancav/vendalytics/internal/cleaning"
	"github.com/rfrancav/vendalytics/internal/schema"
)

// Group is one row of a grouped aggregate: revenue and volume for a label
// within a grouping dimension, plus its revenue share of the dimension total.
type Group struct {
	Label     string
	Revenue   decimal.Decimal
	Orders    int
	AvgTicket decimal.Decimal
	Quantity  int64
	Customers int
	Share     float64
}

// Grouping keys used in the pipeline result map.
const (
	KeyByProduct  = "by_product"
	KeyByCategory = "by_category"
	KeyByState    = "by_state"
	KeyByChannel  = "by_channel"
	KeyByPeriod   = "by_period"
)

// Bucket selects the time resolution for period groupings.
type Bucket string

const (
	BucketDay     Bucket = "day"
	BucketWeek    Bucket = "week"
	BucketMonth   Bucket = "month"
	BucketQuarter Bucket = "quarter"
)

// ByProduct aggregates revenue per product, sorted descending by revenue.
func ByProduct(ds *cleaning.Dataset) []Group {
	return groupBy(ds, func(o schema.OrderLine) string { return o.Product })
}

// ByCategory aggregates revenue per category, sorted descending by revenue.
func ByCategory(ds *cleaning.Dataset) []Group {
	return groupBy(ds, func(o schema.OrderLine) string { return o.Category })
}

// ByState aggregates revenue per state, sorted descending by revenue.
func ByState(ds *cleaning.Dataset) []Group {
	return groupBy(ds, func(o schema.OrderLine) string { return o.State })
}

// ByChannel aggregates revenue per sales channel, sorted descending by revenue.
func ByChannel(ds *cleaning.Dataset) []Group {
	return groupBy(ds, func(o schema.OrderLine) string { return o.Channel })
}

// ByPeriod aggregates revenue per time bucket, sorted descending by revenue.
// Use PeriodSeries for a chronological view.
func ByPeriod(ds *cleaning.Dataset, b Bucket) []Group {
	return groupBy(ds, func(o schema.OrderLine) string { return PeriodKey(o, b) })
}

// PeriodSeries aggregates revenue per time bucket in chronological order.
// Bucket labels sort lexically in time order by construction.
func PeriodSeries(ds *cleaning.Dataset, b Bucket) []Group {
	groups := groupBy(ds, func(o schema.OrderLine) string { return PeriodKey(o, b) })
	sort.Slice(groups, func(i, j int) bool { return groups[i].Label < groups[j].Label })
	return groups
}

// PeriodKey formats the sortable bucket label for an order line.
func PeriodKey(o schema.OrderLine, b Bucket) string {
	switch b {
	case BucketDay:
		return o.OrderDate.Format("2006-01-02")
	case BucketWeek:
		return fmt.Sprintf("%04d-W%02d", o.Year, o.Week)
	case BucketQuarter:
		return fmt.Sprintf("%04d-Q%d", o.Year, o.Quarter)
	default:
		return fmt.Sprintf("%04d-%02d", o.Year, o.Month)
	}
}

type accum struct {
	revenue   decimal.Decimal
	orders    int
	quantity  int64
	customers map[int]struct{}
}

// groupBy aggregates the dataset by an arbitrary key. Output is sorted by
// revenue descending with label as deterministic tie-break.
func groupBy(ds *cleaning.Dataset, key func(schema.OrderLine) string) []Group {
	acc := map[string]*accum{}
	total := decimal.Zero
	for _, o := range ds.Orders {
		k := key(o)
		a, ok := acc[k]
		if !ok {
			a = &accum{customers: map[int]struct{}{}}
			acc[k] = a
		}
		a.revenue = a.revenue.Add(o.TotalValue)
		a.orders++
		a.quantity += int64(o.Quantity)
		a.customers[o.CustomerID] = struct{}{}
		total = total.Add(o.TotalValue)
	}

	out := make([]Group, 0, len(acc))
	for k, a := range acc {
		g := Group{
			Label:     k,
			Revenue:   a.revenue,
			Orders:    a.orders,
			AvgTicket: a.revenue.Div(decimal.NewFromInt(int64(a.orders))),
			Quantity:  a.quantity,
			Customers: len(a.customers),
		}
		if total.IsPositive() {
			g.Share = a.revenue.Div(total).InexactFloat64()
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].Label < out[j].Label
	})
	return out
}
