package rfv

import (
	"github.com/shopspring/decimal"
)

// Segment is a named customer segment from the closed taxonomy below.
type Segment string

// Segments ordered by business value. The rule table is total: every
// (R,F,V) triple in 1..5 maps to exactly one segment.
const (
	SegmentChampions          Segment = "Champions"
	SegmentLoyalCustomers     Segment = "Loyal Customers"
	SegmentNewCustomers       Segment = "New Customers"
	SegmentPotentialLoyalists Segment = "Potential Loyalists"
	SegmentAtRisk             Segment = "At Risk"
	SegmentLost               Segment = "Lost"
)

// Segments lists the taxonomy in business-value order.
var Segments = []Segment{
	SegmentChampions,
	SegmentLoyalCustomers,
	SegmentNewCustomers,
	SegmentPotentialLoyalists,
	SegmentAtRisk,
	SegmentLost,
}

type segmentRule struct {
	segment Segment
	match   func(r, f, v int) bool
}

// segmentRules evaluate in order; the final rule is a catch-all, so the
// table is total by construction.
var segmentRules = []segmentRule{
	{SegmentChampions, func(r, f, v int) bool { return r >= 4 && f >= 4 && v >= 4 }},
	{SegmentLoyalCustomers, func(r, f, v int) bool { return f >= 4 && v >= 3 }},
	{SegmentNewCustomers, func(r, f, v int) bool { return r >= 4 && f <= 2 }},
	{SegmentAtRisk, func(r, f, v int) bool { return r <= 2 && (f >= 3 || v >= 3) }},
	{SegmentLost, func(r, f, v int) bool { return r <= 2 }},
	{SegmentPotentialLoyalists, func(r, f, v int) bool { return true }},
}

// Classify maps an (R,F,V) score triple to its segment.
func Classify(r, f, v int) Segment {
	for _, rule := range segmentRules {
		if rule.match(r, f, v) {
			return rule.segment
		}
	}
	return SegmentPotentialLoyalists // unreachable; the table is total
}

// SegmentStat aggregates profiles belonging to one segment.
type SegmentStat struct {
	Segment      Segment
	Customers    int
	CustomerPct  float64
	AvgRecency   float64
	AvgFrequency float64
	AvgMonetary  decimal.Decimal
	Revenue      decimal.Decimal
	RevenueShare float64
}

// Stats summarizes the profile population per segment, ordered by business
// value with empty segments omitted.
func Stats(profiles []Profile) []SegmentStat {
	if len(profiles) == 0 {
		return nil
	}
	byseg := map[Segment]*SegmentStat{}
	total := decimal.Zero
	for _, p := range profiles {
		st, ok := byseg[p.Segment]
		if !ok {
			st = &SegmentStat{Segment: p.Segment}
			byseg[p.Segment] = st
		}
		st.Customers++
		st.AvgRecency += float64(p.Recency)
		st.AvgFrequency += float64(p.Frequency)
		st.Revenue = st.Revenue.Add(p.Monetary)
		total = total.Add(p.Monetary)
	}

	// Iterating the taxonomy keeps output in business-value order.
	out := make([]SegmentStat, 0, len(byseg))
	for _, seg := range Segments {
		st, ok := byseg[seg]
		if !ok {
			continue
		}
		n := decimal.NewFromInt(int64(st.Customers))
		st.CustomerPct = float64(st.Customers) / float64(len(profiles))
		st.AvgRecency /= float64(st.Customers)
		st.AvgFrequency /= float64(st.Customers)
		st.AvgMonetary = st.Revenue.Div(n)
		if total.IsPositive() {
			st.RevenueShare = st.Revenue.Div(total).InexactFloat64()
		}
		out = append(out, *st)
	}
	return out
}
