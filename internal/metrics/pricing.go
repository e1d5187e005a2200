package metrics

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rfrancav/vendalytics/config"
	"github.com/rfrancav/vendalytics/internal/cleaning"
	"github.com/rfrancav/vendalytics/internal/schema"
)

// PriceStats describes unit-price dispersion for one category or product.
// Dispersion uses the sample standard deviation; CV is std over mean.
type PriceStats struct {
	Label     string
	Orders    int
	Quantity  int64
	Revenue   decimal.Decimal
	MeanPrice float64
	MinPrice  float64
	MaxPrice  float64
	StdPrice  float64
	PriceCV   float64
	// MarginPotentialPct is the max-min spread relative to the minimum
	// price, a proxy for pricing headroom.
	MarginPotentialPct float64
}

// Pricing is the price dispersion view of the dataset: per-category and
// per-product statistics plus the products whose price variation qualifies
// them for a pricing review.
type Pricing struct {
	Categories []PriceStats // sorted by CV descending
	Products   []PriceStats // sorted by CV descending

	// Opportunities are products with CV above the threshold and enough
	// transactions to trust the dispersion, capped at ReportTopN.
	Opportunities []PriceStats

	TopVariationCategory PriceStats
	TopMarginCategory    PriceStats
}

// PriceAnalysis computes price dispersion per category and product. A
// product sold at one price has zero dispersion and never qualifies as an
// opportunity.
func PriceAnalysis(ds *cleaning.Dataset) Pricing {
	var p Pricing
	p.Categories = priceStatsBy(ds, func(o schema.OrderLine) string { return o.Category })
	p.Products = priceStatsBy(ds, func(o schema.OrderLine) string { return o.Product })

	if len(p.Categories) > 0 {
		p.TopVariationCategory = p.Categories[0]
		top := p.Categories[0]
		for _, c := range p.Categories[1:] {
			if c.MarginPotentialPct > top.MarginPotentialPct {
				top = c
			}
		}
		p.TopMarginCategory = top
	}

	for _, st := range p.Products {
		if st.PriceCV > config.PricingCVThreshold && st.Orders >= config.PricingMinTransactions {
			p.Opportunities = append(p.Opportunities, st)
		}
		if len(p.Opportunities) == config.ReportTopN {
			break
		}
	}
	return p
}

// priceStatsBy aggregates unit-price statistics by an arbitrary key,
// sorted by price CV descending with label as tie-break.
func priceStatsBy(ds *cleaning.Dataset, key func(schema.OrderLine) string) []PriceStats {
	type acc struct {
		prices   []float64
		quantity int64
		revenue  decimal.Decimal
	}
	byKey := map[string]*acc{}
	for _, o := range ds.Orders {
		k := key(o)
		a, ok := byKey[k]
		if !ok {
			a = &acc{}
			byKey[k] = a
		}
		a.prices = append(a.prices, o.UnitPrice.InexactFloat64())
		a.quantity += int64(o.Quantity)
		a.revenue = a.revenue.Add(o.TotalValue)
	}

	out := make([]PriceStats, 0, len(byKey))
	for k, a := range byKey {
		st := PriceStats{
			Label:    k,
			Orders:   len(a.prices),
			Quantity: a.quantity,
			Revenue:  a.revenue,
			MinPrice: a.prices[0],
			MaxPrice: a.prices[0],
		}
		var sum float64
		for _, v := range a.prices {
			sum += v
			if v < st.MinPrice {
				st.MinPrice = v
			}
			if v > st.MaxPrice {
				st.MaxPrice = v
			}
		}
		st.MeanPrice = sum / float64(st.Orders)
		st.StdPrice = sampleStd(a.prices, st.MeanPrice)
		if st.MeanPrice > 0 {
			st.PriceCV = st.StdPrice / st.MeanPrice
		}
		if st.MinPrice > 0 {
			st.MarginPotentialPct = math.Round((st.MaxPrice-st.MinPrice)/st.MinPrice*1000) / 10
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PriceCV != out[j].PriceCV {
			return out[i].PriceCV > out[j].PriceCV
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func sampleStd(vals []float64, mean float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}
