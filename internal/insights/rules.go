package insights

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/rfrancav/vendalytics/config"
	"github.com/rfrancav/vendalytics/internal/metrics"
	"github.com/rfrancav/vendalytics/internal/rfv"
)

// Options carries the configurable rule thresholds.
type Options struct {
	// ConcentrationThreshold is the revenue share above which a single
	// product or channel is flagged (fraction, e.g. 0.40).
	ConcentrationThreshold float64
	// DeclineThreshold is the period-over-period revenue drop that fires
	// the trend rule (fraction, e.g. 0.15).
	DeclineThreshold float64
	// SegmentRiskThreshold flags the combined At Risk + Lost customer share.
	SegmentRiskThreshold float64
	// GeoConcentrationShare is the top-3 state share below which geographic
	// expansion is suggested.
	GeoConcentrationShare float64
	// PricingCVThreshold is the unit-price coefficient of variation above
	// which a category's pricing strategy is flagged for review.
	PricingCVThreshold float64
	// TrendBucket selects the period resolution for the trend rule.
	TrendBucket metrics.Bucket
}

// DefaultOptions returns rule thresholds from the config package.
func DefaultOptions() Options {
	return Options{
		ConcentrationThreshold: config.DefaultConcentrationThreshold,
		DeclineThreshold:       config.DefaultDeclineThreshold,
		SegmentRiskThreshold:   config.DefaultSegmentRiskThreshold,
		GeoConcentrationShare:  config.DefaultGeoConcentrationShare,
		PricingCVThreshold:     config.PricingCVThreshold,
		TrendBucket:            metrics.Bucket(config.DefaultTrendBucket),
	}
}

// Facts is the read-only evidence a rule evaluates against.
type Facts struct {
	Summary      metrics.Summary
	Products     []metrics.Group
	Channels     []metrics.Group
	States       []metrics.Group
	PeriodSeries []metrics.Group // chronological
	Seasonality  metrics.Seasonality
	Pricing      metrics.Pricing
	SegmentStats []rfv.SegmentStat
	Customers    int
}

// Rule couples a predicate with its message template and priority. Evaluate
// returns the finding and whether it fired; ErrInsufficientData skips the
// rule without failing the run.
type Rule struct {
	Name     string
	Category string
	Priority Priority
	Evaluate func(f Facts, opts Options) (Insight, bool, error)
}

// Rules is the fixed rule table, evaluated independently in order.
var Rules = []Rule{
	{Name: "product_concentration", Category: "concentration", Priority: PriorityRisk, Evaluate: productConcentration},
	{Name: "channel_concentration", Category: "concentration", Priority: PriorityRisk, Evaluate: channelConcentration},
	{Name: "segment_risk", Category: "segments", Priority: PriorityRisk, Evaluate: segmentRisk},
	{Name: "revenue_decline", Category: "trend", Priority: PriorityRisk, Evaluate: revenueDecline},
	{Name: "geo_expansion", Category: "geography", Priority: PriorityOpportunity, Evaluate: geoExpansion},
	{Name: "pricing_review", Category: "pricing", Priority: PriorityOpportunity, Evaluate: pricingReview},
	{Name: "champions_loyalty", Category: "segments", Priority: PriorityOpportunity, Evaluate: championsLoyalty},
	{Name: "seasonality_level", Category: "seasonality", Priority: PriorityInfo, Evaluate: seasonalityLevel},
	{Name: "top_product", Category: "product", Priority: PriorityInfo, Evaluate: topProduct},
	{Name: "segment_distribution", Category: "segments", Priority: PriorityInfo, Evaluate: segmentDistribution},
}

// Generate evaluates every rule and returns the fired findings sorted by
// priority (risk first). Order within a priority follows the rule table, so
// output is deterministic.
func Generate(logger zerolog.Logger, f Facts, opts Options) []Insight {
	out := make([]Insight, 0, len(Rules))
	for _, r := range Rules {
		ins, fired, err := r.Evaluate(f, opts)
		if err != nil {
			logger.Debug().Str("rule", r.Name).Err(err).Msg("insight rule skipped")
			continue
		}
		if !fired {
			continue
		}
		ins.Rule = r.Name
		ins.Category = r.Category
		ins.Priority = r.Priority
		out = append(out, ins)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

func productConcentration(f Facts, opts Options) (Insight, bool, error) {
	return leaderConcentration(f.Products, "product", opts.ConcentrationThreshold)
}

func channelConcentration(f Facts, opts Options) (Insight, bool, error) {
	return leaderConcentration(f.Channels, "sales channel", opts.ConcentrationThreshold)
}

func leaderConcentration(groups []metrics.Group, noun string, threshold float64) (Insight, bool, error) {
	if len(groups) == 0 {
		return Insight{}, false, ErrInsufficientData
	}
	lead := groups[0]
	if lead.Share <= threshold {
		return Insight{}, false, nil
	}
	return Insight{
		Message: fmt.Sprintf("%s %q concentrates %.1f%% of revenue (threshold %.0f%%); diversification reduces dependency risk",
			noun, lead.Label, metrics.RoundPct(lead.Share), threshold*100),
		Metric: lead.Share,
	}, true, nil
}

func segmentRisk(f Facts, opts Options) (Insight, bool, error) {
	if len(f.SegmentStats) == 0 {
		return Insight{}, false, ErrInsufficientData
	}
	var share float64
	var customers int
	for _, st := range f.SegmentStats {
		if st.Segment == rfv.SegmentAtRisk || st.Segment == rfv.SegmentLost {
			share += st.CustomerPct
			customers += st.Customers
		}
	}
	if share <= opts.SegmentRiskThreshold {
		return Insight{}, false, nil
	}
	return Insight{
		Message: fmt.Sprintf("%d customers (%.1f%%) are At Risk or Lost; reactivation campaigns are advised",
			customers, metrics.RoundPct(share)),
		Metric: share,
	}, true, nil
}

func revenueDecline(f Facts, opts Options) (Insight, bool, error) {
	current, previous, err := lastCompletePair(f.PeriodSeries, opts.TrendBucket, f.Summary.DateEnd)
	if err != nil {
		return Insight{}, false, err
	}
	prev := previous.Revenue.InexactFloat64()
	cur := current.Revenue.InexactFloat64()
	if prev <= 0 {
		return Insight{}, false, ErrInsufficientData
	}
	decline := (prev - cur) / prev
	if decline < opts.DeclineThreshold {
		return Insight{}, false, nil
	}
	return Insight{
		Message: fmt.Sprintf("revenue fell %.1f%% in %s versus %s (threshold %.0f%%)",
			metrics.RoundPct(decline), current.Label, previous.Label, opts.DeclineThreshold*100),
		Metric: decline,
	}, true, nil
}

func geoExpansion(f Facts, opts Options) (Insight, bool, error) {
	if len(f.States) < 3 {
		return Insight{}, false, ErrInsufficientData
	}
	top3 := f.States[0].Share + f.States[1].Share + f.States[2].Share
	if top3 >= opts.GeoConcentrationShare {
		return Insight{}, false, nil
	}
	return Insight{
		Message: fmt.Sprintf("top-3 states hold only %.1f%% of revenue; demand is broad enough for national expansion",
			metrics.RoundPct(top3)),
		Metric: top3,
	}, true, nil
}

func pricingReview(f Facts, opts Options) (Insight, bool, error) {
	p := f.Pricing
	if len(p.Categories) == 0 {
		return Insight{}, false, ErrInsufficientData
	}
	top := p.TopVariationCategory
	if top.PriceCV <= opts.PricingCVThreshold && len(p.Opportunities) == 0 {
		return Insight{}, false, nil
	}
	msg := fmt.Sprintf("category %q shows high price dispersion (CV %.2f, potential margin %.1f%%)",
		top.Label, top.PriceCV, top.MarginPotentialPct)
	if n := len(p.Opportunities); n > 0 {
		msg += fmt.Sprintf("; %d products qualify for price standardization", n)
	}
	return Insight{Message: msg, Metric: top.PriceCV}, true, nil
}

func championsLoyalty(f Facts, opts Options) (Insight, bool, error) {
	for _, st := range f.SegmentStats {
		if st.Segment != rfv.SegmentChampions || st.Customers == 0 {
			continue
		}
		return Insight{
			Message: fmt.Sprintf("%d Champions generate %.1f%% of revenue; a loyalty program protects this base",
				st.Customers, metrics.RoundPct(st.RevenueShare)),
			Metric: st.RevenueShare,
		}, true, nil
	}
	return Insight{}, false, nil
}

func seasonalityLevel(f Facts, _ Options) (Insight, bool, error) {
	s := f.Seasonality
	if len(s.ByQuarter) < 2 {
		return Insight{}, false, ErrInsufficientData
	}
	if s.Level == "Low" {
		return Insight{}, false, nil
	}
	return Insight{
		Message: fmt.Sprintf("%s seasonality detected (CV %.2f); %s and %ss are the strongest periods",
			s.Level, s.QuarterCV, s.BestQuarter, s.BestWeekday),
		Metric: s.QuarterCV,
	}, true, nil
}

func topProduct(f Facts, _ Options) (Insight, bool, error) {
	if len(f.Products) == 0 {
		return Insight{}, false, ErrInsufficientData
	}
	lead := f.Products[0]
	return Insight{
		Message: fmt.Sprintf("top product %q accounts for %.1f%% of revenue", lead.Label, metrics.RoundPct(lead.Share)),
		Metric:  lead.Share,
	}, true, nil
}

func segmentDistribution(f Facts, _ Options) (Insight, bool, error) {
	if len(f.SegmentStats) == 0 {
		return Insight{}, false, ErrInsufficientData
	}
	msg := "customer base:"
	for i, st := range f.SegmentStats {
		if i > 0 {
			msg += ","
		}
		msg += fmt.Sprintf(" %s %d (%.1f%%)", st.Segment, st.Customers, metrics.RoundPct(st.CustomerPct))
	}
	return Insight{Message: msg, Metric: float64(f.Customers)}, true, nil
}
