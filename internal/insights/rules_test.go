package insights

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rfrancav/vendalytics/internal/metrics"
	"github.com/rfrancav/vendalytics/internal/rfv"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProductConcentration_FiresAboveThreshold(t *testing.T) {
	f := Facts{Products: []metrics.Group{
		{Label: "Notebook Dell", Share: 0.55, Revenue: dec("5500")},
		{Label: "Mouse", Share: 0.45, Revenue: dec("4500")},
	}}

	ins, fired, err := productConcentration(f, DefaultOptions())
	require.NoError(t, err)
	require.True(t, fired)
	require.Contains(t, ins.Message, "Notebook Dell")
	require.Contains(t, ins.Message, "55.0%")
	require.InDelta(t, 0.55, ins.Metric, 1e-9)
}

func TestProductConcentration_QuietBelowThreshold(t *testing.T) {
	f := Facts{Products: []metrics.Group{{Label: "Notebook", Share: 0.60}}}
	opts := DefaultOptions()
	opts.ConcentrationThreshold = 0.70

	_, fired, err := productConcentration(f, opts)
	require.NoError(t, err)
	require.False(t, fired)
}

func TestProductConcentration_NoDataSkips(t *testing.T) {
	_, _, err := productConcentration(Facts{}, DefaultOptions())
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestSegmentRisk(t *testing.T) {
	f := Facts{SegmentStats: []rfv.SegmentStat{
		{Segment: rfv.SegmentChampions, Customers: 4, CustomerPct: 0.40},
		{Segment: rfv.SegmentAtRisk, Customers: 3, CustomerPct: 0.30},
		{Segment: rfv.SegmentLost, Customers: 3, CustomerPct: 0.30},
	}}

	ins, fired, err := segmentRisk(f, DefaultOptions())
	require.NoError(t, err)
	require.True(t, fired, "60% at risk or lost exceeds the 35% threshold")
	require.Contains(t, ins.Message, "6 customers")
	require.InDelta(t, 0.60, ins.Metric, 1e-9)

	f.SegmentStats = []rfv.SegmentStat{
		{Segment: rfv.SegmentChampions, Customers: 9, CustomerPct: 0.90},
		{Segment: rfv.SegmentLost, Customers: 1, CustomerPct: 0.10},
	}
	_, fired, err = segmentRisk(f, DefaultOptions())
	require.NoError(t, err)
	require.False(t, fired)
}

func TestRevenueDecline(t *testing.T) {
	series := []metrics.Group{
		{Label: "2024-01", Revenue: dec("1000")},
		{Label: "2024-02", Revenue: dec("700")},
	}
	f := Facts{
		PeriodSeries: series,
		Summary:      metrics.Summary{DateEnd: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
	}

	ins, fired, err := revenueDecline(f, DefaultOptions())
	require.NoError(t, err)
	require.True(t, fired, "30% drop exceeds the 15% threshold")
	require.Contains(t, ins.Message, "2024-02")
	require.InDelta(t, 0.30, ins.Metric, 1e-9)
}

func TestRevenueDecline_PartialBucketExcluded(t *testing.T) {
	// February is cut off mid-month, so the comparison is January versus
	// December and no decline fires.
	series := []metrics.Group{
		{Label: "2023-12", Revenue: dec("1000")},
		{Label: "2024-01", Revenue: dec("1100")},
		{Label: "2024-02", Revenue: dec("100")},
	}
	f := Facts{
		PeriodSeries: series,
		Summary:      metrics.Summary{DateEnd: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)},
	}

	_, fired, err := revenueDecline(f, DefaultOptions())
	require.NoError(t, err)
	require.False(t, fired)
}

func TestRevenueDecline_SingleBucketSkips(t *testing.T) {
	f := Facts{PeriodSeries: []metrics.Group{{Label: "2024-01", Revenue: dec("1000")}}}
	_, _, err := revenueDecline(f, DefaultOptions())
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestGeoExpansion(t *testing.T) {
	f := Facts{States: []metrics.Group{
		{Label: "SP", Share: 0.20},
		{Label: "RJ", Share: 0.15},
		{Label: "MG", Share: 0.15},
		{Label: "RS", Share: 0.50},
	}}

	ins, fired, err := geoExpansion(f, DefaultOptions())
	require.NoError(t, err)
	require.True(t, fired, "top-3 share 50% is below the 70% bar")
	require.InDelta(t, 0.50, ins.Metric, 1e-9)

	f.States[0].Share = 0.60
	_, fired, err = geoExpansion(f, DefaultOptions())
	require.NoError(t, err)
	require.False(t, fired)
}

func TestChampionsLoyalty(t *testing.T) {
	f := Facts{SegmentStats: []rfv.SegmentStat{
		{Segment: rfv.SegmentChampions, Customers: 7, RevenueShare: 0.42},
	}}
	ins, fired, err := championsLoyalty(f, DefaultOptions())
	require.NoError(t, err)
	require.True(t, fired)
	require.Contains(t, ins.Message, "7 Champions")

	f.SegmentStats = []rfv.SegmentStat{{Segment: rfv.SegmentLost, Customers: 3}}
	_, fired, err = championsLoyalty(f, DefaultOptions())
	require.NoError(t, err)
	require.False(t, fired)
}

func TestPricingReview(t *testing.T) {
	f := Facts{Pricing: metrics.Pricing{
		Categories: []metrics.PriceStats{
			{Label: "Eletrônicos", PriceCV: 0.35, MarginPotentialPct: 48.0},
		},
		TopVariationCategory: metrics.PriceStats{Label: "Eletrônicos", PriceCV: 0.35, MarginPotentialPct: 48.0},
		Opportunities: []metrics.PriceStats{
			{Label: "Notebook Dell", PriceCV: 0.35},
			{Label: "Mouse Gamer", PriceCV: 0.22},
		},
	}}

	ins, fired, err := pricingReview(f, DefaultOptions())
	require.NoError(t, err)
	require.True(t, fired)
	require.Contains(t, ins.Message, "Eletrônicos")
	require.Contains(t, ins.Message, "2 products qualify")
	require.InDelta(t, 0.35, ins.Metric, 1e-9)
}

func TestPricingReview_QuietWithoutDispersion(t *testing.T) {
	f := Facts{Pricing: metrics.Pricing{
		Categories:           []metrics.PriceStats{{Label: "Flat", PriceCV: 0.02}},
		TopVariationCategory: metrics.PriceStats{Label: "Flat", PriceCV: 0.02},
	}}
	_, fired, err := pricingReview(f, DefaultOptions())
	require.NoError(t, err)
	require.False(t, fired)
}

func TestPricingReview_NoDataSkips(t *testing.T) {
	_, _, err := pricingReview(Facts{}, DefaultOptions())
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestSeasonalityLevel(t *testing.T) {
	f := Facts{Seasonality: metrics.Seasonality{
		ByQuarter:   []metrics.Group{{Label: "Q1"}, {Label: "Q4"}},
		BestQuarter: "Q4",
		BestWeekday: "Friday",
		QuarterCV:   0.45,
		Level:       "High",
	}}
	ins, fired, err := seasonalityLevel(f, DefaultOptions())
	require.NoError(t, err)
	require.True(t, fired)
	require.Contains(t, ins.Message, "High seasonality")

	f.Seasonality.Level = "Low"
	_, fired, err = seasonalityLevel(f, DefaultOptions())
	require.NoError(t, err)
	require.False(t, fired)
}

func TestGenerate_PriorityOrderingAndSkips(t *testing.T) {
	f := Facts{
		Summary: metrics.Summary{DateEnd: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		Products: []metrics.Group{
			{Label: "Notebook", Share: 0.55},
			{Label: "Mouse", Share: 0.45},
		},
		Channels: []metrics.Group{
			{Label: "Online", Share: 0.40},
			{Label: "Marketplace", Share: 0.35},
			{Label: "Loja Física", Share: 0.25},
		},
		PeriodSeries: []metrics.Group{
			{Label: "2024-01", Revenue: dec("1000")},
			{Label: "2024-02", Revenue: dec("600")},
		},
		SegmentStats: []rfv.SegmentStat{
			{Segment: rfv.SegmentChampions, Customers: 5, CustomerPct: 0.50, RevenueShare: 0.60},
			{Segment: rfv.SegmentLoyalCustomers, Customers: 5, CustomerPct: 0.50},
		},
		Customers: 10,
	}

	out := Generate(zerolog.Nop(), f, DefaultOptions())
	require.NotEmpty(t, out)
	for i := 1; i < len(out); i++ {
		require.GreaterOrEqual(t, out[i-1].Priority, out[i].Priority, "risk findings come first")
	}

	names := map[string]bool{}
	for _, ins := range out {
		names[ins.Rule] = true
	}
	require.True(t, names["product_concentration"])
	require.True(t, names["revenue_decline"])
	require.True(t, names["champions_loyalty"])
	require.True(t, names["segment_distribution"])
	require.False(t, names["channel_concentration"], "a 40% lead share does not cross the threshold")
	require.False(t, names["segment_risk"], "no At Risk or Lost customers")
}

func TestPriorityString(t *testing.T) {
	require.Equal(t, "risk", PriorityRisk.String())
	require.Equal(t, "opportunity", PriorityOpportunity.String())
	require.Equal(t, "informational", PriorityInfo.String())
}
