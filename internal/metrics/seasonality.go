package metrics

import (
	"math"
	"sort"
	"strconv"

	"github.com/rfrancav/vendalytics/config"
	"github.com/rfrancav/vendalytics/internal/cleaning"
	"github.com/rfrancav/vendalytics/internal/schema"
)

// Seasonality summarizes temporal revenue patterns: per-quarter, per-month,
// and per-weekday tables plus a coefficient-of-variation based level.
type Seasonality struct {
	ByQuarter []Group
	ByMonth   []Group
	ByWeekday []Group

	BestQuarter string
	BestMonth   string
	BestWeekday string

	// QuarterCV is the coefficient of variation of quarterly revenue; the
	// level bands are Low/Medium/High per configured thresholds.
	QuarterCV float64
	Level     string
}

// Seasonal computes the seasonality view of the dataset. Groupings collapse
// across years (all Januaries together), matching the report layout.
func Seasonal(ds *cleaning.Dataset) Seasonality {
	var s Seasonality
	s.ByQuarter = groupBy(ds, func(o schema.OrderLine) string { return "Q" + strconv.Itoa(o.Quarter) })
	s.ByMonth = groupBy(ds, func(o schema.OrderLine) string { return monthNames[o.Month-1] })
	s.ByWeekday = groupBy(ds, func(o schema.OrderLine) string { return o.Weekday.String() })

	if len(s.ByQuarter) > 0 {
		s.BestQuarter = s.ByQuarter[0].Label
	}
	if len(s.ByMonth) > 0 {
		s.BestMonth = s.ByMonth[0].Label
	}
	if len(s.ByWeekday) > 0 {
		s.BestWeekday = s.ByWeekday[0].Label
	}

	s.QuarterCV = coefficientOfVariation(s.ByQuarter)
	switch {
	case s.QuarterCV > config.SeasonalityHighCV:
		s.Level = "High"
	case s.QuarterCV > config.SeasonalityMediumCV:
		s.Level = "Medium"
	default:
		s.Level = "Low"
	}

	// Chronological order reads better in reports than revenue order.
	sort.Slice(s.ByQuarter, func(i, j int) bool { return s.ByQuarter[i].Label < s.ByQuarter[j].Label })
	return s
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func coefficientOfVariation(groups []Group) float64 {
	if len(groups) < 2 {
		return 0
	}
	var sum float64
	for _, g := range groups {
		sum += g.Revenue.InexactFloat64()
	}
	mean := sum / float64(len(groups))
	if mean == 0 {
		return 0
	}
	var ss float64
	for _, g := range groups {
		d := g.Revenue.InexactFloat64() - mean
		ss += d * d
	}
	return math.Sqrt(ss/float64(len(groups))) / mean
}
