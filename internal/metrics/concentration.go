package metrics

import "math"

// Concentration reports Top-N revenue share and the Herfindahl-Hirschman
// index for one grouping dimension.
type Concentration struct {
	Dimension string
	TopN      int
	TopShare  float64 // combined share of the top N groups
	LeadShare float64 // share of the single largest group
	Leader    string
	HHI       float64
	Band      string
}

// HHI bands follow the conventional antitrust thresholds.
const (
	BandUnconcentrated         = "unconcentrated"
	BandModeratelyConcentrated = "moderately_concentrated"
	BandHighlyConcentrated     = "highly_concentrated"
)

// Concentrate computes concentration metrics over a grouped aggregate that
// is already sorted descending by revenue.
func Concentrate(dimension string, groups []Group, topN int) Concentration {
	c := Concentration{Dimension: dimension, TopN: topN}
	if c.TopN <= 0 {
		c.TopN = 5
	}
	if len(groups) == 0 {
		return c
	}

	c.Leader = groups[0].Label
	c.LeadShare = groups[0].Share
	keep := c.TopN
	if keep > len(groups) {
		keep = len(groups)
	}
	for i := 0; i < keep; i++ {
		c.TopShare += groups[i].Share
	}

	var hhi float64
	for _, g := range groups {
		hhi += g.Share * g.Share
	}
	c.HHI = math.Round(hhi*1000) / 1000
	switch {
	case hhi < 0.15:
		c.Band = BandUnconcentrated
	case hhi < 0.25:
		c.Band = BandModeratelyConcentrated
	default:
		c.Band = BandHighlyConcentrated
	}
	return c
}

// Pareto describes how many leading groups cover the target revenue share.
type Pareto struct {
	Target      float64
	Count       int
	PctOfGroups float64
}

// ParetoCount walks a revenue-sorted grouping and reports the number of
// groups whose cumulative share stays within the target (classic 80/20 view).
func ParetoCount(groups []Group, target float64) Pareto {
	p := Pareto{Target: target}
	if len(groups) == 0 {
		return p
	}
	cum := 0.0
	for _, g := range groups {
		cum += g.Share
		p.Count++
		if cum >= target {
			break
		}
	}
	p.PctOfGroups = float64(p.Count) / float64(len(groups))
	return p
}
