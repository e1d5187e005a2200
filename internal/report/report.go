// Package report renders an analysis result as a sectioned plain-text
// report for decision support.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/rfrancav/vendalytics/config"
	"github.com/rfrancav/vendalytics/internal/metrics"
	"github.com/rfrancav/vendalytics/internal/pipeline"
)

// WriteText writes the full report to w.
func WriteText(w io.Writer, res *pipeline.Result) error {
	p := printer{w: w}

	p.rule('=')
	p.line("E-COMMERCE BUSINESS INSIGHTS REPORT")
	p.rule('=')
	p.line("run: %s", res.RunID)
	p.line("")

	p.section("KEY METRICS")
	s := res.Summary
	p.line("Total revenue:      R$ %s", s.TotalRevenue.StringFixed(2))
	p.line("Average ticket:     R$ %s", s.AvgTicket.StringFixed(2))
	p.line("Median ticket:      R$ %s", s.MedianTicket.StringFixed(2))
	p.line("Orders:             %d", s.OrderCount)
	p.line("Unique customers:   %d", s.UniqueCustomers)
	p.line("Unique products:    %d", s.UniqueProducts)
	p.line("Period:             %s to %s (%d days)", s.DateStart.Format("2006-01-02"), s.DateEnd.Format("2006-01-02"), s.SpanDays)
	p.line("Daily avg revenue:  R$ %s", s.DailyAvgRevenue.StringFixed(2))
	p.line("")

	p.section("DATA QUALITY")
	v := res.Validation
	p.line("Rows read: %d, accepted: %d, rejected: %d, duplicates removed: %d",
		v.TotalRows, v.Accepted, v.RejectedTotal(), v.DuplicatesRemoved)
	reasons := make([]string, 0, len(v.Rejected))
	for reason := range v.Rejected {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		p.line("  rejected %s: %d", reason, v.Rejected[reason])
	}
	for _, s := range v.Samples {
		p.line("  e.g. row %d, %s: %s", s.Row, s.Column, s.Reason.Describe())
	}
	imputedCols := make([]string, 0, len(v.Imputed))
	for col := range v.Imputed {
		imputedCols = append(imputedCols, col)
	}
	sort.Strings(imputedCols)
	for _, col := range imputedCols {
		p.line("  imputed %s: %d", col, v.Imputed[col])
	}
	if v.OutliersClipped+v.OutliersDropped > 0 {
		p.line("  outliers clipped: %d, dropped: %d", v.OutliersClipped, v.OutliersDropped)
	}
	if v.ValuesReconciled > 0 {
		p.line("  totals reconciled: %d", v.ValuesReconciled)
	}
	p.line("")

	p.section("TOP PRODUCTS BY REVENUE")
	p.grouped(res.Grouped[metrics.KeyByProduct], config.ReportTopN)
	p.section("REVENUE BY CATEGORY")
	p.grouped(res.Grouped[metrics.KeyByCategory], config.ReportTopN)
	p.section("REVENUE BY CHANNEL")
	p.grouped(res.Grouped[metrics.KeyByChannel], config.ReportTopN)

	p.section("PRICE DISPERSION BY CATEGORY")
	pr := res.Pricing
	n := config.ReportTopN
	if n > len(pr.Categories) {
		n = len(pr.Categories)
	}
	for i := 0; i < n; i++ {
		c := pr.Categories[i]
		p.line("%-24s avg R$ %10.2f  range R$ %.2f-%.2f  CV %.2f  margin %.1f%%",
			c.Label, c.MeanPrice, c.MinPrice, c.MaxPrice, c.PriceCV, c.MarginPotentialPct)
	}
	if len(pr.Opportunities) > 0 {
		p.line("  %d products with price variation worth standardizing", len(pr.Opportunities))
	}
	p.line("")

	p.section("CUSTOMER SEGMENTS")
	for _, st := range res.Segments {
		p.line("%-20s %5d customers (%.1f%%)  avg R %.0fd, F %.1f, M R$ %s",
			st.Segment, st.Customers, metrics.RoundPct(st.CustomerPct),
			st.AvgRecency, st.AvgFrequency, st.AvgMonetary.StringFixed(2))
	}
	p.line("")

	p.section("FINDINGS & RECOMMENDATIONS")
	for _, ins := range res.Insights {
		p.line("[%s] %s", ins.Priority, ins.Message)
	}
	return p.err
}

// grouped prints the leading rows of a grouped aggregate.
func (p *printer) grouped(groups []metrics.Group, topN int) {
	n := topN
	if n > len(groups) {
		n = len(groups)
	}
	for i := 0; i < n; i++ {
		g := groups[i]
		p.line("%-32s R$ %12s  %5d orders  %.1f%%", g.Label, g.Revenue.StringFixed(2), g.Orders, metrics.RoundPct(g.Share))
	}
	p.line("")
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) section(title string) {
	p.line(title)
	p.rule('-')
}

func (p *printer) rule(c rune) {
	if p.err != nil {
		return
	}
	for i := 0; i < 60; i++ {
		if _, p.err = fmt.Fprintf(p.w, "%c", c); p.err != nil {
			return
		}
	}
	_, p.err = fmt.Fprintln(p.w)
}
