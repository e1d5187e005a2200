// Package pipeline wires the analytics stages into one synchronous run:
// validation, cleaning, aggregation, RFV segmentation, and insight
// generation. A run either completes and returns the full Result or fails
// before any partial output is exposed; re-running with the same input and
// options yields identical results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rfrancav/vendalytics/config"
	"github.com/rfrancav/vendalytics/internal/cleaning"
	"github.com/rfrancav/vendalytics/internal/insights"
	"github.com/rfrancav/vendalytics/internal/metrics"
	"github.com/rfrancav/vendalytics/internal/rfv"
	"github.com/rfrancav/vendalytics/internal/schema"
	"github.com/rfrancav/vendalytics/internal/telemetry"
	"github.com/rfrancav/vendalytics/pkg/validation"
)

// Options is the explicit configuration surface for one analysis run. Zero
// values fall back to config defaults; no process-wide settings exist.
type Options struct {
	// ReferenceDate overrides the RFV analysis reference date. Zero means
	// the day after the most recent order.
	ReferenceDate time.Time

	DateLayout    string `validate:"date_layout"`
	OutlierPolicy string `validate:"outlier_policy"`

	ConcentrationThreshold float64 `validate:"share"`
	DeclineThreshold       float64 `validate:"share"`
	SegmentRiskThreshold   float64 `validate:"share"`
	GeoConcentrationShare  float64 `validate:"share"`
	PricingCVThreshold     float64 `validate:"share"`

	TopN        int    `validate:"gte=0,lte=50"`
	TrendBucket string `validate:"bucket"`

	// RFVUseRawMonetary scores monetary value on pre-outlier-treatment
	// totals. Default false: RFV uses the same cleaned values as the
	// aggregate metrics.
	RFVUseRawMonetary bool

	Parallelism int `validate:"gte=0,lte=32"`
}

// DefaultOptions returns run options backed by config defaults.
func DefaultOptions() Options {
	return Options{
		DateLayout:             config.DefaultDateLayout,
		OutlierPolicy:          config.DefaultOutlierPolicy,
		ConcentrationThreshold: config.DefaultConcentrationThreshold,
		DeclineThreshold:       config.DefaultDeclineThreshold,
		SegmentRiskThreshold:   config.DefaultSegmentRiskThreshold,
		GeoConcentrationShare:  config.DefaultGeoConcentrationShare,
		PricingCVThreshold:     config.PricingCVThreshold,
		TopN:                   config.DefaultTopN,
		TrendBucket:            config.DefaultTrendBucket,
		Parallelism:            config.DefaultParallelism,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DateLayout == "" {
		o.DateLayout = d.DateLayout
	}
	if o.OutlierPolicy == "" {
		o.OutlierPolicy = d.OutlierPolicy
	}
	if o.ConcentrationThreshold == 0 {
		o.ConcentrationThreshold = d.ConcentrationThreshold
	}
	if o.DeclineThreshold == 0 {
		o.DeclineThreshold = d.DeclineThreshold
	}
	if o.SegmentRiskThreshold == 0 {
		o.SegmentRiskThreshold = d.SegmentRiskThreshold
	}
	if o.GeoConcentrationShare == 0 {
		o.GeoConcentrationShare = d.GeoConcentrationShare
	}
	if o.PricingCVThreshold == 0 {
		o.PricingCVThreshold = d.PricingCVThreshold
	}
	if o.TopN == 0 {
		o.TopN = d.TopN
	}
	if o.TrendBucket == "" {
		o.TrendBucket = d.TrendBucket
	}
	if o.Parallelism == 0 {
		o.Parallelism = d.Parallelism
	}
	return o
}

// Result is the unit output of one run, consumed by the presentation and
// report layers.
type Result struct {
	RunID         string
	ReferenceDate time.Time

	Summary       metrics.Summary
	Grouped       map[string][]metrics.Group
	PeriodSeries  []metrics.Group
	Seasonality   metrics.Seasonality
	Pricing       metrics.Pricing
	Concentration map[string]metrics.Concentration
	ParetoProduct metrics.Pareto

	Profiles []rfv.Profile
	Segments []rfv.SegmentStat

	Insights []insights.Insight

	Validation *schema.ValidationReport
	Dataset    *cleaning.Dataset
}

// Run executes the full pipeline over a raw table. Row-level problems are
// recovered and counted; dataset-level problems return *schema.SchemaError
// or *schema.EmptyDatasetError.
func Run(ctx context.Context, logger zerolog.Logger, table schema.RawTable, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if msg := validation.ValidateStruct(opts); msg != "" {
		return nil, errors.New("pipeline: " + msg)
	}

	runID := uuid.NewString()
	hooks := telemetry.NewHooks(logger)
	started := time.Now()
	hooks.OnRunStart(runID, table.Len())

	lines, report, err := schema.Validate(table, schema.ValidateOptions{DateLayout: opts.DateLayout})
	if err != nil {
		hooks.OnRunError(runID, err)
		return nil, err
	}
	if len(lines) == 0 {
		err := &schema.EmptyDatasetError{TotalRows: report.TotalRows, Rejected: report.RejectedTotal()}
		hooks.OnRunError(runID, err)
		return nil, err
	}
	hooks.OnStageDone(runID, "validate", time.Since(started))

	cleanStart := time.Now()
	cleanOpts := cleaning.DefaultOptions()
	cleanOpts.OutlierPolicy = cleaning.OutlierPolicy(opts.OutlierPolicy)
	ds, err := cleaning.Clean(lines, report, cleanOpts)
	if err != nil {
		hooks.OnRunError(runID, err)
		return nil, err
	}
	if len(ds.Orders) == 0 {
		err := &schema.EmptyDatasetError{TotalRows: report.TotalRows, Rejected: report.RejectedTotal()}
		hooks.OnRunError(runID, err)
		return nil, err
	}
	hooks.OnStageDone(runID, "clean", time.Since(cleanStart))

	res := &Result{
		RunID:      runID,
		Validation: report,
		Dataset:    ds,
	}

	// Independent aggregations run concurrently over the read-only dataset
	// and are merged in a fixed order afterwards.
	aggStart := time.Now()
	var (
		byProduct, byCategory, byState, byChannel, byPeriod []metrics.Group
	)
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	g.Go(func() error { res.Summary = metrics.Summarize(ds); return nil })
	g.Go(func() error { byProduct = metrics.ByProduct(ds); return nil })
	g.Go(func() error { byCategory = metrics.ByCategory(ds); return nil })
	g.Go(func() error { byState = metrics.ByState(ds); return nil })
	g.Go(func() error { byChannel = metrics.ByChannel(ds); return nil })
	g.Go(func() error { byPeriod = metrics.ByPeriod(ds, metrics.Bucket(opts.TrendBucket)); return nil })
	g.Go(func() error { res.PeriodSeries = metrics.PeriodSeries(ds, metrics.Bucket(opts.TrendBucket)); return nil })
	g.Go(func() error { res.Seasonality = metrics.Seasonal(ds); return nil })
	g.Go(func() error { res.Pricing = metrics.PriceAnalysis(ds); return nil })
	if err := g.Wait(); err != nil {
		hooks.OnRunError(runID, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		hooks.OnRunError(runID, err)
		return nil, fmt.Errorf("pipeline: run cancelled: %w", err)
	}
	res.Grouped = map[string][]metrics.Group{
		metrics.KeyByProduct:  byProduct,
		metrics.KeyByCategory: byCategory,
		metrics.KeyByState:    byState,
		metrics.KeyByChannel:  byChannel,
		metrics.KeyByPeriod:   byPeriod,
	}
	res.Concentration = map[string]metrics.Concentration{
		metrics.KeyByProduct:  metrics.Concentrate("product", byProduct, opts.TopN),
		metrics.KeyByCategory: metrics.Concentrate("category", byCategory, opts.TopN),
		metrics.KeyByState:    metrics.Concentrate("state", byState, opts.TopN),
		metrics.KeyByChannel:  metrics.Concentrate("channel", byChannel, opts.TopN),
	}
	res.ParetoProduct = metrics.ParetoCount(byProduct, config.ParetoTarget)
	hooks.OnStageDone(runID, "aggregate", time.Since(aggStart))

	rfvStart := time.Now()
	rfvDS := ds
	if opts.RFVUseRawMonetary {
		// Score on pre-outlier-treatment values: re-run cleaning with the
		// keep policy against a throwaway report.
		rawOpts := cleanOpts
		rawOpts.OutlierPolicy = cleaning.OutlierKeep
		rfvDS, err = cleaning.Clean(lines, schema.NewValidationReport(), rawOpts)
		if err != nil {
			hooks.OnRunError(runID, err)
			return nil, err
		}
	}
	res.ReferenceDate = opts.ReferenceDate
	if res.ReferenceDate.IsZero() {
		res.ReferenceDate = rfv.ReferenceDate(ds)
	}
	res.Profiles = rfv.Compute(rfvDS, res.ReferenceDate)
	res.Segments = rfv.Stats(res.Profiles)
	hooks.OnStageDone(runID, "rfv", time.Since(rfvStart))

	res.Insights = insights.Generate(logger, insights.Facts{
		Summary:      res.Summary,
		Products:     byProduct,
		Channels:     byChannel,
		States:       byState,
		PeriodSeries: res.PeriodSeries,
		Seasonality:  res.Seasonality,
		Pricing:      res.Pricing,
		SegmentStats: res.Segments,
		Customers:    len(res.Profiles),
	}, insights.Options{
		ConcentrationThreshold: opts.ConcentrationThreshold,
		DeclineThreshold:       opts.DeclineThreshold,
		SegmentRiskThreshold:   opts.SegmentRiskThreshold,
		GeoConcentrationShare:  opts.GeoConcentrationShare,
		PricingCVThreshold:     opts.PricingCVThreshold,
		TrendBucket:            metrics.Bucket(opts.TrendBucket),
	})

	hooks.OnRunComplete(runID, len(ds.Orders), len(res.Profiles), len(res.Insights), time.Since(started))
	return res, nil
}
