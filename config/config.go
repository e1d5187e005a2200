package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Env captures environment overrides for analysis defaults. All fields are
// optional; zero values fall back to the package constants.
type Env struct {
	OutlierPolicy          string  `envconfig:"OUTLIER_POLICY"`
	DateLayout             string  `envconfig:"DATE_LAYOUT"`
	MaxRows                int     `envconfig:"MAX_ROWS"`
	ConcentrationThreshold float64 `envconfig:"CONCENTRATION_THRESHOLD"`
	DeclineThreshold       float64 `envconfig:"DECLINE_THRESHOLD"`
	SegmentRiskThreshold   float64 `envconfig:"SEGMENT_RISK_THRESHOLD"`
	TopN                   int     `envconfig:"TOP_N"`
	TrendBucket            string  `envconfig:"TREND_BUCKET"`
	Parallelism            int     `envconfig:"PARALLELISM"`
}

// FromEnv reads VENDALYTICS_* overrides and fills unset fields with defaults.
func FromEnv() (Env, error) {
	var e Env
	if err := envconfig.Process("vendalytics", &e); err != nil {
		return Env{}, fmt.Errorf("config: %w", err)
	}
	if e.OutlierPolicy == "" {
		e.OutlierPolicy = DefaultOutlierPolicy
	}
	if e.DateLayout == "" {
		e.DateLayout = DefaultDateLayout
	}
	if e.MaxRows <= 0 {
		e.MaxRows = DefaultMaxRows
	}
	if e.ConcentrationThreshold <= 0 {
		e.ConcentrationThreshold = DefaultConcentrationThreshold
	}
	if e.DeclineThreshold <= 0 {
		e.DeclineThreshold = DefaultDeclineThreshold
	}
	if e.SegmentRiskThreshold <= 0 {
		e.SegmentRiskThreshold = DefaultSegmentRiskThreshold
	}
	if e.TopN <= 0 {
		e.TopN = DefaultTopN
	}
	if e.TrendBucket == "" {
		e.TrendBucket = DefaultTrendBucket
	}
	if e.Parallelism <= 0 {
		e.Parallelism = DefaultParallelism
	}
	return e, nil
}
