package config

// Default analysis thresholds and guardrails for the order analytics engine.
// These values are conservative and can be overridden via environment
// variables (see FromEnv) or per-run pipeline options.

const (
	// Cleaning
	DefaultOutlierPolicy   = "clip"
	DefaultIQRMultiplier   = 1.5
	DefaultValueTolerance  = "0.01" // valor_total vs quantidade*preco_unitario
	CategoricalSentinel    = "Não Informado"
	DefaultRejectedSamples = 5 // sample rejected rows kept for diagnostics

	// Ingestion
	DefaultDateLayout = "2006-01-02"
	DefaultMaxRows    = 200_000

	// Insight thresholds
	DefaultConcentrationThreshold = 0.40
	DefaultDeclineThreshold       = 0.15
	DefaultSegmentRiskThreshold   = 0.35
	DefaultGeoConcentrationShare  = 0.70 // top-3 states combined

	// Seasonality coefficient-of-variation bands
	SeasonalityHighCV   = 0.30
	SeasonalityMediumCV = 0.15

	// Pricing dispersion
	PricingCVThreshold     = 0.10 // unit-price CV above which a product qualifies for review
	PricingMinTransactions = 5    // minimum orders before dispersion is meaningful

	// Reporting
	DefaultTopN  = 5
	ReportTopN   = 10
	ParetoTarget = 0.80

	// Pipeline
	DefaultTrendBucket = "month"
	DefaultParallelism = 4
)
