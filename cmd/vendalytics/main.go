// Command vendalytics runs the order analytics pipeline over a CSV or Excel
// export and writes the report and flat exports. It is a thin wrapper: all
// analytical behavior lives in the internal packages.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"

	"github.com/rfrancav/vendalytics/config"
	"github.com/rfrancav/vendalytics/internal/export"
	"github.com/rfrancav/vendalytics/internal/ingest"
	"github.com/rfrancav/vendalytics/internal/metrics"
	"github.com/rfrancav/vendalytics/internal/pipeline"
	"github.com/rfrancav/vendalytics/internal/report"
	"github.com/rfrancav/vendalytics/internal/sample"
	"github.com/rfrancav/vendalytics/internal/schema"
	"github.com/rfrancav/vendalytics/pkg/version"
)

// fileOptions is the YAML options file shape; every field is optional.
type fileOptions struct {
	ReferenceDate          string  `yaml:"reference_date"`
	DateLayout             string  `yaml:"date_layout"`
	OutlierPolicy          string  `yaml:"outlier_policy"`
	ConcentrationThreshold float64 `yaml:"concentration_threshold"`
	DeclineThreshold       float64 `yaml:"decline_threshold"`
	SegmentRiskThreshold   float64 `yaml:"segment_risk_threshold"`
	TopN                   int     `yaml:"top_n"`
	TrendBucket            string  `yaml:"trend_bucket"`
	RFVUseRawMonetary      bool    `yaml:"rfv_use_raw_monetary"`
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var (
		input       string
		sheet       string
		outDir      string
		optionsPath string
		outlier     string
		refDate     string
		sampleN     int
		sampleSeed  int64
		writeXLSX   bool
	)
	flag.StringVar(&input, "input", "", "Path to orders file (.csv, .xlsx, .xlsm)")
	flag.StringVar(&sheet, "sheet", "", "Sheet name for Excel input (default: first sheet)")
	flag.StringVar(&outDir, "out", "reports", "Output directory")
	flag.StringVar(&optionsPath, "options", "", "YAML options file")
	flag.StringVar(&outlier, "outliers", "", "Outlier policy: clip, drop, or keep")
	flag.StringVar(&refDate, "ref-date", "", "RFV reference date override (YYYY-MM-DD)")
	flag.IntVar(&sampleN, "sample", 0, "Generate N sample orders instead of reading -input")
	flag.Int64Var(&sampleSeed, "seed", 42, "Seed for sample data generation")
	flag.BoolVar(&writeXLSX, "xlsx", false, "Also write an Excel workbook with all outputs")
	flag.Parse()

	logger := zlog.With().Str("service", "vendalytics").Logger()
	logger.Info().Str("version", version.Version()).Msg("starting")

	opts, err := buildOptions(optionsPath, outlier, refDate)
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	var table schema.RawTable
	switch {
	case sampleN > 0:
		table = sample.Generate(sampleN, sampleSeed, time.Now().UTC().Truncate(24*time.Hour))
		logger.Info().Int("rows", sampleN).Int64("seed", sampleSeed).Msg("sample data generated")
	case input != "":
		table, err = ingest.Read(input, sheet)
		if err != nil {
			logger.Error().Err(err).Str("input", input).Msg("ingestion failed")
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "no input selected; pass -input <file> or -sample <n>")
		os.Exit(2)
	}

	res, err := pipeline.Run(context.Background(), logger, table, opts)
	if err != nil {
		logger.Error().Err(err).Msg("analysis failed")
		os.Exit(1)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		logger.Error().Err(err).Msg("cannot create output directory")
		os.Exit(1)
	}

	groupedKeys := []string{
		metrics.KeyByProduct, metrics.KeyByCategory, metrics.KeyByState,
		metrics.KeyByChannel, metrics.KeyByPeriod,
	}
	artifacts := 3 + len(groupedKeys)
	if writeXLSX {
		artifacts++
	}
	bar := progressbar.Default(int64(artifacts), "writing outputs")

	reportPath := filepath.Join(outDir, "business_insights.txt")
	if err := writeFile(reportPath, func(w io.Writer) error { return report.WriteText(w, res) }); err != nil {
		logger.Error().Err(err).Msg("report export failed")
		os.Exit(1)
	}
	_ = bar.Add(1)

	cleanedPath := filepath.Join(outDir, "cleaned_orders.csv")
	if err := export.WriteFileCSV(cleanedPath, func(w io.Writer) error { return export.CleanedCSV(w, res.Dataset) }); err != nil {
		logger.Error().Err(err).Msg("cleaned dataset export failed")
		os.Exit(1)
	}
	_ = bar.Add(1)

	profilesPath := filepath.Join(outDir, "customer_rfv.csv")
	if err := export.WriteFileCSV(profilesPath, func(w io.Writer) error { return export.ProfilesCSV(w, res.Profiles) }); err != nil {
		logger.Error().Err(err).Msg("profile export failed")
		os.Exit(1)
	}
	_ = bar.Add(1)

	for _, key := range groupedKeys {
		groups := res.Grouped[key]
		path := filepath.Join(outDir, "revenue_"+key+".csv")
		if err := export.WriteFileCSV(path, func(w io.Writer) error { return export.GroupedCSV(w, groups) }); err != nil {
			logger.Error().Err(err).Str("grouping", key).Msg("grouped export failed")
			os.Exit(1)
		}
		_ = bar.Add(1)
	}

	if writeXLSX {
		wbPath := filepath.Join(outDir, "analysis.xlsx")
		wb := export.Workbook{Dataset: res.Dataset, Profiles: res.Profiles, Grouped: res.Grouped}
		if err := export.WriteXLSX(wbPath, wb); err != nil {
			logger.Error().Err(err).Msg("workbook export failed")
			os.Exit(1)
		}
		_ = bar.Add(1)
	}

	logger.Info().
		Str("run_id", res.RunID).
		Str("report", reportPath).
		Int("insights", len(res.Insights)).
		Msg("done")
}

// buildOptions layers env overrides, the YAML options file, and flags on
// top of the defaults, in that order.
func buildOptions(optionsPath, outlier, refDate string) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()

	env, err := config.FromEnv()
	if err != nil {
		return opts, err
	}
	opts.OutlierPolicy = env.OutlierPolicy
	opts.DateLayout = env.DateLayout
	opts.ConcentrationThreshold = env.ConcentrationThreshold
	opts.DeclineThreshold = env.DeclineThreshold
	opts.SegmentRiskThreshold = env.SegmentRiskThreshold
	opts.TopN = env.TopN
	opts.TrendBucket = env.TrendBucket
	opts.Parallelism = env.Parallelism

	if optionsPath != "" {
		raw, err := os.ReadFile(optionsPath)
		if err != nil {
			return opts, fmt.Errorf("options file: %w", err)
		}
		var fo fileOptions
		if err := yaml.Unmarshal(raw, &fo); err != nil {
			return opts, fmt.Errorf("options file: %w", err)
		}
		applyFileOptions(&opts, fo)
	}

	if outlier != "" {
		opts.OutlierPolicy = outlier
	}
	if refDate != "" {
		t, err := time.Parse("2006-01-02", refDate)
		if err != nil {
			return opts, fmt.Errorf("ref-date: %w", err)
		}
		opts.ReferenceDate = t
	}
	return opts, nil
}

func applyFileOptions(opts *pipeline.Options, fo fileOptions) {
	if fo.ReferenceDate != "" {
		if t, err := time.Parse("2006-01-02", fo.ReferenceDate); err == nil {
			opts.ReferenceDate = t
		}
	}
	if fo.DateLayout != "" {
		opts.DateLayout = fo.DateLayout
	}
	if fo.OutlierPolicy != "" {
		opts.OutlierPolicy = fo.OutlierPolicy
	}
	if fo.ConcentrationThreshold > 0 {
		opts.ConcentrationThreshold = fo.ConcentrationThreshold
	}
	if fo.DeclineThreshold > 0 {
		opts.DeclineThreshold = fo.DeclineThreshold
	}
	if fo.SegmentRiskThreshold > 0 {
		opts.SegmentRiskThreshold = fo.SegmentRiskThreshold
	}
	if fo.TopN > 0 {
		opts.TopN = fo.TopN
	}
	if fo.TrendBucket != "" {
		opts.TrendBucket = fo.TrendBucket
	}
	if fo.RFVUseRawMonetary {
		opts.RFVUseRawMonetary = true
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}
