// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fraudscope/internal/config"
	"github.com/tomtom215/fraudscope/internal/database"
	"github.com/tomtom215/fraudscope/internal/detection"
	csvimport "github.com/tomtom215/fraudscope/internal/import"
	"github.com/tomtom215/fraudscope/internal/logging"
	"github.com/tomtom215/fraudscope/internal/models"
)

// Store is the subset of *database.DB the runner reads from.
type Store interface {
	Overview(ctx context.Context) (*models.Overview, error)
	GroupReport(ctx context.Context, d database.Dimension, limit int) (*models.GroupReport, error)
	RepeatFraudCards(ctx context.Context, minFrauds, limit int) ([]models.RepeatFraudCard, error)
	HighRiskMerchants(ctx context.Context, minTxns, minFrauds, limit int) ([]models.HighRiskMerchant, error)

	LoadTransactions(ctx context.Context) ([]models.Transaction, error)
	RapidSuccessionPairsSQL(ctx context.Context, windowMinutes, limit int) ([]models.AnomalyPair, error)
	GeoAnomalyPairsSQL(ctx context.Context, windowMinutes int, distanceMiles float64, limit int) ([]models.AnomalyPair, error)

	ExportGroupReport(ctx context.Context, d database.Dimension, limit int, dir string) (string, error)
	ExportRepeatFraudCards(ctx context.Context, minFrauds, limit int, dir string) (string, error)
	ExportHighRiskMerchants(ctx context.Context, minTxns, minFrauds, limit int, dir string) (string, error)
}

// Result holds everything one run produced.
type Result struct {
	Summary           *Summary
	Overview          *models.Overview
	Groups            []*models.GroupReport
	RepeatFraudCards  []models.RepeatFraudCard
	HighRiskMerchants []models.HighRiskMerchant
	RapidPairs        []models.AnomalyPair
	GeoPairs          []models.AnomalyPair
}

// Runner runs the reports and the anomaly pair detector.
type Runner struct {
	store    Store
	detector *detection.Detector
	reports  config.ReportsConfig
	engine   string
	out      io.Writer
}

// NewRunner creates a runner. Console output goes to out when
// reports.console is set. detection.overrides, when set, is applied to the
// detector on top of the detection section.
func NewRunner(store Store, cfg *config.Config, out io.Writer) (*Runner, error) {
	detector, err := detection.NewDetector(cfg.Detection.DetectorConfig())
	if err != nil {
		return nil, err
	}
	if overrides := strings.TrimSpace(cfg.Detection.Overrides); overrides != "" {
		if err := detector.Configure(json.RawMessage(overrides)); err != nil {
			return nil, fmt.Errorf("apply DETECTION_OVERRIDES: %w", err)
		}
	}

	engine := cfg.Detection.Engine
	if engine == "" {
		engine = config.EngineScan
	}
	if engine != config.EngineScan && engine != config.EngineSQL {
		return nil, fmt.Errorf("unknown detection engine %q", engine)
	}

	return &Runner{
		store:    store,
		detector: detector,
		reports:  cfg.Reports,
		engine:   engine,
		out:      out,
	}, nil
}

// Detector returns the runner's pair detector.
func (r *Runner) Detector() *detection.Detector {
	return r.detector
}

// Run executes every report. importStats is recorded in the summary and may
// be nil. The first failing query aborts the run.
func (r *Runner) Run(ctx context.Context, importStats *csvimport.ImportStats) (*Result, error) {
	ctx = logging.ContextWithLogger(ctx, logging.WithComponent(ctx, "report"))
	log := logging.Ctx(ctx)

	summary := &Summary{
		RunID:     logging.RunIDFromContext(ctx),
		StartedAt: time.Now().UTC(),
		Import:    importStats,
	}
	if summary.RunID == "" {
		summary.RunID = logging.GenerateRunID()
	}

	res := &Result{Summary: summary}
	console := r.consoleWriter()

	overview, err := r.store.Overview(ctx)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	res.Overview = overview
	summary.Overview = overview
	printOverview(console, overview)

	for _, d := range database.Dimensions() {
		group, err := r.store.GroupReport(ctx, d, r.groupLimit(d))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.ReportName(), err)
		}
		res.Groups = append(res.Groups, group)
		printGroupReport(console, groupTitle(d, r.groupLimit(d)), group)
	}

	res.RepeatFraudCards, err = r.store.RepeatFraudCards(ctx, r.reports.RepeatMinFrauds, r.reports.PatternLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", database.ReportRepeatFraudCards, err)
	}
	printRepeatFraudCards(console, res.RepeatFraudCards, r.reports.PatternLimit)

	res.HighRiskMerchants, err = r.store.HighRiskMerchants(ctx, r.reports.MerchantMinTxns, r.reports.MerchantMinFrauds, r.reports.PatternLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", database.ReportHighRiskMerchants, err)
	}
	printHighRiskMerchants(console, res.HighRiskMerchants, r.reports.PatternLimit)

	if err := r.detectPairs(ctx, res); err != nil {
		return nil, err
	}
	printPairs(console, "Rapid Succession Pairs", res.RapidPairs)
	printPairs(console, "Geographic Anomaly Pairs", res.GeoPairs)

	if r.reports.OutputDir != "" {
		exports, err := r.export(ctx, res)
		if err != nil {
			return nil, err
		}
		summary.Exports = exports
	}

	summary.FinishedAt = time.Now().UTC()
	if r.reports.OutputDir != "" {
		path, err := writeSummary(r.reports.OutputDir, summary)
		if err != nil {
			return nil, err
		}
		summary.Exports = append(summary.Exports, path)
		log.Info().Int("files", len(summary.Exports)).Str("output_dir", r.reports.OutputDir).Msg("Reports exported")
	}

	log.Info().
		Int64("transactions", overview.TotalTxns).
		Int("rapid_pairs", len(res.RapidPairs)).
		Int("geo_pairs", len(res.GeoPairs)).
		Dur("duration", summary.FinishedAt.Sub(summary.StartedAt)).
		Msg("Analysis completed")

	return res, nil
}

// groupLimit applies reports.state_limit to the state report only.
func (r *Runner) groupLimit(d database.Dimension) int {
	if d == database.DimensionState {
		return r.reports.StateLimit
	}
	return 0
}

func (r *Runner) consoleWriter() io.Writer {
	if !r.reports.Console || r.out == nil {
		return io.Discard
	}
	return r.out
}

// detectPairs fills both pair lists with the configured engine.
func (r *Runner) detectPairs(ctx context.Context, res *Result) error {
	cfg := r.detector.Config()
	res.Summary.Detection = DetectionSummary{Engine: r.engine, Config: cfg}

	var err error
	switch r.engine {
	case config.EngineSQL:
		res.RapidPairs, err = r.store.RapidSuccessionPairsSQL(ctx, cfg.RapidWindowMinutes, cfg.Limit)
		if err != nil {
			return fmt.Errorf("rapid succession pairs: %w", err)
		}
		res.GeoPairs, err = r.store.GeoAnomalyPairsSQL(ctx, cfg.GeoWindowMinutes, cfg.DistanceMiles, cfg.Limit)
		if err != nil {
			return fmt.Errorf("geographic pairs: %w", err)
		}
	default:
		txns, err := r.store.LoadTransactions(ctx)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		res.RapidPairs, err = r.detector.RapidSuccession(ctx, txns)
		if err != nil {
			return err
		}
		res.GeoPairs, err = r.detector.Geographic(ctx, txns)
		if err != nil {
			return err
		}
	}

	res.Summary.Detection.RapidPairs = len(res.RapidPairs)
	res.Summary.Detection.GeoPairs = len(res.GeoPairs)
	return nil
}

// export writes every report and pair list to the output directory.
func (r *Runner) export(ctx context.Context, res *Result) ([]string, error) {
	dir := r.reports.OutputDir
	var files []string

	for _, d := range database.Dimensions() {
		path, err := r.store.ExportGroupReport(ctx, d, r.groupLimit(d), dir)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", d.ReportName(), err)
		}
		files = append(files, path)
	}

	path, err := r.store.ExportRepeatFraudCards(ctx, r.reports.RepeatMinFrauds, r.reports.PatternLimit, dir)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", database.ReportRepeatFraudCards, err)
	}
	files = append(files, path)

	path, err = r.store.ExportHighRiskMerchants(ctx, r.reports.MerchantMinTxns, r.reports.MerchantMinFrauds, r.reports.PatternLimit, dir)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", database.ReportHighRiskMerchants, err)
	}
	files = append(files, path)

	for _, set := range []struct {
		variant models.AnomalyVariant
		pairs   []models.AnomalyPair
	}{
		{models.VariantRapidSuccession, res.RapidPairs},
		{models.VariantGeographic, res.GeoPairs},
	} {
		written, err := WritePairs(dir, set.variant, set.pairs)
		if err != nil {
			return nil, err
		}
		files = append(files, written...)
	}

	return files, nil
}
