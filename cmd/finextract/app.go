package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/finstatement-extractor/internal/cache"
	"github.com/joseph-ayodele/finstatement-extractor/internal/common"
	"github.com/joseph-ayodele/finstatement-extractor/internal/export"
	"github.com/joseph-ayodele/finstatement-extractor/internal/layout"
	"github.com/joseph-ayodele/finstatement-extractor/internal/metrics"
	"github.com/joseph-ayodele/finstatement-extractor/internal/normalize"
	"github.com/joseph-ayodele/finstatement-extractor/internal/ocr"
	"github.com/joseph-ayodele/finstatement-extractor/internal/pipeline"
)

// app is the wired process: one processor, its cache and the exporter.
type app struct {
	cfg       *common.Config
	logger    *slog.Logger
	registry  *prometheus.Registry
	processor *pipeline.Processor
	exporter  *export.Service
	cache     *cache.Cache
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg := common.LoadConfig()
	if v, _ := cmd.Flags().GetString("noise-file"); v != "" {
		cfg.Extract.NoisePatternFile = v
	}
	if v, _ := cmd.Flags().GetString("cache"); v != "" {
		cfg.Cache.Backend = strings.ToLower(v)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := common.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}

	noise, err := normalize.NewNoiseFilter(normalize.WithPatternFile(cfg.Extract.NoisePatternFile))
	if err != nil {
		return nil, common.WrapError(err, "load noise rules")
	}

	// A broken cache only costs speed, so extraction goes ahead without one.
	store, err := cache.Open(ctx, cfg.Cache, logger)
	if err != nil {
		logger.Warn("cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "error", err)
		store = nil
	}
	c := cache.New(store, logger, m)

	runner := ocr.NewExecRunner(logger)
	ocrCfg := ocr.ConfigFrom(cfg.OCR)
	deps := pipeline.Deps{
		Cache:    c,
		Renderer: ocr.NewRenderer(ocrCfg, runner, logger),
		Noise:    noise,
		Metrics:  m,
		Logger:   logger,
		Layout:   layout.ParamsFrom(cfg.OCR),
		DPI:      cfg.OCR.DPI,
	}
	engine, err := ocr.NewEngine(cfg.OCR.Engine, ocrCfg, runner, logger)
	if err != nil {
		logger.Warn("ocr engine unavailable, scanned documents will fail", "engine", cfg.OCR.Engine, "error", err)
	} else {
		deps.Engine = engine
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		registry:  reg,
		processor: pipeline.NewProcessor(cfg.Extract, deps),
		exporter:  export.NewService(logger),
		cache:     c,
	}, nil
}

func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("closing cache", "error", err)
	}
}
