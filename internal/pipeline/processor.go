// Package pipeline runs the extraction state machine: cache lookup,
// classification, text-layer or OCR extraction with a quality-checked
// fallback, and finalization.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/joseph-ayodele/finstatement-extractor/constants"
	"github.com/joseph-ayodele/finstatement-extractor/internal/cache"
	"github.com/joseph-ayodele/finstatement-extractor/internal/classify"
	"github.com/joseph-ayodele/finstatement-extractor/internal/common"
	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
	"github.com/joseph-ayodele/finstatement-extractor/internal/layout"
	"github.com/joseph-ayodele/finstatement-extractor/internal/metrics"
	"github.com/joseph-ayodele/finstatement-extractor/internal/normalize"
	"github.com/joseph-ayodele/finstatement-extractor/internal/ocr"
	"github.com/joseph-ayodele/finstatement-extractor/internal/pdfdoc"
	"github.com/joseph-ayodele/finstatement-extractor/internal/textlayer"
)

// Deps are the collaborators of a Processor. Only Renderer and Engine are
// needed for OCR; without them scanned documents yield an error result.
type Deps struct {
	Cache    *cache.Cache
	Renderer Renderer
	Engine   ocr.Engine
	Noise    *normalize.NoiseFilter
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	// Layout tunes OCR page reconstruction; the zero value means defaults.
	Layout layout.Params
	DPI    int
	// Open parses PDF bytes; defaults to pdfdoc.Open.
	Open func([]byte) (pdfdoc.Document, error)
}

// Processor coordinates classification, extraction strategies and the cache.
// It is safe for concurrent use.
type Processor struct {
	cfg     common.ExtractConfig
	cache   *cache.Cache
	text    Strategy
	ocr     Strategy
	open    func([]byte) (pdfdoc.Document, error)
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewProcessor(cfg common.ExtractConfig, deps Deps) *Processor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Noise == nil {
		deps.Noise = normalize.MustNoiseFilter()
	}
	if deps.Open == nil {
		deps.Open = pdfdoc.Open
	}
	params := deps.Layout
	if params == (layout.Params{}) {
		params = layout.DefaultParams()
	}
	if deps.Cache == nil {
		deps.Cache = cache.New(nil, logger, deps.Metrics)
	}
	return &Processor{
		cfg:   cfg,
		cache: deps.Cache,
		text:  textStrategy{extractor: textlayer.New(cfg, deps.Noise, logger)},
		ocr: &ocrStrategy{
			cfg:      cfg,
			renderer: deps.Renderer,
			engine:   deps.Engine,
			params:   params,
			dpi:      deps.DPI,
			noise:    deps.Noise,
			metrics:  deps.Metrics,
		},
		open:    deps.Open,
		metrics: deps.Metrics,
		logger:  logger,
	}
}

// Extract never fails: problems are reported in the result's Error field
// with empty headers and rows.
func (p *Processor) Extract(ctx context.Context, in Input) (res entity.ExtractionResult) {
	start := time.Now()
	ctx, reqID := common.EnsureRequestID(ctx)
	logger := p.logger.With("request_id", reqID, "source", in.name())
	ctx = common.WithLogger(ctx, logger)
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	job := &Job{ID: reqID, Input: in, Logger: logger}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("extraction panicked", "panic", r, "stack", string(debug.Stack()))
			res = failure(common.NewAppError(common.CodeInternal, "internal error", fmt.Errorf("panic: %v", r)))
		}
		job.cleanup()

		method, outcome := res.Method, "ok"
		if res.CacheHit {
			method = string(constants.MethodCache)
		}
		if method == "" {
			method = "none"
		}
		if res.Error != "" {
			outcome = "error"
		}
		p.metrics.Extraction(method, outcome, time.Since(start).Seconds())
		logger.Info("extraction finished",
			"state", constants.StateDone,
			"method", method,
			"rows", len(res.Rows),
			"columns", len(res.YearHeaders),
			"error", res.Error,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	res, err := p.run(ctx, job)
	if err != nil {
		return failure(err)
	}
	return res
}

func (p *Processor) run(ctx context.Context, job *Job) (entity.ExtractionResult, error) {
	data, err := p.load(job.Input)
	if err != nil {
		return entity.ExtractionResult{}, err
	}
	job.Data = data

	p.enter(job, constants.StateCacheLookup)
	job.Fingerprint = cache.FingerprintBytes(data)
	if hit, ok := p.cache.Get(ctx, job.Fingerprint); ok {
		job.Logger.Info("cache hit", "fingerprint", job.Fingerprint)
		return hit, nil
	}

	doc, err := p.open(data)
	if err != nil {
		return entity.ExtractionResult{}, common.NewAppError(common.CodeUnreadableInput, "cannot open document", errors.Join(common.ErrUnreadableInput, err))
	}
	job.Doc = doc

	p.enter(job, constants.StateClassify)
	if err := checkCtx(ctx); err != nil {
		return entity.ExtractionResult{}, err
	}
	job.Kind, err = classify.Classify(ctx, doc, p.cfg, job.Logger)
	if err != nil {
		if ctx.Err() != nil {
			return entity.ExtractionResult{}, cancelled(err)
		}
		return entity.ExtractionResult{}, common.NewAppError(common.CodeUnreadableInput, "cannot classify document", err)
	}
	job.Logger.Info("document classified", "kind", job.Kind, "pages", doc.NumPages())

	ext, method, err := p.extract(ctx, job)
	if err != nil {
		return entity.ExtractionResult{}, err
	}

	p.enter(job, constants.StateFinalize)
	if err := checkCtx(ctx); err != nil {
		return entity.ExtractionResult{}, err
	}
	if len(ext.Rows) == 0 {
		job.Logger.Warn("nothing extracted",
			"error", common.NewAppError(common.CodeExtractionEmpty, "no rows", common.ErrExtractionEmpty),
			"method", method,
			"pages", ext.Pages,
		)
		res := entity.Failed(common.ErrExtractionEmpty.Error())
		res.Method = string(method)
		res.Pages = ext.Pages
		return res, nil
	}
	res := Finalize(ext)
	res.Method = string(method)
	if ext.PageFailures > 0 {
		job.Logger.Warn("pages skipped", "failed", ext.PageFailures, "pages", ext.Pages)
	}
	p.cache.Put(ctx, job.Fingerprint, res)
	return res, nil
}

// extract runs the strategy picked by classification. A text-layer result
// with fewer than MinRows rows falls back to OCR; the text rows are kept if
// OCR finds nothing.
func (p *Processor) extract(ctx context.Context, job *Job) (entity.Extraction, constants.Method, error) {
	p.enter(job, constants.StateExtract)
	if job.Kind == constants.DocumentScannedImage {
		ext, err := p.runStrategy(ctx, job, p.ocr)
		return ext, p.ocr.Kind(), err
	}

	textExt, err := p.runStrategy(ctx, job, p.text)
	if err != nil {
		return textExt, p.text.Kind(), err
	}

	p.enter(job, constants.StateQualityCheck)
	if len(textExt.Rows) >= p.cfg.MinRows {
		return textExt, p.text.Kind(), nil
	}
	job.Logger.Info("text layer result too thin", "rows", len(textExt.Rows), "min_rows", p.cfg.MinRows)
	p.metrics.Fallback()

	p.enter(job, constants.StateFallbackToOCR)
	ocrExt, err := p.runStrategy(ctx, job, p.ocr)
	if err != nil {
		if errors.Is(err, common.ErrEngineUnavailable) && len(textExt.Rows) > 0 {
			job.Logger.Warn("ocr unavailable, keeping text layer rows", "rows", len(textExt.Rows))
			return textExt, p.text.Kind(), nil
		}
		return ocrExt, p.ocr.Kind(), err
	}
	if len(ocrExt.Rows) == 0 && len(textExt.Rows) > 0 {
		job.Logger.Info("ocr found nothing, keeping text layer rows", "rows", len(textExt.Rows))
		return textExt, p.text.Kind(), nil
	}
	return ocrExt, p.ocr.Kind(), nil
}

// runStrategy returns an error only for cancellation and a missing OCR
// engine; other strategy failures are logged and yield whatever was collected.
func (p *Processor) runStrategy(ctx context.Context, job *Job, s Strategy) (entity.Extraction, error) {
	if err := checkCtx(ctx); err != nil {
		return entity.Extraction{}, err
	}
	start := time.Now()
	ext, err := s.Extract(ctx, job)
	if err != nil {
		if ctx.Err() != nil {
			return ext, cancelled(ctx.Err())
		}
		if errors.Is(err, common.ErrEngineUnavailable) {
			return ext, err
		}
		job.Logger.Warn("strategy failed", "method", s.Kind(), "error", err)
	}
	job.Logger.Debug("strategy done",
		"method", s.Kind(),
		"rows", len(ext.Rows),
		"headers", len(ext.Headers),
		"pages", ext.Pages,
		"page_failures", ext.PageFailures,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ext, nil
}

// load reads the input, refusing anything over MaxFileBytes before parsing.
func (p *Processor) load(in Input) ([]byte, error) {
	limit := p.cfg.MaxFileBytes
	if in.Path != "" {
		st, err := os.Stat(in.Path)
		if err != nil {
			return nil, common.NewAppError(common.CodeUnreadableInput, "cannot read input", errors.Join(common.ErrUnreadableInput, err))
		}
		if limit > 0 && st.Size() > limit {
			return nil, tooLarge(st.Size(), limit)
		}
		data, err := os.ReadFile(in.Path)
		if err != nil {
			return nil, common.NewAppError(common.CodeUnreadableInput, "cannot read input", errors.Join(common.ErrUnreadableInput, err))
		}
		return data, nil
	}
	if len(in.Data) == 0 {
		return nil, common.NewAppError(common.CodeUnreadableInput, "empty input", common.ErrInvalidInput)
	}
	if limit > 0 && int64(len(in.Data)) > limit {
		return nil, tooLarge(int64(len(in.Data)), limit)
	}
	return in.Data, nil
}

func (p *Processor) enter(job *Job, s constants.State) {
	job.Logger.Debug("state", "state", s)
}

func tooLarge(size, limit int64) error {
	return common.NewAppError(common.CodeInputTooLarge, fmt.Sprintf("input is %d bytes, limit is %d", size, limit), common.ErrInputTooLarge)
}

func checkCtx(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}
	return nil
}

func cancelled(err error) error {
	return common.NewAppError(common.CodeCancelled, "extraction cancelled", err)
}

func failure(err error) entity.ExtractionResult {
	return entity.Failed(err.Error())
}
