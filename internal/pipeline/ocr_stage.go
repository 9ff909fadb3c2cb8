package pipeline

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"runtime/debug"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/finstatement-extractor/constants"
	"github.com/joseph-ayodele/finstatement-extractor/internal/common"
	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
	"github.com/joseph-ayodele/finstatement-extractor/internal/layout"
	"github.com/joseph-ayodele/finstatement-extractor/internal/metrics"
	"github.com/joseph-ayodele/finstatement-extractor/internal/normalize"
	"github.com/joseph-ayodele/finstatement-extractor/internal/ocr"
)

// Renderer rasterizes one PDF page to an image file. cleanup is never nil.
type Renderer interface {
	RenderPage(ctx context.Context, pdfPath string, page, dpi int) (imagePath string, cleanup func(), err error)
}

type ocrStrategy struct {
	cfg      common.ExtractConfig
	renderer Renderer
	engine   ocr.Engine
	params   layout.Params
	dpi      int
	noise    *normalize.NoiseFilter
	metrics  *metrics.Metrics
}

type ocrPage struct {
	result layout.PageResult
	text   string
}

func (*ocrStrategy) Kind() constants.Method { return constants.MethodOCR }

// Extract OCRs up to cfg.OCRMaxPages pages on a bounded pool. Failed pages
// are logged and skipped; output keeps page order.
func (s *ocrStrategy) Extract(ctx context.Context, job *Job) (entity.Extraction, error) {
	out := entity.Extraction{Rows: []entity.RawRow{}}
	if s.engine == nil || s.renderer == nil {
		return out, common.NewAppError(common.CodeEngineUnavailable, "ocr is not configured", common.ErrEngineUnavailable)
	}
	path, err := job.PDFPath()
	if err != nil {
		return out, err
	}

	n := job.Doc.NumPages()
	if s.cfg.OCRMaxPages > 0 {
		n = min(n, s.cfg.OCRMaxPages)
	}
	pages := make([]*ocrPage, n)
	var failures atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.cfg.OCRWorkers))
	for i := range n {
		page := i + 1
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := s.safePage(gctx, job, path, page)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				job.Logger.Warn("skipping page", "page", page, "error", common.PageError(page, err))
				failures.Add(1)
				s.metrics.PageFailure(string(constants.MethodOCR))
				return nil
			}
			pages[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}

	var text strings.Builder
	for _, p := range pages {
		if p == nil {
			continue
		}
		if len(out.Headers) == 0 && len(p.result.Headers) > 0 {
			out.Headers = p.result.Headers
		}
		out.Rows = append(out.Rows, p.result.Rows...)
		text.WriteString(p.text)
		text.WriteByte('\n')
	}
	out.Pages = n
	out.PageFailures = int(failures.Load())
	out.UnitLabel = normalize.DetectUnit(text.String())
	if n > 0 && out.PageFailures == n {
		return out, fmt.Errorf("all %d pages failed: %w", n, common.ErrPageProcessing)
	}
	return out, nil
}

// safePage turns a panic in one page's OCR into a failure of that page.
func (s *ocrStrategy) safePage(ctx context.Context, job *Job, path string, page int) (p *ocrPage, err error) {
	defer func() {
		if r := recover(); r != nil {
			job.Logger.Error("page panicked", "page", page, "panic", r, "stack", string(debug.Stack()))
			p, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return s.page(ctx, job, path, page)
}

func (s *ocrStrategy) page(ctx context.Context, job *Job, path string, page int) (*ocrPage, error) {
	img, cleanup, err := s.renderer.RenderPage(ctx, path, page, s.dpi)
	defer cleanup()
	if err != nil {
		return nil, err
	}

	words, err := s.engine.Words(ctx, img)
	if err != nil {
		return nil, err
	}
	text, err := s.engine.Text(ctx, img)
	if err != nil {
		// plain text only feeds the year and unit lookups
		job.Logger.Debug("page text unavailable", "page", page, "error", err)
	}

	res := layout.ReconstructPage(words, text, imageWidth(img), s.params, s.noise)
	job.Logger.Debug("page reconstructed",
		"page", page,
		"words", len(words),
		"mean_conf", ocr.MeanConfidence(words),
		"anchors", res.Kind.String(),
		"rows", len(res.Rows),
	)
	return &ocrPage{result: res, text: text}, nil
}

// imageWidth reads the pixel width from the image header; 0 when unknown.
func imageWidth(path string) float64 {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0
	}
	return float64(cfg.Width)
}
