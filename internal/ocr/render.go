package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// Renderer rasterizes single PDF pages with pdftoppm.
type Renderer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewRenderer(cfg Config, runner Runner, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = NewExecRunner(logger)
	}
	return &Renderer{cfg: cfg.withDefaults(), runner: runner, logger: logger}
}

// RenderPage writes page (1-based) of pdfPath as a PNG at dpi (cfg.DPI when
// dpi <= 0). The caller must call cleanup, which is non-nil on every return.
func (r *Renderer) RenderPage(ctx context.Context, pdfPath string, page, dpi int) (string, func(), error) {
	noop := func() {}
	if dpi <= 0 {
		dpi = r.cfg.DPI
	}
	tmpDir, err := os.MkdirTemp("", "fx-page-*")
	if err != nil {
		return "", noop, err
	}
	cleanup := func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			r.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}

	prefix := filepath.Join(tmpDir, "page")
	p := strconv.Itoa(page)
	// pdftoppm -r 220 -f 3 -l 3 -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, "-r", strconv.Itoa(dpi), "-f", p, "-l", p, "-png", pdfPath, prefix)
	if err != nil {
		cleanup()
		return "", noop, fmt.Errorf("pdftoppm page %d: %w: %s", page, err, truncate(string(errb), 512))
	}

	// pdftoppm zero-pads the page suffix to the width of the page count
	matches, _ := filepath.Glob(prefix + "-*.png")
	if len(matches) == 0 {
		cleanup()
		return "", noop, fmt.Errorf("pdftoppm page %d: no image produced", page)
	}
	return matches[0], cleanup, nil
}
