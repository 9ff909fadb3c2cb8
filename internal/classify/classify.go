// Package classify decides whether a PDF carries a usable text layer.
package classify

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/finstatement-extractor/constants"
	"github.com/joseph-ayodele/finstatement-extractor/internal/common"
	"github.com/joseph-ayodele/finstatement-extractor/internal/pdfdoc"
)

// Classify samples the first cfg.ClassifySamplePages pages. Any page with more
// than cfg.MinTextChars characters of text makes the document TEXT_LAYER.
// Page read failures count as empty text, so a broken text layer degrades to
// SCANNED_IMAGE. A document without pages cannot be classified.
func Classify(ctx context.Context, doc pdfdoc.Document, cfg common.ExtractConfig, logger *slog.Logger) (constants.DocumentKind, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if doc.NumPages() == 0 {
		return constants.DocumentScannedImage, common.ErrClassification
	}
	sample := min(cfg.ClassifySamplePages, doc.NumPages())
	for page := 1; page <= sample; page++ {
		if err := ctx.Err(); err != nil {
			return constants.DocumentScannedImage, err
		}
		text, err := doc.PageText(page)
		if err != nil {
			logger.Warn("page text unavailable during classification", "page", page, "error", err)
			continue
		}
		n := utf8.RuneCountInString(strings.TrimSpace(text))
		if n > cfg.MinTextChars {
			logger.Debug("text layer detected", "page", page, "chars", n)
			return constants.DocumentTextLayer, nil
		}
	}
	return constants.DocumentScannedImage, nil
}
