// Package textlayer reconstructs statement tables from the native text layer
// of a PDF.
package textlayer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/finstatement-extractor/internal/common"
	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
	"github.com/joseph-ayodele/finstatement-extractor/internal/normalize"
	"github.com/joseph-ayodele/finstatement-extractor/internal/pdfdoc"
)

// PageRange is an inclusive 1-based range. Zero bounds mean "from the first
// page" and "to the last page".
type PageRange struct {
	From, To int
}

type Extractor struct {
	cfg    common.ExtractConfig
	noise  *normalize.NoiseFilter
	logger *slog.Logger
}

func New(cfg common.ExtractConfig, noise *normalize.NoiseFilter, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if noise == nil {
		noise = normalize.MustNoiseFilter()
	}
	return &Extractor{cfg: cfg, noise: noise, logger: logger}
}

// Extract walks the pages in range (at most cfg.TextMaxPages) and collects
// rows from the best table found on each. A failing page is logged and
// skipped; only cancellation returns an error.
func (e *Extractor) Extract(ctx context.Context, doc pdfdoc.Document, pages PageRange) (entity.Extraction, error) {
	from, to := e.bounds(doc.NumPages(), pages)
	out := entity.Extraction{Rows: []entity.RawRow{}}

	var sample strings.Builder
	for page := from; page <= to; page++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out.Pages++

		text, err := doc.PageText(page)
		if err != nil {
			e.logger.Debug("page text unavailable", "page", page, "error", err)
		} else {
			sample.WriteString(text)
			sample.WriteByte('\n')
		}

		words, err := doc.PageWords(page)
		if err != nil {
			e.logger.Warn("skipping page", "page", page, "error", common.PageError(page, err))
			out.PageFailures++
			continue
		}
		rules, err := doc.PageRules(page)
		if err != nil {
			e.logger.Debug("page rules unavailable", "page", page, "error", err)
		}

		table, strategy := e.pickTable(words, rules)
		if len(table) == 0 {
			continue
		}
		headers, rows := e.parseTable(table)
		e.logger.Debug("page parsed", "page", page, "strategy", strategy, "table_rows", len(table), "rows", len(rows), "headers", len(headers))
		if len(out.Headers) == 0 && len(headers) > 0 {
			out.Headers = headers
		}
		out.Rows = append(out.Rows, rows...)
	}
	out.UnitLabel = normalize.DetectUnit(sample.String())
	return out, nil
}

func (e *Extractor) bounds(n int, r PageRange) (int, int) {
	from, to := r.From, r.To
	if from < 1 {
		from = 1
	}
	if to < 1 || to > n {
		to = n
	}
	if limit := e.cfg.TextMaxPages; limit > 0 && to-from+1 > limit {
		to = from + limit - 1
	}
	return from, to
}

// pickTable tries ruled grids, then whitespace columns, then falls back to
// one row per line.
func (e *Extractor) pickTable(words []pdfdoc.Word, rules []pdfdoc.Rule) (pdfdoc.Table, string) {
	for _, s := range []pdfdoc.Strategy{pdfdoc.StrategyLines, pdfdoc.StrategyText} {
		for _, t := range pdfdoc.DetectTables(words, rules, s) {
			if len(t) > e.cfg.MinTableRows {
				return t, s.String()
			}
		}
	}
	return pdfdoc.GroupRows(words), "rows"
}
