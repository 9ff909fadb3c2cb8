package pipeline

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
	"github.com/joseph-ayodele/finstatement-extractor/internal/normalize"
)

// Finalize turns a strategy's output into the published result: duplicate
// labels are dropped (first wins), headers are made unique or replaced by
// "Period N" placeholders, every row gets exactly one value per header and
// section headings lose their values.
func Finalize(ext entity.Extraction) entity.ExtractionResult {
	rows := dedupeRows(ext.Rows)

	widest := 0
	for _, r := range rows {
		widest = max(widest, len(r.Values))
	}
	headers := uniqueHeaders(ext.Headers)
	if len(headers) == 0 {
		headers = placeholderHeaders(max(widest, 1))
	}

	out := make([]entity.RawRow, len(rows))
	for i, r := range rows {
		aligned := r.WithWidth(len(headers))
		out[i] = entity.NewRow(aligned.Label, aligned.Values, aligned.Indent, aligned.SectionHint, aligned.IsSectionHeader)
	}
	return entity.ExtractionResult{
		YearHeaders: headers,
		Rows:        out,
		UnitLabel:   ext.UnitLabel,
		Pages:       ext.Pages,
	}
}

func dedupeRows(rows []entity.RawRow) []entity.RawRow {
	seen := make(map[string]struct{}, len(rows))
	out := make([]entity.RawRow, 0, len(rows))
	for _, r := range rows {
		key := normalize.NormalizeKey(r.Label)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// uniqueHeaders blanks become "Period N"; repeats get a " (2)" style suffix.
func uniqueHeaders(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	seen := make(map[string]int, len(in))
	for i, h := range in {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Period %d", i+1)
		}
		base := h
		for seen[strings.ToLower(h)] > 0 {
			seen[strings.ToLower(base)]++
			h = fmt.Sprintf("%s (%d)", base, seen[strings.ToLower(base)])
		}
		seen[strings.ToLower(h)]++
		out[i] = h
	}
	return out
}

func placeholderHeaders(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Period %d", i+1)
	}
	return out
}
