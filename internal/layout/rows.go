package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
	"github.com/joseph-ayodele/finstatement-extractor/internal/normalize"
	"github.com/joseph-ayodele/finstatement-extractor/internal/ocr"
)

type band struct {
	y     float64
	words []ocr.Word
}

// bandWords groups words top to bottom; a band takes every word whose
// center is within px of the band's first word.
func bandWords(words []ocr.Word, px float64) []band {
	ws := append([]ocr.Word(nil), words...)
	sort.SliceStable(ws, func(i, j int) bool { return ws[i].CenterY() < ws[j].CenterY() })

	var out []band
	for _, w := range ws {
		if n := len(out); n > 0 && w.CenterY()-out[n-1].y <= px {
			out[n-1].words = append(out[n-1].words, w)
			continue
		}
		out = append(out, band{y: w.CenterY(), words: []ocr.Word{w}})
	}
	for i := range out {
		sort.SliceStable(out[i].words, func(a, b int) bool { return out[i].words[a].Left < out[i].words[b].Left })
	}
	return out
}

type rowCandidate struct {
	label  string
	left   float64
	height float64
	values []entity.Value
	has    bool
}

// AssembleRows reads every band below headerBottom as a line item: words left
// of the first column form the label, figures near a column center fill
// that column (the last one wins).
func AssembleRows(words []ocr.Word, anchors []ColumnAnchor, headerBottom float64, p Params, filter *normalize.NoiseFilter) []entity.RawRow {
	if len(anchors) == 0 {
		return nil
	}
	if filter == nil {
		filter = normalize.MustNoiseFilter()
	}
	tol := tolerance(anchors, p)
	firstEdge := anchors[0].CenterX - tol

	var below []ocr.Word
	for _, w := range words {
		if w.CenterY() > headerBottom {
			below = append(below, w)
		}
	}

	var cands []rowCandidate
	for _, b := range bandWords(below, p.RowBandPx) {
		c := rowCandidate{values: make([]entity.Value, len(anchors)), left: math.Inf(1)}
		var label []string
		var heights []float64
		for _, w := range b.words {
			if w.CenterX() < firstEdge {
				label = append(label, w.Text)
				c.left = math.Min(c.left, w.Left)
				heights = append(heights, w.Height)
				continue
			}
			if !normalize.LooksNumeric(w.Text) {
				continue
			}
			col := nearest(anchors, w.CenterX(), tol)
			if col < 0 {
				continue
			}
			if f, ok := normalize.ParseNumber(w.Text); ok {
				c.values[col] = entity.Number(f)
				c.has = true
			}
		}
		for len(label) > 1 && normalize.IsNoteToken(label[len(label)-1]) {
			label = label[:len(label)-1]
		}
		c.label = normalize.CleanLabel(strings.Join(label, " "))
		c.height = median(heights)
		if len([]rune(c.label)) < 2 || normalize.IsNumericOrPunct(c.label) || filter.IsNoise(c.label) {
			continue
		}
		cands = append(cands, c)
	}

	margin, charW := labelMargin(cands)
	var rows []entity.RawRow
	for _, c := range cands {
		hint, header := normalize.SectionFor(c.label, c.has)
		if !c.has && !header {
			continue
		}
		indent := normalize.IndentLevel(int(math.Round((c.left - margin) / charW)))
		rows = append(rows, entity.NewRow(c.label, c.values, indent, hint, header))
	}
	return rows
}

// labelMargin returns the leftmost label edge and an approximate character
// width used to turn label offsets into indentation.
func labelMargin(cands []rowCandidate) (float64, float64) {
	margin := math.Inf(1)
	var hs []float64
	for _, c := range cands {
		margin = math.Min(margin, c.left)
		if c.height > 0 {
			hs = append(hs, c.height)
		}
	}
	charW := median(hs) * 0.5
	if charW <= 0 {
		charW = 10
	}
	return margin, charW
}
