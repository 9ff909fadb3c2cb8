package layout

import (
	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
	"github.com/joseph-ayodele/finstatement-extractor/internal/normalize"
	"github.com/joseph-ayodele/finstatement-extractor/internal/ocr"
)

// PageResult is the table recovered from one OCR page. Headers is nil when
// no column got a real label.
type PageResult struct {
	Headers []string
	Rows    []entity.RawRow
	Kind    AnchorKind
	Year    int
}

// ReconstructPage runs the full layout pipeline over one page's words.
func ReconstructPage(words []ocr.Word, plainText string, pageWidth float64, p Params, filter *normalize.NoiseFilter) PageResult {
	kept := make([]ocr.Word, 0, len(words))
	for _, w := range words {
		if w.Conf >= p.MinConfidence {
			kept = append(kept, w)
		}
	}
	if pageWidth <= 0 {
		for _, w := range kept {
			pageWidth = max(pageWidth, w.Right())
		}
	}

	anchors, anchorY := DetectAnchors(kept, pageWidth, p)
	if len(anchors) == 0 {
		return PageResult{}
	}
	res := PageResult{Kind: anchors[0].Kind}

	h := AssembleHeaders(kept, anchors, anchorY, p)
	labels := h.Labels
	if h.MissingYears {
		res.Year = PageYear(kept, plainText)
		labels = BackfillFiscalYears(labels, res.Year)
	}
	if h.Resolved > 0 {
		res.Headers = labels
	}
	res.Rows = AssembleRows(kept, anchors, h.Bottom, p, filter)
	return res
}
