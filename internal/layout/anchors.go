package layout

import (
	"math"
	"sort"

	"github.com/joseph-ayodele/finstatement-extractor/internal/normalize"
	"github.com/joseph-ayodele/finstatement-extractor/internal/ocr"
)

// AnchorKind is the header pattern that defines the columns of a page.
type AnchorKind int

const (
	AnchorNone AnchorKind = iota
	AnchorMonth
	AnchorQuarter
	AnchorFiscalYear
	AnchorYear
	AnchorGeneric
)

func (k AnchorKind) String() string {
	switch k {
	case AnchorMonth:
		return "MONTH"
	case AnchorQuarter:
		return "QUARTER"
	case AnchorFiscalYear:
		return "FISCAL_YEAR"
	case AnchorYear:
		return "YEAR"
	case AnchorGeneric:
		return "GENERIC"
	default:
		return "NONE"
	}
}

// Labeled reports whether the kind is a date label rather than bare figures.
func (k AnchorKind) Labeled() bool {
	return k >= AnchorMonth && k <= AnchorYear
}

// ColumnAnchor is the horizontal center of one value column.
type ColumnAnchor struct {
	CenterX float64
	Kind    AnchorKind
}

// kindOf classifies a single OCR token. Labeled kinds are checked first so
// "2024" is a year, not a figure.
func kindOf(text string) AnchorKind {
	switch {
	case normalize.IsMonthToken(text):
		return AnchorMonth
	case isQuarter(text):
		return AnchorQuarter
	case normalize.IsFiscalYearToken(text):
		return AnchorFiscalYear
	case isYear(text):
		return AnchorYear
	}
	if _, ok := normalize.ParseNumber(text); ok {
		return AnchorGeneric
	}
	return AnchorNone
}

func isQuarter(s string) bool {
	_, _, ok := normalize.QuarterToken(s)
	return ok
}

func isYear(s string) bool {
	_, ok := normalize.YearToken(s)
	return ok
}

// DetectAnchors finds the value columns of a page. It returns nil when no
// anchor pattern is present. anchorY is the vertical center of the anchor
// row: the header line for labeled kinds, the first figure row otherwise.
func DetectAnchors(words []ocr.Word, pageWidth float64, p Params) (anchors []ColumnAnchor, anchorY float64) {
	minX := (1 - p.RightRegion) * pageWidth
	byKind := map[AnchorKind][]ocr.Word{}
	for _, w := range words {
		if w.CenterX() <= minX {
			continue
		}
		if k := kindOf(w.Text); k != AnchorNone {
			byKind[k] = append(byKind[k], w)
		}
	}

	// A labeled kind only defines the columns when its words share a header
	// line, unless the page has no figures at all. A lone year inside a long
	// label must not turn a figure table into a one-column page.
	kind := AnchorNone
	var band []ocr.Word
	for _, k := range []AnchorKind{AnchorMonth, AnchorQuarter, AnchorFiscalYear, AnchorYear} {
		b := densestBand(byKind[k], p.RowBandPx)
		if len(b) < 2 && (len(b) == 0 || len(byKind[AnchorGeneric]) > 0) {
			continue
		}
		// ties go to the earlier (more specific) kind
		if len(b) > len(band) {
			kind, band = k, b
		}
	}
	if kind == AnchorNone && len(byKind[AnchorGeneric]) > 0 {
		kind = AnchorGeneric
	}
	if kind == AnchorNone {
		return nil, 0
	}

	matched := byKind[kind]
	factor := p.GenericGapFactor
	if kind.Labeled() {
		factor = p.LabeledGapFactor
		anchorY = meanCenterY(band)
		// stray date words far from the header line do not define columns
		var near []ocr.Word
		for _, w := range matched {
			if math.Abs(w.CenterY()-anchorY) <= p.HeaderBandPx {
				near = append(near, w)
			}
		}
		matched = near
	} else {
		anchorY = math.Inf(1)
		for _, w := range matched {
			anchorY = math.Min(anchorY, w.CenterY())
		}
	}

	clusters := clusterCenters(matched, factor, p.MinGapPx)
	if kind == AnchorGeneric {
		clusters = dropSparse(clusters)
	}
	clusters = capClusters(clusters, p.MaxColumns)

	anchors = make([]ColumnAnchor, len(clusters))
	for i, c := range clusters {
		anchors[i] = ColumnAnchor{CenterX: c.center(), Kind: kind}
	}
	return anchors, anchorY
}

type cluster []float64

func (c cluster) center() float64 {
	var s float64
	for _, x := range c {
		s += x
	}
	return s / float64(len(c))
}

// clusterCenters splits sorted word centers wherever the gap to the next
// center exceeds max(median gap * factor, minGap).
func clusterCenters(words []ocr.Word, factor, minGap float64) []cluster {
	if len(words) == 0 {
		return nil
	}
	xs := make([]float64, len(words))
	for i, w := range words {
		xs[i] = w.CenterX()
	}
	sort.Float64s(xs)

	gaps := make([]float64, 0, len(xs))
	for i := 1; i < len(xs); i++ {
		gaps = append(gaps, xs[i]-xs[i-1])
	}
	threshold := math.Max(median(gaps)*factor, minGap)

	out := []cluster{{xs[0]}}
	for i := 1; i < len(xs); i++ {
		if xs[i]-xs[i-1] > threshold {
			out = append(out, cluster{})
		}
		out[len(out)-1] = append(out[len(out)-1], xs[i])
	}
	return out
}

// dropSparse removes single-figure clusters when real columns exist.
func dropSparse(cs []cluster) []cluster {
	most := 0
	for _, c := range cs {
		most = max(most, len(c))
	}
	if most < 3 {
		return cs
	}
	var out []cluster
	for _, c := range cs {
		if len(c) > 1 {
			out = append(out, c)
		}
	}
	return out
}

// capClusters keeps the n best-populated clusters (rightmost on ties) in
// left-to-right order.
func capClusters(cs []cluster, n int) []cluster {
	if n <= 0 || len(cs) <= n {
		return cs
	}
	idx := make([]int, len(cs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if len(cs[idx[a]]) != len(cs[idx[b]]) {
			return len(cs[idx[a]]) > len(cs[idx[b]])
		}
		return idx[a] > idx[b]
	})
	keep := idx[:n]
	sort.Ints(keep)
	out := make([]cluster, n)
	for i, j := range keep {
		out[i] = cs[j]
	}
	return out
}

// densestBand returns the largest group of words whose centers lie within
// band of one word's center, preferring the topmost group on ties.
func densestBand(words []ocr.Word, band float64) []ocr.Word {
	sorted := append([]ocr.Word(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CenterY() < sorted[j].CenterY() })
	var best []ocr.Word
	for _, seed := range sorted {
		var group []ocr.Word
		for _, w := range sorted {
			if math.Abs(w.CenterY()-seed.CenterY()) <= band {
				group = append(group, w)
			}
		}
		if len(group) > len(best) {
			best = group
		}
	}
	return best
}

func meanCenterY(words []ocr.Word) float64 {
	var s float64
	for _, w := range words {
		s += w.CenterY()
	}
	return s / float64(len(words))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	if len(s)%2 == 1 {
		return s[len(s)/2]
	}
	return (s[len(s)/2-1] + s[len(s)/2]) / 2
}

// tolerance is the horizontal reach of a column.
func tolerance(anchors []ColumnAnchor, p Params) float64 {
	if len(anchors) < 2 {
		return p.ColumnTolFactor * singleColumnSpacing
	}
	gaps := make([]float64, 0, len(anchors)-1)
	for i := 1; i < len(anchors); i++ {
		gaps = append(gaps, anchors[i].CenterX-anchors[i-1].CenterX)
	}
	return p.ColumnTolFactor * median(gaps)
}

// nearest returns the index of the closest anchor within tol, or -1.
func nearest(anchors []ColumnAnchor, x, tol float64) int {
	best, dist := -1, math.Inf(1)
	for i, a := range anchors {
		if d := math.Abs(a.CenterX - x); d <= tol && d < dist {
			best, dist = i, d
		}
	}
	return best
}
