// Package pdfdoc reads native PDF text with positions and turns positioned
// words into candidate tables.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Word is a run of glyphs in page space: origin top-left, units in points.
type Word struct {
	Text string
	X    float64
	Y    float64
	W    float64
	H    float64
}

func (w Word) Right() float64   { return w.X + w.W }
func (w Word) Bottom() float64  { return w.Y + w.H }
func (w Word) CenterX() float64 { return w.X + w.W/2 }
func (w Word) CenterY() float64 { return w.Y + w.H/2 }

// Rule is a drawn ruling segment, top-left origin.
type Rule struct {
	X0, Y0, X1, Y1 float64
}

const ruleThickness = 2.0

func (r Rule) Horizontal() bool { return r.Y1-r.Y0 <= ruleThickness && r.X1-r.X0 > ruleThickness }
func (r Rule) Vertical() bool   { return r.X1-r.X0 <= ruleThickness && r.Y1-r.Y0 > ruleThickness }

// Document is the read side of a PDF used by the extractors. Pages are 1-based.
type Document interface {
	NumPages() int
	PageText(page int) (string, error)
	PageWords(page int) ([]Word, error)
	PageRules(page int) ([]Rule, error)
	Close() error
}

var ErrPageRange = errors.New("page out of range")

type pdfDocument struct {
	r *pdf.Reader
}

// Open parses data as a PDF. The underlying reader panics on some malformed
// streams; those panics are returned as errors here and on every page call.
func Open(data []byte) (doc Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	if r.NumPage() < 1 {
		return nil, errors.New("open pdf: document has no pages")
	}
	return &pdfDocument{r: r}, nil
}

func (d *pdfDocument) NumPages() int { return d.r.NumPage() }

func (d *pdfDocument) page(i int) (pdf.Page, error) {
	if i < 1 || i > d.r.NumPage() {
		return pdf.Page{}, fmt.Errorf("%w: %d", ErrPageRange, i)
	}
	p := d.r.Page(i)
	if p.V.IsNull() {
		return pdf.Page{}, fmt.Errorf("page %d: missing page object", i)
	}
	return p, nil
}

func (d *pdfDocument) PageText(i int) (text string, err error) {
	defer recoverPage(i, &err)
	p, err := d.page(i)
	if err != nil {
		return "", err
	}
	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d text: %w", i, err)
	}
	return text, nil
}

func (d *pdfDocument) PageWords(i int) (words []Word, err error) {
	defer recoverPage(i, &err)
	p, err := d.page(i)
	if err != nil {
		return nil, err
	}
	_, height := pageSize(p)
	return mergeGlyphs(p.Content().Text, height), nil
}

func (d *pdfDocument) PageRules(i int) (rules []Rule, err error) {
	defer recoverPage(i, &err)
	p, err := d.page(i)
	if err != nil {
		return nil, err
	}
	_, height := pageSize(p)
	for _, r := range p.Content().Rect {
		rules = append(rules, rectRules(r.Min.X, height-r.Max.Y, r.Max.X, height-r.Min.Y)...)
	}
	return rules, nil
}

func (d *pdfDocument) Close() error { return nil }

func recoverPage(page int, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("page %d: malformed content: %v", page, r)
	}
}

// pageSize reads the (possibly inherited) MediaBox, defaulting to US Letter.
func pageSize(p pdf.Page) (float64, float64) {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Kind() != pdf.Array || box.Len() != 4 {
			continue
		}
		w := box.Index(2).Float64() - box.Index(0).Float64()
		h := box.Index(3).Float64() - box.Index(1).Float64()
		if w > 0 && h > 0 {
			return w, h
		}
	}
	return 612, 792
}

// rectRules turns a filled rectangle into rules. Thin rectangles are a single
// rule; boxes contribute their four edges.
func rectRules(x0, y0, x1, y1 float64) []Rule {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	if x1-x0 <= ruleThickness || y1-y0 <= ruleThickness {
		return []Rule{{X0: x0, Y0: y0, X1: x1, Y1: y1}}
	}
	return []Rule{
		{X0: x0, Y0: y0, X1: x1, Y1: y0},
		{X0: x0, Y0: y1, X1: x1, Y1: y1},
		{X0: x0, Y0: y0, X1: x0, Y1: y1},
		{X0: x1, Y0: y0, X1: x1, Y1: y1},
	}
}

// mergeGlyphs joins positioned glyph runs into words. Whitespace and
// horizontal gaps wider than a fraction of the font size end a word.
func mergeGlyphs(glyphs []pdf.Text, pageHeight float64) []Word {
	gs := make([]pdf.Text, 0, len(glyphs))
	for _, g := range glyphs {
		if g.S != "" {
			gs = append(gs, g)
		}
	}
	sort.SliceStable(gs, func(i, j int) bool {
		yi, yj := math.Round(gs[i].Y), math.Round(gs[j].Y)
		if yi != yj {
			return yi > yj
		}
		return gs[i].X < gs[j].X
	})

	var (
		words []Word
		cur   strings.Builder
		start pdf.Text
		end   float64
		size  float64
		open  bool
	)
	flush := func() {
		if !open {
			return
		}
		if s := strings.TrimSpace(cur.String()); s != "" {
			words = append(words, Word{
				Text: s,
				X:    start.X,
				Y:    pageHeight - start.Y - size,
				W:    end - start.X,
				H:    size,
			})
		}
		cur.Reset()
		open = false
	}

	for _, g := range gs {
		fs := g.FontSize
		if fs <= 0 {
			fs = 10
		}
		if strings.TrimSpace(g.S) == "" {
			flush()
			continue
		}
		if open {
			gap := g.X - end
			dy := g.Y - start.Y
			if dy > sameBaseline(start, g) || -dy > sameBaseline(start, g) || gap > 0.25*fs || gap < -fs {
				flush()
			}
		}
		if !open {
			start, size, open = g, fs, true
		}
		cur.WriteString(g.S)
		end = g.X + g.W
		if fs > size {
			size = fs
		}
	}
	flush()
	return words
}

func sameBaseline(a, b pdf.Text) float64 {
	s := a.FontSize
	if b.FontSize > s {
		s = b.FontSize
	}
	if s <= 0 {
		s = 10
	}
	return s * 0.4
}
