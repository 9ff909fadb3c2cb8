package layout

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/joseph-ayodele/finstatement-extractor/internal/normalize"
	"github.com/joseph-ayodele/finstatement-extractor/internal/ocr"
)

// Headers is the composed header line of a page.
type Headers struct {
	Labels []string
	// MissingYears is set when a month or quarter column has no year.
	MissingYears bool
	// Resolved counts columns that got a real label instead of "Column N".
	Resolved int
	// Bottom is the lowest pixel row used by the header; table rows start
	// below it.
	Bottom float64
}

type colParts struct {
	month   int
	day     string
	year    string
	quarter int
	qYear   string
	fy      string
}

func (c colParts) label() (string, bool) {
	switch {
	case c.quarter > 0:
		q := fmt.Sprintf("Q%d", c.quarter)
		switch {
		case c.qYear != "":
			return q + " " + fullYear(c.qYear), false
		case c.year != "":
			return q + " " + c.year, false
		case c.fy != "":
			return q + " " + c.fy, false
		}
		return q, true
	case c.month > 0:
		parts := []string{normalize.MonthAbbr(c.month)}
		if c.day != "" {
			parts = append(parts, c.day)
		}
		if c.year != "" {
			parts = append(parts, c.year)
		}
		return strings.Join(parts, " "), c.year == ""
	case c.fy != "":
		return c.fy, false
	case c.year != "":
		return c.year, false
	}
	return "", false
}

var reDigits = regexp.MustCompile(`\d{2,4}`)

// fyLabel renders fiscal-year tokens as "FY24"; ranges use their end year.
func fyLabel(token string) string {
	ds := reDigits.FindAllString(token, -1)
	if len(ds) == 0 {
		return strings.ToUpper(token)
	}
	last := ds[len(ds)-1]
	if len(last) == 4 {
		last = last[2:]
	}
	return "FY" + last
}

func fullYear(y string) string {
	if len(y) == 2 {
		return "20" + y
	}
	return y
}

// AssembleHeaders composes one header per anchor from the header-like tokens
// near the anchor row. Bands that hold figures are data rows and are never
// read as header text.
func AssembleHeaders(words []ocr.Word, anchors []ColumnAnchor, anchorY float64, p Params) Headers {
	h := Headers{Bottom: math.Inf(-1)}
	if len(anchors) == 0 {
		return Headers{}
	}
	tol := tolerance(anchors, p)
	firstEdge := anchors[0].CenterX - tol
	parts := make([]colParts, len(anchors))

	var header, context []ocr.Word
	for _, b := range bandWords(words, p.RowBandPx) {
		if isDataBand(b, firstEdge) {
			continue
		}
		for _, w := range b.words {
			d := math.Abs(w.CenterY() - anchorY)
			if d <= p.HeaderBandPx {
				header = append(header, w)
			} else if d <= p.ContextBandPx {
				context = append(context, w)
			}
		}
	}
	sortReading(header)
	sortReading(context)

	for _, w := range header {
		col := nearest(anchors, w.CenterX(), tol)
		if col < 0 {
			continue
		}
		if parts[col].absorb(w.Text) {
			h.Bottom = math.Max(h.Bottom, w.Bottom())
		}
	}
	// years may sit on a line further from the anchor row
	for _, w := range context {
		col := nearest(anchors, w.CenterX(), tol)
		if col < 0 || parts[col].year != "" || (parts[col].month == 0 && parts[col].quarter == 0) {
			continue
		}
		if y, ok := normalize.YearToken(w.Text); ok {
			parts[col].year = y
		}
	}

	h.Labels = make([]string, len(anchors))
	for i, c := range parts {
		label, missing := c.label()
		if label == "" {
			label = fmt.Sprintf("Column %d", i+1)
		} else {
			h.Resolved++
		}
		h.Labels[i] = label
		h.MissingYears = h.MissingYears || missing
	}
	if math.IsInf(h.Bottom, -1) {
		// no header text: rows start just above the anchor row
		h.Bottom = anchorY - p.RowBandPx
	}
	return h
}

// absorb records a header token; it reports whether the token was used.
func (c *colParts) absorb(text string) bool {
	t := strings.TrimSpace(text)
	if m, ok := normalize.MonthIndex(t); ok {
		if c.month == 0 {
			c.month = m
		}
		return true
	}
	if q, y, ok := normalize.QuarterToken(t); ok {
		if c.quarter == 0 {
			c.quarter, c.qYear = q, y
		}
		return true
	}
	if normalize.IsFiscalYearToken(t) {
		if c.fy == "" {
			c.fy = fyLabel(t)
		}
		return true
	}
	if y, ok := normalize.YearToken(t); ok {
		if c.year == "" {
			c.year = y
		}
		return true
	}
	if d, ok := normalize.DayToken(t); ok && c.month > 0 {
		if c.day == "" {
			c.day = d
		}
		return true
	}
	return false
}

func isHeaderToken(t string) bool {
	if kindOf(t).Labeled() {
		return true
	}
	_, ok := normalize.DayToken(t)
	return ok
}

// isDataBand reports whether a band carries figures in the column area.
func isDataBand(b band, firstEdge float64) bool {
	for _, w := range b.words {
		if w.CenterX() >= firstEdge && normalize.LooksNumeric(w.Text) && !isHeaderToken(w.Text) {
			return true
		}
	}
	return false
}

func sortReading(ws []ocr.Word) {
	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].CenterY() != ws[j].CenterY() {
			return ws[i].CenterY() < ws[j].CenterY()
		}
		return ws[i].Left < ws[j].Left
	})
}
