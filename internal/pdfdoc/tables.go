package pdfdoc

import (
	"math"
	"sort"
	"strings"
)

// Strategy selects how table cells are found on a page.
type Strategy int

const (
	// StrategyLines builds a grid from drawn ruling lines.
	StrategyLines Strategy = iota
	// StrategyText infers columns from whitespace gutters shared by rows.
	StrategyText
)

func (s Strategy) String() string {
	switch s {
	case StrategyLines:
		return "lines"
	case StrategyText:
		return "text"
	default:
		return "unknown"
	}
}

// Table is a grid of cell texts, top to bottom. The first cell of a row may
// carry leading spaces that encode its indentation.
type Table [][]string

const (
	snapTolerance = 3.0
	minGutter     = 4
	maxIndent     = 8
)

// Line is a set of words sharing a baseline, ordered left to right.
type Line struct {
	Y     float64
	Words []Word
}

// GroupLines clusters words into lines by vertical center and orders them in
// reading order.
func GroupLines(words []Word) []Line {
	if len(words) == 0 {
		return nil
	}
	ws := make([]Word, len(words))
	copy(ws, words)
	sort.SliceStable(ws, func(i, j int) bool { return ws[i].CenterY() < ws[j].CenterY() })

	var lines []Line
	var cur []Word
	var curY, curH float64
	for _, w := range ws {
		h := math.Max(w.H, 1)
		if len(cur) > 0 && math.Abs(w.CenterY()-curY) <= 0.5*math.Max(curH, h) {
			cur = append(cur, w)
			curY = (curY*float64(len(cur)-1) + w.CenterY()) / float64(len(cur))
			curH = math.Max(curH, h)
			continue
		}
		if len(cur) > 0 {
			lines = append(lines, newLine(cur, curY))
		}
		cur, curY, curH = []Word{w}, w.CenterY(), h
	}
	if len(cur) > 0 {
		lines = append(lines, newLine(cur, curY))
	}
	return lines
}

func newLine(words []Word, y float64) Line {
	sort.SliceStable(words, func(i, j int) bool { return words[i].X < words[j].X })
	return Line{Y: y, Words: words}
}

type segment struct {
	words  []Word
	x0, x1 float64
}

func (s segment) text() string {
	parts := make([]string, len(s.words))
	for i, w := range s.words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

func (s segment) centerX() float64 { return (s.x0 + s.x1) / 2 }

// splitSegments breaks a line at gaps wider than about one character height.
func splitSegments(l Line) []segment {
	if len(l.Words) == 0 {
		return nil
	}
	gap := math.Max(4, lineHeight(l))
	var segs []segment
	cur := segment{words: []Word{l.Words[0]}, x0: l.Words[0].X, x1: l.Words[0].Right()}
	for _, w := range l.Words[1:] {
		if w.X-cur.x1 > gap {
			segs = append(segs, cur)
			cur = segment{x0: w.X}
		}
		cur.words = append(cur.words, w)
		cur.x1 = math.Max(cur.x1, w.Right())
	}
	return append(segs, cur)
}

func lineHeight(l Line) float64 {
	hs := make([]float64, 0, len(l.Words))
	for _, w := range l.Words {
		hs = append(hs, w.H)
	}
	return median(hs)
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

// DetectTables runs one strategy over a page. It returns nil when the
// strategy finds no grid.
func DetectTables(words []Word, rules []Rule, strategy Strategy) []Table {
	var t Table
	switch strategy {
	case StrategyLines:
		t = linesTable(words, rules)
	case StrategyText:
		t = textTable(words)
	}
	if len(t) == 0 {
		return nil
	}
	return []Table{t}
}

// GroupRows is the fallback when no grid is found: each line becomes a row
// whose first cell is the leading text run and whose other cells are the
// remaining runs.
func GroupRows(words []Word) Table {
	lines := GroupLines(words)
	left, charW := labelMargin(lines)
	var t Table
	for _, l := range lines {
		segs := splitSegments(l)
		row := make([]string, len(segs))
		for i, s := range segs {
			row[i] = s.text()
		}
		row[0] = indentPrefix(segs[0].x0-left, charW) + row[0]
		t = append(t, row)
	}
	return t
}

func labelMargin(lines []Line) (left, charW float64) {
	left = math.Inf(1)
	var hs []float64
	for _, l := range lines {
		if len(l.Words) == 0 {
			continue
		}
		left = math.Min(left, l.Words[0].X)
		hs = append(hs, l.Words[0].H)
	}
	if math.IsInf(left, 1) {
		left = 0
	}
	charW = median(hs) * 0.5
	if charW <= 0 {
		charW = 5
	}
	return left, charW
}

func indentPrefix(offset, charW float64) string {
	n := int(math.Round(offset / charW))
	if n <= 0 {
		return ""
	}
	if n > maxIndent {
		n = maxIndent
	}
	return strings.Repeat(" ", n)
}

// textTable derives column boundaries from x ranges that no (or almost no)
// multi-run line covers.
func textTable(words []Word) Table {
	lines := GroupLines(words)
	var multi [][]segment
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, l := range lines {
		segs := splitSegments(l)
		if len(segs) < 2 {
			continue
		}
		multi = append(multi, segs)
		minX = math.Min(minX, segs[0].x0)
		maxX = math.Max(maxX, segs[len(segs)-1].x1)
	}
	if len(multi) < 2 {
		return nil
	}

	n := int(maxX-minX) + 1
	cover := make([]int, n)
	mark := make([]bool, n)
	for _, segs := range multi {
		clear(mark)
		for _, s := range segs {
			for x := int(s.x0 - minX); x <= int(s.x1-minX) && x < n; x++ {
				mark[x] = true
			}
		}
		for x, m := range mark {
			if m {
				cover[x]++
			}
		}
	}

	allowed := len(multi) / 10
	var bounds []float64
	for i := 0; i < n; {
		if cover[i] > allowed {
			i++
			continue
		}
		j := i
		for j < n && cover[j] <= allowed {
			j++
		}
		if i > 0 && j < n && j-i >= minGutter {
			bounds = append(bounds, minX+float64(i+j)/2)
		}
		i = j
	}
	if len(bounds) == 0 {
		return nil
	}

	colOf := func(x float64) int { return sort.SearchFloat64s(bounds, x) }
	left, charW := labelMargin(lines)
	var t Table
	for _, l := range lines {
		row := make([]string, len(bounds)+1)
		for i, s := range splitSegments(l) {
			c, text := colOf(s.centerX()), s.text()
			if i == 0 {
				// a leading label may run across gutters
				c = colOf(s.x0)
				if c == 0 {
					text = indentPrefix(s.x0-left, charW) + text
				}
			}
			if row[c] != "" {
				row[c] += " " + strings.TrimSpace(text)
			} else {
				row[c] = text
			}
		}
		t = append(t, row)
	}
	return t
}

// linesTable assigns words to the cells of the grid spanned by horizontal and
// vertical rules.
func linesTable(words []Word, rules []Rule) Table {
	var hs, vs []float64
	for _, r := range rules {
		switch {
		case r.Horizontal():
			hs = append(hs, (r.Y0+r.Y1)/2)
		case r.Vertical():
			vs = append(vs, (r.X0+r.X1)/2)
		}
	}
	hs, vs = snap(hs), snap(vs)
	if len(hs) < 2 || len(vs) < 2 {
		return nil
	}

	rows, cols := len(hs)-1, len(vs)-1
	grid := make([][][]Word, rows)
	for i := range grid {
		grid[i] = make([][]Word, cols)
	}
	placed := 0
	for _, w := range words {
		r, c := band(hs, w.CenterY()), band(vs, w.CenterX())
		if r < 0 || c < 0 {
			continue
		}
		grid[r][c] = append(grid[r][c], w)
		placed++
	}
	if placed == 0 {
		return nil
	}

	left := math.Inf(1)
	var hts []float64
	for _, row := range grid {
		for _, w := range row[0] {
			left = math.Min(left, w.X)
			hts = append(hts, w.H)
		}
	}
	charW := median(hts) * 0.5
	if charW <= 0 {
		charW = 5
	}

	var t Table
	for _, row := range grid {
		out := make([]string, cols)
		empty := true
		for c, cell := range row {
			if len(cell) == 0 {
				continue
			}
			empty = false
			var parts []string
			for _, l := range GroupLines(cell) {
				for _, w := range l.Words {
					parts = append(parts, w.Text)
				}
			}
			out[c] = strings.Join(parts, " ")
			if c == 0 {
				x := cell[0].X
				for _, w := range cell[1:] {
					x = math.Min(x, w.X)
				}
				out[c] = indentPrefix(x-left, charW) + out[c]
			}
		}
		if !empty {
			t = append(t, out)
		}
	}
	return t
}

// snap sorts positions and merges those closer than snapTolerance.
func snap(ps []float64) []float64 {
	if len(ps) == 0 {
		return nil
	}
	sort.Float64s(ps)
	out := []float64{ps[0]}
	for _, p := range ps[1:] {
		if p-out[len(out)-1] > snapTolerance {
			out = append(out, p)
		}
	}
	return out
}

// band returns i such that edges[i] <= v < edges[i+1], or -1.
func band(edges []float64, v float64) int {
	if v < edges[0] || v >= edges[len(edges)-1] {
		return -1
	}
	return sort.SearchFloat64s(edges, v+1e-9) - 1
}
