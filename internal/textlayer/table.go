package textlayer

import (
	"strings"

	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
	"github.com/joseph-ayodele/finstatement-extractor/internal/normalize"
	"github.com/joseph-ayodele/finstatement-extractor/internal/pdfdoc"
)

var nonDataHeaders = map[string]bool{
	"note":        true,
	"notes":       true,
	"note no":     true,
	"note no.":    true,
	"notes no.":   true,
	"sr. no.":     true,
	"sr no":       true,
	"sr. no":      true,
	"s. no.":      true,
	"s.no.":       true,
	"s no":        true,
	"particulars": true,
	"schedule":    true,
}

func isNonDataHeader(h string) bool {
	return nonDataHeaders[strings.ToLower(strings.TrimSpace(h))]
}

// column maps a value column to its header text. Index is relative to the
// right edge of the header row so ragged rows still line up.
type column struct {
	fromRight int
	header    string
}

// findHeader returns the index of the header row, or -1.
func findHeader(t pdfdoc.Table, scan int) int {
	limit := min(scan, len(t))
	for i := 0; i < limit; i++ {
		for _, cell := range t[i] {
			c := strings.TrimSpace(cell)
			if c == "" {
				continue
			}
			if strings.EqualFold(normalize.CleanLabel(c), "particulars") || normalize.IsDateLike(c) {
				return i
			}
		}
	}
	for i := 0; i < limit; i++ {
		if nonEmpty(t[i]) >= 3 {
			return i
		}
	}
	return -1
}

func nonEmpty(row []string) int {
	n := 0
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}

// headerColumns selects the value columns of a header row. The first cell is
// the label column unless it already names a period.
func headerColumns(row []string) []column {
	start := 1
	if len(row) > 0 {
		first := normalize.CleanLabel(row[0])
		if normalize.IsDateLike(first) && !isNonDataHeader(first) {
			start = 0
		}
	}
	var cols []column
	for i := start; i < len(row); i++ {
		h := normalize.StripUnitAnnotation(row[i])
		if h == "" || isNonDataHeader(h) {
			continue
		}
		cols = append(cols, column{fromRight: len(row) - 1 - i, header: h})
	}
	return cols
}

// parseTable turns one detected table into headers and rows.
func (e *Extractor) parseTable(t pdfdoc.Table) ([]string, []entity.RawRow) {
	hi := findHeader(t, e.cfg.HeaderScanRows)
	var cols []column
	var headers []string
	if hi >= 0 {
		cols = headerColumns(t[hi])
		for _, c := range cols {
			headers = append(headers, c.header)
		}
	}

	var rows []entity.RawRow
	for i := hi + 1; i < len(t); i++ {
		if row, ok := e.parseRow(t[i], cols); ok {
			rows = append(rows, row)
		}
	}
	return headers, rows
}

func (e *Extractor) parseRow(cells []string, cols []column) (entity.RawRow, bool) {
	if len(cells) == 0 {
		return entity.RawRow{}, false
	}
	raw := cells[0]
	label := normalize.CleanLabel(raw)
	if len([]rune(label)) < 2 || normalize.IsNumericOrPunct(label) || e.noise.IsNoise(label) {
		return entity.RawRow{}, false
	}

	var values []entity.Value
	if len(cols) > 0 {
		values = make([]entity.Value, len(cols))
		for j, c := range cols {
			idx := len(cells) - 1 - c.fromRight
			if idx < 1 || idx >= len(cells) {
				continue
			}
			values[j] = cellValue(cells[idx])
		}
	} else {
		for _, c := range cells[1:] {
			values = append(values, cellValue(c))
		}
	}

	hasValues := false
	for _, v := range values {
		if !v.IsNull() {
			hasValues = true
			break
		}
	}
	hint, header := normalize.SectionFor(label, hasValues)
	if !hasValues && !header {
		return entity.RawRow{}, false
	}
	indent := normalize.IndentLevel(normalize.LeadingSpaces(raw))
	return entity.NewRow(label, values, indent, hint, header), true
}

// cellValue parses a value cell. Dashes and note references are null;
// other text is kept verbatim.
func cellValue(cell string) entity.Value {
	c := strings.TrimSpace(cell)
	if c == "" || normalize.IsDash(c) {
		return entity.Null()
	}
	if f, ok := normalize.ParseNumber(c); ok {
		return entity.Number(f)
	}
	if normalize.LooksNumeric(c) {
		return entity.Null()
	}
	return entity.Text(normalize.CleanLabel(c))
}
