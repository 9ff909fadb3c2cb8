package export

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
	"github.com/joseph-ayodele/finstatement-extractor/internal/statement"
)

var expenseSections = []statement.Section{
	statement.SectionCostOfGoods,
	statement.SectionOperatingExpenses,
	statement.SectionFinanceCost,
	statement.SectionDepreciation,
}

func writeStatements(w *sheetWriter, res entity.ExtractionResult) {
	pl, bs := splitStatements(res.Rows)

	w.row = 1
	w.set(1, w.row, "STATEMENT OF PROFIT AND LOSS", w.st.title)
	if res.UnitLabel != "" {
		w.set(1, w.row+1, "Amounts "+res.UnitLabel, 0)
	}
	w.row += 3
	w.headerRow()
	writeProfitAndLoss(w, res.Rows, pl)

	w.row += 4
	w.set(1, w.row, "BALANCE SHEET", w.st.title)
	w.row++
	w.headerRow()
	writeBalanceSheet(w, res.Rows, bs)

	w.width("A", "A", 50)
	if n := len(w.headers); n > 0 {
		w.width("B", w.colName(n+1), 15)
	}
}

func itemsIn(rows []entity.RawRow, s span, kind statement.Kind) []statement.LineItem {
	var in []entity.RawRow
	for i, r := range rows {
		if s.contains(i) {
			in = append(in, r)
		}
	}
	return statement.Classify(in, kind)
}

func filterItems(items []statement.LineItem, keep func(statement.LineItem) bool) []statement.LineItem {
	var out []statement.LineItem
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// writeProfitAndLoss lays out revenue, expenses, profit before tax, tax and
// profit for the period. Totals the document does not state are formulas.
func writeProfitAndLoss(w *sheetWriter, rows []entity.RawRow, s span) {
	items := itemsIn(rows, s, statement.ProfitAndLoss)
	bySection := statement.BuildHierarchy(items)
	included := func(it statement.LineItem) bool { return !isPLExcluded(it.Label) }
	plItem := func(sections ...statement.Section) []statement.LineItem {
		return filterItems(items, func(it statement.LineItem) bool {
			if isPLExcluded(it.Label) {
				return false
			}
			for _, sec := range sections {
				if it.Section == sec {
					return true
				}
			}
			return false
		})
	}

	revStart := w.row
	w.items(filterItems(bySection[statement.SectionRevenue], included))
	totalRev := w.sumRow("Total Income", revStart, w.row-1)
	w.row++

	w.set(1, w.row, "EXPENSES", w.st.bold)
	w.row++
	expStart := w.row
	w.items(filterItems(plItem(expenseSections...), func(it statement.LineItem) bool {
		return !strings.Contains(strings.ToLower(it.Label), "tax")
	}))
	totalExp := w.sumRow("Total Expenses", expStart, w.row-1)
	w.row++

	pbtRow := w.row
	if pbt, ok := findItem(items, func(l string) bool {
		return strings.Contains(l, "profit") && strings.Contains(l, "before")
	}); ok {
		w.set(1, pbtRow, pbt.Label, w.st.bold)
		writeValues(w, pbtRow, pbt.Values, w.st.total)
	} else {
		w.set(1, pbtRow, "Profit Before Tax", w.st.bold)
		for i := range w.headers {
			col := w.colName(i + 2)
			w.formula(i+2, pbtRow, fmt.Sprintf("%s%d-%s%d", col, totalRev, col, totalExp), w.st.total)
		}
	}
	w.row += 2

	w.set(1, w.row, "TAX", w.st.bold)
	w.row++
	taxStart := w.row
	w.items(filterItems(bySection[statement.SectionTax], included))
	taxEnd := w.row - 1

	if profit, ok := findItem(items, func(l string) bool {
		return (strings.Contains(l, "profit") || strings.Contains(l, "loss")) && !strings.Contains(l, "before") &&
			(strings.Contains(l, "period") || strings.Contains(l, "year") || strings.Contains(l, "after tax"))
	}); ok {
		w.set(1, w.row, profit.Label, w.st.bold)
		writeValues(w, w.row, profit.Values, w.st.total)
	} else {
		w.set(1, w.row, "Profit for the Period", w.st.bold)
		for i := range w.headers {
			col := w.colName(i + 2)
			tax := "0"
			if taxEnd >= taxStart {
				tax = fmt.Sprintf("SUM(%s%d:%s%d)", col, taxStart, col, taxEnd)
			}
			w.formula(i+2, w.row, fmt.Sprintf("%s%d-(%s)", col, pbtRow, tax), w.st.total)
		}
	}
	w.row++
}

// writeBalanceSheet splits the block at the "equity and liabilities" title
// row; without one, rows are split by their classified section. A final row
// checks that assets equal equity plus liabilities.
func writeBalanceSheet(w *sheetWriter, rows []entity.RawRow, s span) {
	var assets, eqLiab []statement.LineItem
	split := -1
	for i := s.start; i < s.end; i++ {
		if containsAny(strings.ToLower(rows[i].Label), eqLiabMarkers) {
			split = i
			break
		}
	}
	keep := func(it statement.LineItem) bool {
		l := strings.ToLower(it.Label)
		return !isBSExcluded(it.Label) && l != "assets" && l != "balance sheet"
	}
	if split >= 0 {
		assets = filterItems(itemsIn(rows, span{s.start, split}, statement.BalanceSheet), keep)
		eqLiab = filterItems(itemsIn(rows, span{split + 1, s.end}, statement.BalanceSheet), keep)
	} else {
		for _, it := range filterItems(itemsIn(rows, s, statement.BalanceSheet), keep) {
			if it.Section == statement.SectionAssets {
				assets = append(assets, it)
			} else {
				eqLiab = append(eqLiab, it)
			}
		}
	}

	w.set(1, w.row, "ASSETS", w.st.bold)
	w.row++
	totalAssets := w.blockTotal(assets, "Total Assets", func(l string) bool {
		return strings.Contains(l, "total assets") || strings.Contains(l, "total asset")
	})
	w.row++

	w.set(1, w.row, "EQUITY AND LIABILITIES", w.st.bold)
	w.row++
	totalEqLiab := w.blockTotal(eqLiab, "Total Equity and Liabilities", func(l string) bool {
		return strings.Contains(l, "total equity and liabilities") || strings.Contains(l, "total liabilit")
	})
	w.row++

	w.set(1, w.row, "Validation (Assets = Equity + Liab)", w.st.bold)
	for i := range w.headers {
		col := w.colName(i + 2)
		w.formula(i+2, w.row, fmt.Sprintf(`IF(AND(%[1]s%[2]d>0,ABS(%[1]s%[2]d-%[1]s%[3]d)<1),"OK","ERROR")`, col, totalAssets, totalEqLiab), 0)
	}
	w.row++
}

// blockTotal writes items and returns the row holding their total: the
// document's own total line when present, else a SUM row.
func (w *sheetWriter) blockTotal(items []statement.LineItem, label string, isTotal func(string) bool) int {
	start := w.row
	total := -1
	for _, it := range items {
		before := w.row
		w.items([]statement.LineItem{it})
		if w.row > before && total < 0 && isTotal(strings.ToLower(it.Label)) {
			total = before
		}
	}
	if total >= 0 {
		return total
	}
	return w.sumRow(label, start, w.row-1)
}

func findItem(items []statement.LineItem, match func(lower string) bool) (statement.LineItem, bool) {
	for _, it := range items {
		if hasValues(it.Values) && match(strings.ToLower(it.Label)) {
			return it, true
		}
	}
	return statement.LineItem{}, false
}

func writeValues(w *sheetWriter, row int, vals []entity.Value, style int) {
	for i := range w.headers {
		if i >= len(vals) {
			return
		}
		if f, ok := vals[i].Float(); ok {
			w.set(i+2, row, f, style)
		}
	}
}

// writeRawData lists every row as extracted, for verification.
func writeRawData(w *sheetWriter, res entity.ExtractionResult) {
	n := len(w.headers)
	last := w.colName(n + 3)
	if w.err == nil {
		w.err = w.f.MergeCell(w.sheet, "A1", last+"1")
	}
	w.set(1, 1, "RAW DATA EXTRACTION LOG (Verification Only)", w.st.rawTitle)

	w.row = 3
	w.set(1, w.row, "Item", w.st.rawHeader)
	for i, h := range w.headers {
		w.set(i+2, w.row, h, w.st.rawHeader)
	}
	w.set(n+2, w.row, "Section", w.st.rawHeader)
	w.set(n+3, w.row, "Indent", w.st.rawHeader)
	w.row++

	for _, r := range res.Rows {
		w.set(1, w.row, r.Label, 0)
		for i := 0; i < n && i < len(r.Values); i++ {
			v := r.Values[i]
			if f, ok := v.Float(); ok {
				w.set(i+2, w.row, f, 0)
			} else if !v.IsNull() {
				w.set(i+2, w.row, v.String(), 0)
			}
		}
		w.set(n+2, w.row, string(r.SectionHint), 0)
		w.set(n+3, w.row, r.Indent, 0)
		w.row++
	}

	w.width("A", "A", 60)
	if n > 0 {
		w.width("B", w.colName(n+1), 18)
	}
	w.width(w.colName(n+2), w.colName(n+2), 25)
	w.width(w.colName(n+3), w.colName(n+3), 10)
}
