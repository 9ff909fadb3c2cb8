package export

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
	"github.com/joseph-ayodele/finstatement-extractor/internal/statement"
)

var (
	plStartMarkers  = []string{"statement of profit and loss", "income statement", "statement of comprehensive income", "profit & loss"}
	bsStartMarkers  = []string{"balance sheet", "statement of financial position"}
	bsEndMarkers    = []string{"validation", "note on", "forming part of", "significant accounting policies"}
	eqLiabMarkers   = []string{"equity and liabilities", "sources of funds", "liabilities and equity"}
	plExcluded      = []string{"borrowings", "repayment", "proceeds", "net change", "distribution", "vehicle financing", "non-controlling", "segment", "number of times", "coverage", "cash flow", "exceptional", "refer", "forming part as", "profit before tax", "profit after tax", "total revenue", "total expenses", "total income"}
	bsCashFlowWords = []string{"cash flow", "net cash", "cash and cash equivalents", "opening balance", "closing balance", "proceeds from", "repayment of", "payment for", "payments for", "operating activities", "investing activities", "financing activities", "increase in cash", "decrease in cash", "net increase", "net decrease", "liability towards", "acquisition of", "disposal of", "sale of", "dividend paid", "dividend received", "interest paid", "interest received", "effect of foreign exchange", "effect of exchange", "realisation of", "realization of", "loan given", "loan taken", "investment in", "proceeds received", "payment towards", "distribution to"}
	bsExcluded      = []string{"ratio", "number of times", "%", "coverage", "segment", "exceptional", "refer", "forming part of", "schedule", "annexure", "particulars", "at 31 march", "at 31st march"}

	reWordRatio    = regexp.MustCompile(`(^|\s)(ratio|%|note)(\s|$)`)
	reNumberedItem = regexp.MustCompile(`^\d+\.`)
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// span is a half-open row index range.
type span struct{ start, end int }

func (s span) contains(i int) bool { return i >= s.start && i < s.end }

// splitStatements locates the P&L and balance-sheet blocks by their title
// rows. Without any title the whole table is one statement of the kind its
// section hints suggest.
func splitStatements(rows []entity.RawRow) (pl, bs span) {
	n := len(rows)
	plStart, plEnd, bsStart, bsEnd := -1, -1, -1, n
	for i, r := range rows {
		l := strings.ToLower(r.Label)
		if plStart == -1 && containsAny(l, plStartMarkers) {
			plStart = i
		}
		if containsAny(l, bsStartMarkers) {
			if plEnd == -1 && plStart != -1 {
				plEnd = i
			}
			if bsStart == -1 {
				bsStart = i
			}
		}
		if bsStart != -1 && i > bsStart && containsAny(l, bsEndMarkers) {
			bsEnd = i
			break
		}
	}

	switch {
	case plStart == -1 && bsStart == -1:
		if statement.DetectKind(rows) == statement.BalanceSheet {
			return span{}, span{0, n}
		}
		return span{0, n}, span{}
	case bsStart == -1:
		if plEnd == -1 {
			plEnd = n
		}
		return span{plStart, plEnd}, span{}
	case plStart == -1:
		return span{0, bsStart}, span{bsStart, bsEnd}
	}
	if plEnd == -1 {
		plEnd = n
	}
	return span{plStart, plEnd}, span{bsStart, bsEnd}
}

func isPLExcluded(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	return containsAny(l, plExcluded) || reWordRatio.MatchString(l) || strings.HasPrefix(l, "note")
}

func isBSExcluded(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	return containsAny(l, bsCashFlowWords) || containsAny(l, bsExcluded) ||
		strings.HasPrefix(l, "note") || reNumberedItem.MatchString(l)
}
