package constants

import (
	"strings"
)

// SectionHint is the coarse classification attached to every extracted row.
type SectionHint string

const (
	SectionRevenue  SectionHint = "REVENUE"
	SectionExpense  SectionHint = "EXPENSE"
	SectionProfit   SectionHint = "PROFIT"
	SectionTax      SectionHint = "TAX"
	SectionBalance  SectionHint = "BALANCE"
	SectionCashFlow SectionHint = "CASHFLOW"
	SectionOther    SectionHint = "OTHER"
)

var allSections = []SectionHint{
	SectionRevenue,
	SectionExpense,
	SectionProfit,
	SectionTax,
	SectionBalance,
	SectionCashFlow,
	SectionOther,
}

// Order matters: the first hint whose keyword matches wins, so the more
// specific groups (tax, profit) are checked before revenue/expense.
var sectionKeywords = []struct {
	hint     SectionHint
	keywords []string
}{
	{SectionTax, []string{"tax expense", "current tax", "deferred tax", "taxation", "provision for tax", "income tax"}},
	{SectionProfit, []string{"gross profit", "ebitda", "profit before", "profit after", "profit for the", "net profit", "operating profit", "loss for the", "margin", "pbt", "pat"}},
	{SectionCashFlow, []string{"cash flow", "operating activities", "investing activities", "financing activities", "net cash"}},
	{SectionRevenue, []string{"revenue", "sales", "income from operations", "other income", "turnover", "total income"}},
	{SectionExpense, []string{"expense", "cost of material", "cost of goods", "purchases of stock", "employee benefit", "finance cost", "depreciation", "amortisation", "amortization", "changes in inventories"}},
	{SectionBalance, []string{"assets", "liabilities", "equity", "share capital", "reserves", "borrowings", "payables", "receivables", "inventories", "provisions", "capital work"}},
}

// Keywords that, on a row without any values, mark a section heading.
var sectionHeadingKeywords = []string{
	"revenue", "income", "expenses", "cost of material", "employee benefit",
	"finance cost", "other expense", "ebitda", "profit", "tax",
	"purchases of stock", "gross profit", "gross margin",
	"assets", "liabilities", "equity", "cash flow",
}

// AllSections returns every hint as strings, in declaration order.
func AllSections() []string {
	out := make([]string, len(allSections))
	for i, s := range allSections {
		out[i] = string(s)
	}
	return out
}

// HintForLabel maps a (lowercased or not) row label to a section hint.
func HintForLabel(label string) SectionHint {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return SectionOther
	}
	for _, group := range sectionKeywords {
		for _, kw := range group.keywords {
			if containsWord(l, kw) {
				return group.hint
			}
		}
	}
	return SectionOther
}

// IsSectionHeading reports whether label names a known section heading.
func IsSectionHeading(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	for _, kw := range sectionHeadingKeywords {
		if strings.Contains(l, kw) {
			return true
		}
	}
	return false
}

// ParseSectionHint canonicalizes a stored hint; unknown values map to OTHER.
func ParseSectionHint(s string) (SectionHint, bool) {
	up := SectionHint(strings.ToUpper(strings.TrimSpace(s)))
	for _, h := range allSections {
		if up == h {
			return h, true
		}
	}
	return SectionOther, false
}

// containsWord is strings.Contains with word boundaries for short keywords
// ("pat", "pbt") so "compatible" does not become PROFIT.
func containsWord(s, kw string) bool {
	if len(kw) > 4 {
		return strings.Contains(s, kw)
	}
	for i := 0; ; {
		j := strings.Index(s[i:], kw)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(kw)
		if (start == 0 || !isLetter(s[start-1])) && (end == len(s) || !isLetter(s[end])) {
			return true
		}
		i = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
