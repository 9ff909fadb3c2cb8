// Package statement groups extracted rows into accounting sections for
// presentation. It works on labels only and never changes values.
package statement

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/finstatement-extractor/constants"
	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
)

// Section is a presentation group of a financial statement.
type Section string

const (
	SectionRevenue           Section = "Revenue"
	SectionCostOfGoods       Section = "Cost of Goods"
	SectionOperatingExpenses Section = "Operating Expenses"
	SectionFinanceCost       Section = "Finance Cost"
	SectionDepreciation      Section = "Depreciation"
	SectionTax               Section = "Tax"
	SectionProfit            Section = "Profit"
	SectionAssets            Section = "Assets"
	SectionEquity            Section = "Equity"
	SectionLiabilities       Section = "Liabilities"
	SectionOther             Section = "Other"
)

// Sections lists every section in declaration order.
var Sections = []Section{
	SectionRevenue, SectionCostOfGoods, SectionOperatingExpenses, SectionFinanceCost,
	SectionDepreciation, SectionTax, SectionProfit, SectionAssets, SectionEquity,
	SectionLiabilities, SectionOther,
}

// Kind says which statement a row is read as; it decides keyword priority.
type Kind int

const (
	ProfitAndLoss Kind = iota
	BalanceSheet
)

func (k Kind) String() string {
	if k == BalanceSheet {
		return "BS"
	}
	return "PL"
}

var sectionKeywords = map[Section][]string{
	SectionRevenue: {"revenue", "sales", "income from operations", "other income", "revenue from operations",
		"turnover", "income from sales", "operating income"},
	SectionCostOfGoods: {"cost of material", "cost of goods", "purchases", "inventory", "stock in trade",
		"change in inventory", "material consumed", "direct cost", "cost of services", "technical services"},
	SectionOperatingExpenses: {"employee", "salary", "welfare", "power", "rent", "legal", "advertisement",
		"freight", "other expense", "consumption", "travel", "insurance", "communication", "marketing",
		"promotion", "rates and taxes", "repair", "postage", "utility", "professional fee", "audit fee", "printing"},
	SectionFinanceCost:  {"finance cost", "interest expense", "bank charges", "borrowing cost"},
	SectionDepreciation: {"depreciation", "amortization", "amortisation", "depletion"},
	SectionTax:          {"tax expense", "current tax", "deferred tax", "taxation", "provision for tax"},
	SectionProfit: {"gross profit", "ebitda", "profit before tax", "profit after tax", "net profit",
		"margin", "operating profit", "pbt", "pat"},
	SectionAssets: {"assets", "inventory", "receivables", "cash", "property", "plant", "equipment",
		"intangible", "investments", "loans", "advances", "bank balance", "receivable",
		"non-current assets", "current assets", "goodwill", "capital work-in-progress"},
	SectionEquity: {"equity", "share capital", "reserves", "surplus", "retained earnings",
		"shareholders' funds", "capital"},
	SectionLiabilities: {"liabilities", "borrowing", "payables", "provisions", "debt",
		"non-current liabilities", "current liabilities", "trade payables"},
}

var (
	plPriority = []Section{SectionTax, SectionRevenue, SectionCostOfGoods, SectionOperatingExpenses, SectionFinanceCost, SectionDepreciation}
	bsPriority = []Section{SectionAssets, SectionEquity, SectionLiabilities}

	// ProfitAndLossOrder is the presentation order of P&L sections.
	ProfitAndLossOrder = []Section{SectionRevenue, SectionCostOfGoods, SectionOperatingExpenses, SectionFinanceCost, SectionDepreciation, SectionProfit}
)

var (
	sectionMatchers = compileKeywords()
	reTotal         = regexp.MustCompile(`\b(total|sum|aggregate)\b`)
	reCalculated    = regexp.MustCompile(`gross profit|gross margin|ebitda|profit before tax|profit after tax|net profit|margin`)
)

// compileKeywords turns each section's keywords into one expression. Short
// keywords ("pat", "rent", "cash") must match whole words.
func compileKeywords() map[Section]*regexp.Regexp {
	out := make(map[Section]*regexp.Regexp, len(sectionKeywords))
	for s, kws := range sectionKeywords {
		alts := make([]string, len(kws))
		for i, kw := range kws {
			q := regexp.QuoteMeta(kw)
			if len(kw) <= 4 {
				q = `\b` + q + `\b`
			}
			alts[i] = q
		}
		out[s] = regexp.MustCompile(strings.Join(alts, "|"))
	}
	return out
}

// ClassifyRow maps a label to a section. Sections favored by kind are tried
// first, then the rest in declaration order.
func ClassifyRow(label string, kind Kind) Section {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return SectionOther
	}
	priority := plPriority
	if kind == BalanceSheet {
		priority = bsPriority
	}
	for _, s := range priority {
		if sectionMatchers[s].MatchString(l) {
			return s
		}
	}
	for _, s := range Sections {
		if m, ok := sectionMatchers[s]; ok && m.MatchString(l) {
			return s
		}
	}
	return SectionOther
}

// IsTotal reports whether label is a total line ("Total income").
func IsTotal(label string) bool {
	return reTotal.MatchString(strings.ToLower(label))
}

// IsCalculated reports whether label is a derived figure such as EBITDA.
func IsCalculated(label string) bool {
	return reCalculated.MatchString(strings.ToLower(label))
}

// LineItem is a row with its presentation section.
type LineItem struct {
	Label           string
	Values          []entity.Value
	Indent          int
	Section         Section
	IsTotal         bool
	IsCalculated    bool
	IsSectionHeader bool
}

// Classify assigns a section to every row, skipping rows without a label.
func Classify(rows []entity.RawRow, kind Kind) []LineItem {
	out := make([]LineItem, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.Label) == "" {
			continue
		}
		out = append(out, LineItem{
			Label:           r.Label,
			Values:          r.Values,
			Indent:          r.Indent,
			Section:         ClassifyRow(r.Label, kind),
			IsTotal:         IsTotal(r.Label),
			IsCalculated:    IsCalculated(r.Label),
			IsSectionHeader: r.IsSectionHeader,
		})
	}
	return out
}

// BuildHierarchy groups items by section, keeping row order within each.
// Every section has an entry, possibly empty.
func BuildHierarchy(items []LineItem) map[Section][]LineItem {
	h := make(map[Section][]LineItem, len(Sections))
	for _, s := range Sections {
		h[s] = nil
	}
	for _, it := range items {
		h[it.Section] = append(h[it.Section], it)
	}
	return h
}

// DetectKind guesses the statement from the section hints of its rows:
// balance-sheet hints outnumbering P&L hints make it a balance sheet.
func DetectKind(rows []entity.RawRow) Kind {
	var bs, pl int
	for _, r := range rows {
		switch r.SectionHint {
		case constants.SectionBalance:
			bs++
		case constants.SectionRevenue, constants.SectionExpense, constants.SectionProfit, constants.SectionTax:
			pl++
		}
	}
	if bs > pl {
		return BalanceSheet
	}
	return ProfitAndLoss
}
