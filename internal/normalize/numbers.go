// Package normalize turns raw text tokens into numbers and clean labels, and
// decides which lines are boilerplate rather than table content.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// NoteRefMaxMagnitude is the bound under which a bare "N.N" token is read as a
// footnote reference instead of a figure. Legitimate small decimals below it
// are misread; that is an accepted limitation of the heuristic.
const NoteRefMaxMagnitude = 20

var (
	reCurrencyWord = regexp.MustCompile(`(?i)\b(rs\.?|inr|usd|eur|gbp)\s*`)
	reCurrencySym  = regexp.MustCompile(`[₹$€£¥]`)
	reNoteRef      = regexp.MustCompile(`^\d{1,2}\.\d{1,2}$`)
	reNoteToken    = regexp.MustCompile(`^\(?\d{1,2}(?:\.\d{1,2})?[a-z]?\)?$`)
	reCleanNumber  = regexp.MustCompile(`^\d+(\.\d+)?$`)
	reNumericShape = regexp.MustCompile(`^[-—–(]?\s*(?:[₹$€£¥]|rs\.?\s*)?\s*[-—–]?\d[\d,]*(?:\.\d+)?\s*\)?$`)
	reDashOnly     = regexp.MustCompile(`^[-—–\s]+$`)
)

var dashReplacer = strings.NewReplacer("—", "-", "–", "-", "−", "-")

// ParseNumber parses a financial figure. Parentheses and leading dashes mean
// negative; thousands separators and currency markers are ignored. Bare
// dashes, note references and anything carrying other letters are not numbers.
func ParseNumber(token string) (float64, bool) {
	s := strings.TrimSpace(token)
	if s == "" || reDashOnly.MatchString(s) {
		return 0, false
	}

	s = reCurrencyWord.ReplaceAllString(s, "")
	s = reCurrencySym.ReplaceAllString(s, "")
	s = dashReplacer.Replace(s)
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	} else if strings.ContainsAny(s, "()") {
		// OCR often drops one of the parentheses.
		if strings.HasPrefix(s, "(") || strings.HasSuffix(s, ")") {
			negative = true
		}
		s = strings.Trim(s, "() ")
	}
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimSpace(strings.TrimLeft(s, "-"))
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if !reCleanNumber.MatchString(s) {
		return 0, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if !negative && reNoteRef.MatchString(s) && d.LessThan(decimal.NewFromInt(NoteRefMaxMagnitude)) {
		return 0, false
	}
	if negative {
		d = d.Neg()
	}
	f, _ := d.Float64()
	return f, true
}

// LooksNumeric reports whether token has the shape of a figure (possibly
// negative, bracketed or carrying a currency symbol). It does not apply the
// note-reference rule.
func LooksNumeric(token string) bool {
	s := strings.TrimSpace(token)
	if s == "" {
		return false
	}
	return reNumericShape.MatchString(strings.ToLower(s))
}

// IsNoteToken reports whether token is a short note number such as "21",
// "4.2" or "(7)", as printed in a notes column next to a label.
func IsNoteToken(token string) bool {
	return reNoteToken.MatchString(strings.TrimSpace(token))
}

// IsDash reports whether token is a bare dash placeholder ("-", "—", "–").
func IsDash(token string) bool {
	s := strings.TrimSpace(token)
	return s != "" && reDashOnly.MatchString(s)
}
