package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const labelClutter = " \t-–—_|<>[]{}$:;•·*#"

// CleanLabel collapses whitespace and strips leading/trailing dash, bracket
// and pipe clutter. Compatibility characters (full-width digits, ligatures)
// are folded first.
func CleanLabel(text string) string {
	s := norm.NFKC.String(text)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, labelClutter)
	// "Revenue (" left over from a split cell
	if strings.HasSuffix(s, "(") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "("))
	}
	return s
}

// NormalizeKey is the dedupe key of a label: case and whitespace-insensitive.
func NormalizeKey(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(norm.NFKC.String(label)), " "))
}

// LeadingSpaces counts leading blanks of a raw (uncleaned) cell.
func LeadingSpaces(raw string) int {
	n := 0
	for _, r := range raw {
		if r == ' ' {
			n++
			continue
		}
		if r == '\t' {
			n += 4
			continue
		}
		break
	}
	return n
}

// IndentLevel buckets leading whitespace into 0..3.
func IndentLevel(leading int) int {
	switch {
	case leading <= 0:
		return 0
	case leading <= 2:
		return 1
	case leading <= 4:
		return 2
	default:
		return 3
	}
}

// IsNumericOrPunct reports whether s has no letters at all.
func IsNumericOrPunct(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
