package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	reUnitLocal    = regexp.MustCompile(`(?i)(₹|rs\.?|inr)\s*(?:in\s+)?(crores?|lakhs?|lacs?|millions?|thousands?)\b`)
	reUnitForeign  = regexp.MustCompile(`(?i)\b(usd|us\$|eur|gbp)\s*(?:in\s+)?(millions?|thousands?|billions?|mn|bn)\b`)
	reUnitDollar   = regexp.MustCompile(`(?i)(\$|€|£)\s*(?:in\s+)?(millions?|thousands?|billions?)\b`)
	reUnitScale    = regexp.MustCompile(`(?i)\b(?:amounts?|figures?|all\s+amounts?|rupees)?\s*in\s+(crores?|lakhs?|lacs?|millions?|thousands?)\b`)
	reUnitRupee    = regexp.MustCompile(`₹`)
	reUnitAnnotate = regexp.MustCompile(`(?i)\(?\s*(?:(?:₹|rs\.?|inr|usd|us\$|\$|€|£|amounts?|figures?)\s*)?(?:in\s+)?(?:crores?|lakhs?|lacs?|millions?|thousands?|billions?)\s*\)?`)
)

var titler = cases.Title(language.English)

// DetectUnit finds the first currency/scale phrase in text and returns it in
// a normalized form ("₹ in Crores", "USD Million", "in Thousands", "₹").
func DetectUnit(text string) string {
	if m := reUnitLocal.FindStringSubmatch(text); m != nil {
		return "₹ in " + titler.String(strings.ToLower(m[2]))
	}
	if m := reUnitForeign.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(strings.TrimSuffix(m[1], "$")) + " " + scaleWord(m[2])
	}
	if m := reUnitDollar.FindStringSubmatch(text); m != nil {
		return m[1] + " " + scaleWord(m[2])
	}
	if m := reUnitScale.FindStringSubmatch(text); m != nil {
		return "in " + titler.String(strings.ToLower(m[1]))
	}
	if reUnitRupee.MatchString(text) {
		return "₹"
	}
	return ""
}

func scaleWord(s string) string {
	switch strings.ToLower(s) {
	case "mn", "million", "millions":
		return "Million"
	case "bn", "billion", "billions":
		return "Billion"
	default:
		return "Thousand"
	}
}

// StripUnitAnnotation removes "(₹ in Crores)"-style annotations from a header.
func StripUnitAnnotation(header string) string {
	s := reUnitAnnotate.ReplaceAllString(header, " ")
	return CleanLabel(s)
}
