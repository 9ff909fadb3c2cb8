package normalize

import (
	"regexp"
	"strings"
)

var monthAbbr = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var (
	reMonthToken   = regexp.MustCompile(`(?i)^(jan(uary)?|feb(ruary)?|mar(ch)?|apr(il)?|may|june?|july?|aug(ust)?|sept?(ember)?|oct(ober)?|nov(ember)?|dec(ember)?)[.,]?$`)
	reQuarterToken = regexp.MustCompile(`(?i)^q([1-4])(?:\s*[''’]?\s*(?:fy)?\s*(\d{2,4}))?[.,]?$`)
	reFYToken      = regexp.MustCompile(`(?i)^fy\s*[''’]?\s*(\d{2}|\d{4})(?:\s*[-–/]\s*\d{2,4})?[.,]?$`)
	reYearToken    = regexp.MustCompile(`^[(]?((?:19|20)\d{2})[).,]?$`)
	reYearRange    = regexp.MustCompile(`^((?:19|20)\d{2})\s*[-–/]\s*(\d{2}|(?:19|20)\d{2})$`)
	reDayToken     = regexp.MustCompile(`^([0-3]?\d)(?:st|nd|rd|th)?[.,]?$`)

	reDateLikeCell = regexp.MustCompile(`(?i)\b(jan(uary)?|feb(ruary)?|mar(ch)?|apr(il)?|may|june?|july?|aug(ust)?|sep(t(ember)?)?|oct(ober)?|nov(ember)?|dec(ember)?)\b|\bq[1-4]\b|\bfy\s*[''’]?\d{2,4}\b|\b(19|20)\d{2}\b|\b(year|quarter|period|half[- ]year)\s+ended\b|\bas\s+at\b`)
)

// MonthIndex maps a month token ("Mar", "March", "mar.") to 1..12.
func MonthIndex(token string) (int, bool) {
	t := strings.TrimSpace(token)
	if !reMonthToken.MatchString(t) {
		return 0, false
	}
	prefix := strings.ToLower(t[:3])
	for i, m := range monthAbbr {
		if strings.ToLower(m) == prefix {
			return i + 1, true
		}
	}
	return 0, false
}

// MonthAbbr returns the three-letter English abbreviation of month m (1..12).
func MonthAbbr(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthAbbr[m-1]
}

// IsMonthToken reports whether token is a month name.
func IsMonthToken(token string) bool {
	_, ok := MonthIndex(token)
	return ok
}

// QuarterToken returns the quarter number and optional year suffix.
func QuarterToken(token string) (q int, year string, ok bool) {
	m := reQuarterToken.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return 0, "", false
	}
	return int(m[1][0] - '0'), m[2], true
}

// IsFiscalYearToken matches "FY24", "FY 2024", "FY2023-24" and "2023-24".
func IsFiscalYearToken(token string) bool {
	t := strings.TrimSpace(token)
	return reFYToken.MatchString(t) || reYearRange.MatchString(t)
}

// YearToken returns a standalone four-digit year (1900..2099).
func YearToken(token string) (string, bool) {
	m := reYearToken.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// DayToken returns a day-of-month number from tokens like "31", "31st,".
func DayToken(token string) (string, bool) {
	m := reDayToken.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return "", false
	}
	if len(m[1]) == 2 && m[1] > "31" {
		return "", false
	}
	if m[1] == "0" || m[1] == "00" {
		return "", false
	}
	return m[1], true
}

// IsDateLike reports whether a header cell mentions a period: a month,
// quarter, fiscal year, four-digit year or "year ended"/"as at" phrase.
func IsDateLike(cell string) bool {
	return reDateLikeCell.MatchString(cell)
}
