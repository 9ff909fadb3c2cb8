package layout

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/finstatement-extractor/internal/normalize"
	"github.com/joseph-ayodele/finstatement-extractor/internal/ocr"
)

// yearlessKey returns the month ("Mar") or quarter ("Q1") a header names
// when it carries no year, else "".
func yearlessKey(header string) string {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return ""
	}
	for _, f := range fields {
		if _, ok := normalize.YearToken(f); ok || normalize.IsFiscalYearToken(f) {
			return ""
		}
	}
	if m, ok := normalize.MonthIndex(fields[0]); ok {
		return normalize.MonthAbbr(m)
	}
	if q, y, ok := normalize.QuarterToken(fields[0]); ok && y == "" {
		return "Q" + strconv.Itoa(q)
	}
	return ""
}

// BackfillFiscalYears appends a year to month and quarter headers that lack
// one. Columns before the first label that repeats form the quarterly block
// and get anchorYear, except a trailing December which belongs to the prior
// calendar year. From the first repeated label on, each repeated label
// alternates anchorYear, anchorYear-1; other months get anchorYear (December
// anchorYear-1). With anchorYear 0 headers are returned unchanged.
//
// ["Dec", "Mar", "Mar"] with 2024 gives ["Dec 2023", "Mar 2024", "Mar 2023"].
func BackfillFiscalYears(headers []string, anchorYear int) []string {
	out := append([]string(nil), headers...)
	if anchorYear == 0 {
		return out
	}

	keys := make([]string, len(headers))
	counts := map[string]int{}
	for i, h := range headers {
		keys[i] = yearlessKey(h)
		if keys[i] != "" {
			counts[keys[i]]++
		}
	}
	firstRepeat := len(keys)
	for i, k := range keys {
		if k != "" && counts[k] > 1 {
			firstRepeat = i
			break
		}
	}
	lastQuarterly := -1
	for i := 0; i < firstRepeat; i++ {
		if keys[i] != "" {
			lastQuarterly = i
		}
	}

	seen := map[string]int{}
	for i, k := range keys {
		if k == "" {
			continue
		}
		year := anchorYear
		switch {
		case i < firstRepeat:
			if k == "Dec" && i == lastQuarterly {
				year--
			}
		case counts[k] > 1:
			year -= seen[k] % 2
			seen[k]++
		case k == "Dec":
			year--
		}
		out[i] = strings.TrimSpace(headers[i]) + " " + strconv.Itoa(year)
	}
	return out
}

var reYearInText = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

// PageYear picks the reporting year of a page: the first standalone
// four-digit year among the words in reading order, else the first year in
// the plain OCR text, else 0.
func PageYear(words []ocr.Word, plainText string) int {
	ws := append([]ocr.Word(nil), words...)
	sortReading(ws)
	for _, w := range ws {
		if y, ok := normalize.YearToken(w.Text); ok {
			n, _ := strconv.Atoi(y)
			return n
		}
	}
	if m := reYearInText.FindStringSubmatch(plainText); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}
