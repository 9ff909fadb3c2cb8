package normalize

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// MaxLabelLength is the longest label accepted as a line item.
const MaxLabelLength = 280

// DefaultNoisePatterns are regular expressions for page furniture and
// disclosures that never form part of a statement table.
var DefaultNoisePatterns = []string{
	`(?i)^page\s*\d+(\s*(of|/)\s*\d+)?$`,
	`(?i)\bpage\s+\d+\s+of\s+\d+\b`,
	`(?i)https?://|www\.`,
	`(?i)[\w.+-]+@[\w-]+\.[a-z]{2,}`,
	`(?i)\bratios?\b`,
	`(?i)\bsegments?\b`,
	`(?i)\bcoverage\b`,
	`(?i)\bnumber of times\b`,
	`(?i)\bkpis?\b`,
	`(?i)^notes?(\s*no\.?)?$`,
	`(?i)\bcin\s*[:\-]`,
	`(?i)\bdin\s*[:\-]?\s*\d`,
	`(?i)^(place|date)\s*:`,
	`(?i)^(sr|s)\.?\s*no\.?$`,
	`(?i)^particulars$`,
	`(?i)\(\s*refer note`,
}

// DefaultNoisePhrases are lowercase literal fragments of legal and
// regulatory boilerplate.
var DefaultNoisePhrases = []string{
	"registered office",
	"corporate identity number",
	"corporate office",
	"tel:",
	"tel.",
	"fax:",
	"e-mail",
	"website",
	"for and on behalf of",
	"chartered accountants",
	"firm registration",
	"membership no",
	"see accompanying notes",
	"the accompanying notes",
	"significant accounting policies",
	"forming part of",
	"listing obligations",
	"disclosure requirements",
	"regulation 33",
	"sebi",
	"disclaimer",
	"in terms of our report",
	"managing director",
	"company secretary",
	"chief financial officer",
	"board of directors",
	"figures for the previous",
	"previous period figures",
	"regrouped",
}

var (
	reAllPunct   = regexp.MustCompile(`^[\d\s.,:;()\[\]\-–—/%₹$€£¥'"*#+=|_]+$`)
	reUnderscore = regexp.MustCompile(`_{2,}`)
)

// NoiseFilter decides whether a candidate label is boilerplate. It is safe
// for concurrent use; Add* methods rebuild the matcher under a lock.
type NoiseFilter struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	phrases  []string
	matcher  *ahocorasick.Matcher
}

// NoiseOption customizes a NoiseFilter.
type NoiseOption func(*NoiseFilter) error

// WithPatterns appends regular expressions.
func WithPatterns(patterns ...string) NoiseOption {
	return func(f *NoiseFilter) error {
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return fmt.Errorf("noise pattern %q: %w", p, err)
			}
			f.patterns = append(f.patterns, re)
		}
		return nil
	}
}

// WithPhrases appends literal (case-insensitive) phrases.
func WithPhrases(phrases ...string) NoiseOption {
	return func(f *NoiseFilter) error {
		for _, p := range phrases {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				f.phrases = append(f.phrases, p)
			}
		}
		return nil
	}
}

// WithPatternFile loads additional rules from a file: one rule per line,
// "re:" prefix for regular expressions, "#" for comments.
func WithPatternFile(path string) NoiseOption {
	return func(f *NoiseFilter) error {
		if path == "" {
			return nil
		}
		fh, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open noise pattern file: %w", err)
		}
		defer fh.Close()

		sc := bufio.NewScanner(fh)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			var opt NoiseOption
			if rest, ok := strings.CutPrefix(line, "re:"); ok {
				opt = WithPatterns(strings.TrimSpace(rest))
			} else {
				opt = WithPhrases(line)
			}
			if err := opt(f); err != nil {
				return err
			}
		}
		return sc.Err()
	}
}

// NewNoiseFilter builds a filter from the default rules plus opts.
func NewNoiseFilter(opts ...NoiseOption) (*NoiseFilter, error) {
	f := &NoiseFilter{}
	all := append([]NoiseOption{WithPatterns(DefaultNoisePatterns...), WithPhrases(DefaultNoisePhrases...)}, opts...)
	for _, o := range all {
		if err := o(f); err != nil {
			return nil, err
		}
	}
	f.rebuild()
	return f, nil
}

// MustNoiseFilter is NewNoiseFilter for the default rule set, which always compiles.
func MustNoiseFilter() *NoiseFilter {
	f, err := NewNoiseFilter()
	if err != nil {
		panic(err)
	}
	return f
}

// Add registers more rules at runtime.
func (f *NoiseFilter) Add(opts ...NoiseOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range opts {
		if err := o(f); err != nil {
			return err
		}
	}
	f.rebuild()
	return nil
}

func (f *NoiseFilter) rebuild() {
	if len(f.phrases) == 0 {
		f.matcher = nil
		return
	}
	f.matcher = ahocorasick.NewStringMatcher(f.phrases)
}

// IsNoise reports whether label should never become a row.
func (f *NoiseFilter) IsNoise(label string) bool {
	s := strings.TrimSpace(label)
	if s == "" || len([]rune(s)) > MaxLabelLength {
		return true
	}
	if reAllPunct.MatchString(s) {
		return true
	}
	if strings.Count(s, "|")+len(reUnderscore.FindAllString(s, -1)) >= 2 {
		return true
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.matcher != nil && f.matcher.Contains([]byte(strings.ToLower(s))) {
		return true
	}
	for _, re := range f.patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
