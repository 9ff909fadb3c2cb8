package entity

import (
	"slices"

	"github.com/joseph-ayodele/finstatement-extractor/constants"
)

// RawRow is one detected line item, in document reading order.
type RawRow struct {
	Label           string                `json:"label"`
	Values          []Value               `json:"values"`
	Indent          int                   `json:"indent"`
	SectionHint     constants.SectionHint `json:"section_hint"`
	IsSectionHeader bool                  `json:"is_section_header"`
}

// NewRow copies values so the returned row never aliases caller memory.
// Section-header rows are forced to carry only nulls.
func NewRow(label string, values []Value, indent int, hint constants.SectionHint, header bool) RawRow {
	vals := slices.Clone(values)
	if header {
		for i := range vals {
			vals[i] = Null()
		}
	}
	if indent < 0 {
		indent = 0
	}
	return RawRow{
		Label:           label,
		Values:          vals,
		Indent:          indent,
		SectionHint:     hint,
		IsSectionHeader: header,
	}
}

// WithWidth returns a copy of r whose Values has exactly n cells.
func (r RawRow) WithWidth(n int) RawRow {
	vals := make([]Value, n)
	copy(vals, r.Values)
	r.Values = vals
	return r
}

// HasNumbers reports whether any cell is numeric.
func (r RawRow) HasNumbers() bool {
	for _, v := range r.Values {
		if v.IsNumber() {
			return true
		}
	}
	return false
}

// ExtractionResult is the normalized table produced for one document.
type ExtractionResult struct {
	YearHeaders []string `json:"year_headers"`
	Rows        []RawRow `json:"rows"`
	UnitLabel   string   `json:"unit_label"`
	Error       string   `json:"error,omitempty"`
	Method      string   `json:"method,omitempty"`
	Pages       int      `json:"pages,omitempty"`

	// CacheHit is set when the result was served from the cache.
	CacheHit bool `json:"-"`
}

// Failed builds an error result with empty headers and rows.
func Failed(msg string) ExtractionResult {
	return ExtractionResult{
		YearHeaders: []string{},
		Rows:        []RawRow{},
		Error:       msg,
	}
}

// Extraction is the intermediate output of one extraction strategy, before
// deduplication and alignment.
type Extraction struct {
	Headers      []string
	Rows         []RawRow
	UnitLabel    string
	Pages        int
	PageFailures int
}
