package normalize

import (
	"regexp"

	"github.com/joseph-ayodele/finstatement-extractor/constants"
)

var reRomanHeading = regexp.MustCompile(`^(?:[IVX]+|[A-H])[.)]\s+\S`)

// SectionFor derives the section hint of a label and whether a row with that
// label is a section heading. Rows that carry values are never headings.
func SectionFor(label string, hasValues bool) (constants.SectionHint, bool) {
	hint := constants.HintForLabel(label)
	if hasValues {
		return hint, false
	}
	return hint, reRomanHeading.MatchString(label) || constants.IsSectionHeading(label)
}
