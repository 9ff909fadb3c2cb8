// Package layout rebuilds a statement table from OCR word boxes of one page:
// it finds the period columns, composes their headers, fills in missing
// fiscal years and assigns each text line's figures to columns.
package layout

import "github.com/joseph-ayodele/finstatement-extractor/internal/common"

// Params are the tunable thresholds of page reconstruction. Distances are in
// image pixels at the rendering DPI.
type Params struct {
	// MinConfidence drops OCR words below this confidence (0..100).
	MinConfidence float64
	// RightRegion is the fraction of the page width, measured from the right
	// edge, searched for column anchors.
	RightRegion float64
	// GenericGapFactor and LabeledGapFactor scale the median gap between
	// anchor word centers into the column split threshold.
	GenericGapFactor float64
	LabeledGapFactor float64
	// MinGapPx floors the column split threshold.
	MinGapPx float64
	// MaxColumns caps the number of detected columns.
	MaxColumns int
	// HeaderBandPx is the vertical reach around the anchor row searched for
	// header tokens; ContextBandPx is the wider reach used for years.
	HeaderBandPx  float64
	ContextBandPx float64
	// ColumnTolFactor times the column spacing is the horizontal tolerance
	// for assigning a word to a column.
	ColumnTolFactor float64
	// RowBandPx groups words whose centers are this close into one row.
	RowBandPx float64
}

func DefaultParams() Params {
	return Params{
		MinConfidence:    30,
		RightRegion:      0.65,
		GenericGapFactor: 1.5,
		LabeledGapFactor: 0.6,
		MinGapPx:         25,
		MaxColumns:       8,
		HeaderBandPx:     60,
		ContextBandPx:    140,
		ColumnTolFactor:  0.45,
		RowBandPx:        22,
	}
}

// ParamsFrom applies the configured OCR thresholds over DefaultParams.
func ParamsFrom(c common.OCRConfig) Params {
	p := DefaultParams()
	if c.MinConfidence > 0 {
		p.MinConfidence = c.MinConfidence
	}
	if c.RightRegion > 0 && c.RightRegion <= 1 {
		p.RightRegion = c.RightRegion
	}
	if c.MaxColumns > 0 {
		p.MaxColumns = c.MaxColumns
	}
	if c.RowBandPx > 0 {
		p.RowBandPx = c.RowBandPx
	}
	return p
}

// singleColumnSpacing stands in for column spacing when only one column
// was found.
const singleColumnSpacing = 200.0
