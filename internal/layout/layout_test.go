package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/finstatement-extractor/constants"
	"github.com/joseph-ayodele/finstatement-extractor/internal/common"
	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
	"github.com/joseph-ayodele/finstatement-extractor/internal/ocr"
)

const pageWidth = 1700

func w(text string, left, top float64) ocr.Word {
	return ocr.Word{Text: text, Left: left, Top: top, Width: 12 * float64(len([]rune(text))), Height: 20, Conf: 90}
}

func line(top float64, label string, values ...string) []ocr.Word {
	var out []ocr.Word
	if label != "" {
		out = append(out, w(label, 100, top))
	}
	xs := []float64{890, 1140, 1390}
	for i, v := range values {
		if v != "" {
			out = append(out, w(v, xs[i], top))
		}
	}
	return out
}

func quarterlyPage() []ocr.Word {
	var ws []ocr.Word
	ws = append(ws, w("Quarterly", 100, 40), w("results", 230, 40), w("2024", 330, 40))
	ws = append(ws, w("Particulars", 100, 100), w("Dec", 900, 100), w("Mar", 1150, 100), w("Mar", 1400, 100))
	ws = append(ws, line(160, "Revenue", "1,200", "1,100", "4,500")...)
	ws = append(ws, line(200, "Expenses")...)
	ws = append(ws, w("Employee", 100, 240), w("benefit", 210, 240))
	ws = append(ws, line(240, "", "(300)", "(280)", "(1,100)")...)
	ws = append(ws, w("Page", 100, 280), w("3", 160, 280), w("of", 190, 280), w("40", 230, 280))
	ws = append(ws, w("Profit", 100, 320), w("before", 180, 320), w("tax", 270, 320))
	ws = append(ws, line(320, "", "900", "820", "3,400")...)
	ws = append(ws, w("Cost", 130, 360), w("of", 190, 360), w("sales", 230, 360))
	ws = append(ws, line(360, "", "500", "450", "1,900")...)
	junk := w("Junk", 100, 400)
	junk.Conf = 10
	val := w("999", 895, 400)
	val.Conf = 10
	return append(ws, junk, val)
}

func TestReconstructPage_MonthColumnsWithBackfill(t *testing.T) {
	res := ReconstructPage(quarterlyPage(), "", pageWidth, DefaultParams(), nil)

	assert.Equal(t, AnchorMonth, res.Kind)
	assert.Equal(t, 2024, res.Year)
	assert.Equal(t, []string{"Dec 2023", "Mar 2024", "Mar 2023"}, res.Headers)

	labels := make([]string, len(res.Rows))
	for i, r := range res.Rows {
		labels[i] = r.Label
		assert.Len(t, r.Values, 3, r.Label)
	}
	assert.Equal(t, []string{"Revenue", "Expenses", "Employee benefit", "Profit before tax", "Cost of sales"}, labels)

	assert.Equal(t, []entity.Value{entity.Number(1200), entity.Number(1100), entity.Number(4500)}, res.Rows[0].Values)
	assert.True(t, res.Rows[1].IsSectionHeader)
	assert.Equal(t, []entity.Value{entity.Null(), entity.Null(), entity.Null()}, res.Rows[1].Values)
	assert.Equal(t, []entity.Value{entity.Number(-300), entity.Number(-280), entity.Number(-1100)}, res.Rows[2].Values)
	assert.Equal(t, constants.SectionExpense, res.Rows[2].SectionHint)
	assert.Equal(t, constants.SectionProfit, res.Rows[3].SectionHint)
	assert.Equal(t, 0, res.Rows[0].Indent)
	assert.Equal(t, 2, res.Rows[4].Indent)
}

func TestParamsFrom(t *testing.T) {
	p := ParamsFrom(common.OCRConfig{MinConfidence: 95, MaxColumns: 4, RightRegion: 3})
	assert.Equal(t, 95.0, p.MinConfidence)
	assert.Equal(t, 4, p.MaxColumns)
	assert.Equal(t, DefaultParams().RightRegion, p.RightRegion, "out of range keeps the default")
	assert.Equal(t, DefaultParams(), ParamsFrom(common.OCRConfig{}))

	// every word in the page has confidence 90
	res := ReconstructPage(quarterlyPage(), "", pageWidth, p, nil)
	assert.Empty(t, res.Rows)
	res = ReconstructPage(quarterlyPage(), "", pageWidth, ParamsFrom(common.OCRConfig{MinConfidence: 5}), nil)
	assert.Len(t, res.Rows, 6, "low-confidence junk row is kept")
}

func TestReconstructPage_NoAnchors(t *testing.T) {
	res := ReconstructPage([]ocr.Word{w("Directors", 100, 100), w("report", 250, 100)}, "", pageWidth, DefaultParams(), nil)
	assert.Empty(t, res.Rows)
	assert.Nil(t, res.Headers)
}

func TestDetectAnchors_Generic(t *testing.T) {
	var ws []ocr.Word
	ws = append(ws, line(100, "Revenue", "1,200", "1,000")...)
	ws = append(ws, line(140, "Other income", "45", "30")...)
	ws = append(ws, line(180, "Total", "1,245", "1,030")...)

	anchors, y := DetectAnchors(ws, pageWidth, DefaultParams())
	require.Len(t, anchors, 2)
	assert.Equal(t, AnchorGeneric, anchors[0].Kind)
	assert.InDelta(t, 110, y, 1e-9)
	assert.Less(t, anchors[0].CenterX, anchors[1].CenterX)

	res := ReconstructPage(ws, "", pageWidth, DefaultParams(), nil)
	assert.Nil(t, res.Headers)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, "Revenue", res.Rows[0].Label)
}

func TestDetectAnchors_IgnoresLeftRegion(t *testing.T) {
	ws := []ocr.Word{w("March", 100, 100), w("2024", 900, 100), w("2023", 1150, 100)}
	anchors, _ := DetectAnchors(ws, pageWidth, DefaultParams())
	require.Len(t, anchors, 2)
	assert.Equal(t, AnchorYear, anchors[0].Kind)
}

func TestDetectAnchors_YearInsideLabelKeepsFigureColumns(t *testing.T) {
	var ws []ocr.Word
	ws = append(ws, line(100, "Revenue", "1,200", "1,000")...)
	ws = append(ws, line(140, "Other income", "45", "30")...)
	ws = append(ws, w("Redemption", 100, 180), w("of", 240, 180), w("2024", 700, 180), w("bonds", 760, 180))
	ws = append(ws, line(180, "", "300", "250")...)
	ws = append(ws, line(220, "Finance costs", "(80)", "(70)")...)
	ws = append(ws, line(260, "Total", "1,465", "1,210")...)

	anchors, _ := DetectAnchors(ws, pageWidth, DefaultParams())
	require.Len(t, anchors, 2)
	assert.Equal(t, AnchorGeneric, anchors[0].Kind)

	res := ReconstructPage(ws, "", pageWidth, DefaultParams(), nil)
	require.Len(t, res.Rows, 5)
	assert.Equal(t, "Redemption of 2024 bonds", res.Rows[2].Label)
	assert.Equal(t, []entity.Value{entity.Number(300), entity.Number(250)}, res.Rows[2].Values)
}

func TestDetectAnchors_HeaderLineBeatsYearsInLabels(t *testing.T) {
	var ws []ocr.Word
	ws = append(ws, w("Particulars", 100, 100), w("2024", 894, 100), w("2023", 1144, 100))
	ws = append(ws, line(160, "Revenue", "1,200", "1,000")...)
	ws = append(ws, line(200, "Other income", "45", "30")...)
	ws = append(ws, line(240, "Finance costs", "(80)", "(70)")...)
	ws = append(ws, line(280, "Tax expense", "(120)", "(100)")...)
	ws = append(ws, line(320, "Total", "1,045", "860")...)
	ws = append(ws, w("Balance", 100, 500), w("as", 200, 500), w("at", 240, 500), w("2024", 620, 500))
	ws = append(ws, line(500, "", "10", "9")...)
	ws = append(ws, w("Balance", 100, 540), w("as", 200, 540), w("at", 240, 540), w("2023", 620, 540))
	ws = append(ws, line(540, "", "9", "8")...)

	anchors, y := DetectAnchors(ws, pageWidth, DefaultParams())
	require.Len(t, anchors, 2)
	assert.Equal(t, AnchorYear, anchors[0].Kind)
	assert.InDelta(t, 110, y, 1e-9)

	res := ReconstructPage(ws, "", pageWidth, DefaultParams(), nil)
	assert.Equal(t, []string{"2024", "2023"}, res.Headers)
	require.GreaterOrEqual(t, len(res.Rows), 5)
	assert.Equal(t, "Revenue", res.Rows[0].Label)
	assert.Equal(t, "Total", res.Rows[4].Label)
}

func TestDetectAnchors_CapsColumns(t *testing.T) {
	p := DefaultParams()
	p.RightRegion = 1
	var ws []ocr.Word
	for i := 0; i < 10; i++ {
		ws = append(ws, w("2020", float64(100+i*150), 100))
	}
	anchors, _ := DetectAnchors(ws, pageWidth, p)
	assert.Len(t, anchors, p.MaxColumns)
}

func TestAssembleRows_DropsNoteNumbers(t *testing.T) {
	ws := []ocr.Word{
		w("Revenue", 100, 100), w("from", 200, 100), w("operations", 260, 100), w("21", 500, 100),
		w("1,200", 890, 100), w("1,000", 1140, 100),
		w("Other", 100, 140), w("income", 180, 140), w("4.2", 500, 140),
		w("45", 890, 140), w("30", 1140, 140),
	}
	anchors := []ColumnAnchor{{CenterX: 920, Kind: AnchorYear}, {CenterX: 1170, Kind: AnchorYear}}

	rows := AssembleRows(ws, anchors, 0, DefaultParams(), nil)
	require.Len(t, rows, 2)
	assert.Equal(t, "Revenue from operations", rows[0].Label)
	assert.Equal(t, []entity.Value{entity.Number(1200), entity.Number(1000)}, rows[0].Values)
	assert.Equal(t, "Other income", rows[1].Label)
}

func TestAssembleHeaders_StackedDateParts(t *testing.T) {
	anchors := []ColumnAnchor{{CenterX: 918, Kind: AnchorMonth}}
	ws := []ocr.Word{w("Mar", 900, 100), w("31,", 905, 125), w("2024", 895, 150)}
	h := AssembleHeaders(ws, anchors, 110, DefaultParams())
	assert.Equal(t, []string{"Mar 31 2024"}, h.Labels)
	assert.False(t, h.MissingYears)
	assert.Equal(t, 1, h.Resolved)
	assert.InDelta(t, 170, h.Bottom, 1e-9)
}

func TestAssembleHeaders_QuarterAndPlaceholder(t *testing.T) {
	anchors := []ColumnAnchor{{CenterX: 918, Kind: AnchorQuarter}, {CenterX: 1168, Kind: AnchorQuarter}}
	ws := []ocr.Word{w("Q4FY24", 880, 100)}
	h := AssembleHeaders(ws, anchors, 110, DefaultParams())
	assert.Equal(t, []string{"Q4 2024", "Column 2"}, h.Labels)
	assert.Equal(t, 1, h.Resolved)
}

func TestAssembleHeaders_SkipsDataBands(t *testing.T) {
	anchors := []ColumnAnchor{{CenterX: 918, Kind: AnchorYear}, {CenterX: 1168, Kind: AnchorYear}}
	var ws []ocr.Word
	ws = append(ws, w("2024", 894, 100), w("2023", 1144, 100))
	// a figure row inside the header band with a year-like value
	ws = append(ws, w("Land", 100, 140), w("2015", 894, 140), w("1,250", 1138, 140))
	h := AssembleHeaders(ws, anchors, 110, DefaultParams())
	assert.Equal(t, []string{"2024", "2023"}, h.Labels)
}

func TestBackfillFiscalYears(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		year    int
		want    []string
	}{
		{"trailing december and repeated month", []string{"Dec", "Mar", "Mar"}, 2024, []string{"Dec 2023", "Mar 2024", "Mar 2023"}},
		{"quarter and year blocks", []string{"Mar", "Dec", "Mar", "Mar", "Mar"}, 2024, []string{"Mar 2024", "Dec 2023", "Mar 2023", "Mar 2024", "Mar 2023"}},
		{"quarters", []string{"Q1", "Q2", "Q3"}, 2024, []string{"Q1 2024", "Q2 2024", "Q3 2024"}},
		{"explicit years untouched", []string{"Mar 2024", "Dec"}, 2024, []string{"Mar 2024", "Dec 2023"}},
		{"placeholders untouched", []string{"Column 1", "Mar 31"}, 2024, []string{"Column 1", "Mar 31 2024"}},
		{"no anchor year", []string{"Dec", "Mar"}, 0, []string{"Dec", "Mar"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]string(nil), tt.headers...)
			assert.Equal(t, tt.want, BackfillFiscalYears(tt.headers, tt.year))
			assert.Equal(t, in, tt.headers, "input must not be modified")
		})
	}
}

func TestPageYear(t *testing.T) {
	ws := []ocr.Word{w("2023", 900, 300), w("FY", 100, 50), w("2024", 140, 50)}
	assert.Equal(t, 2024, PageYear(ws, ""))
	assert.Equal(t, 2022, PageYear(nil, "for the quarter ended 31st March, 2022"))
	assert.Equal(t, 0, PageYear(nil, "no year here"))
}

func TestFYLabel(t *testing.T) {
	assert.Equal(t, "FY24", fyLabel("FY 2024"))
	assert.Equal(t, "FY24", fyLabel("2023-24"))
	assert.Equal(t, "FY23", fyLabel("FY23"))
}
