package textlayer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/finstatement-extractor/constants"
	"github.com/joseph-ayodele/finstatement-extractor/internal/common"
	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
	"github.com/joseph-ayodele/finstatement-extractor/internal/pdfdoc"
)

type page struct {
	text  string
	words []pdfdoc.Word
	err   error
}

type fakeDoc struct{ pages []page }

func (d *fakeDoc) NumPages() int { return len(d.pages) }
func (d *fakeDoc) PageText(i int) (string, error) {
	return d.pages[i-1].text, nil
}
func (d *fakeDoc) PageWords(i int) ([]pdfdoc.Word, error) {
	p := d.pages[i-1]
	return p.words, p.err
}
func (d *fakeDoc) PageRules(int) ([]pdfdoc.Rule, error) { return nil, nil }
func (d *fakeDoc) Close() error                         { return nil }

// line lays out cells at fixed x positions on row y.
func line(y float64, cells ...string) []pdfdoc.Word {
	xs := []float64{20, 250, 320, 420}
	var ws []pdfdoc.Word
	for i, c := range cells {
		if c == "" {
			continue
		}
		ws = append(ws, pdfdoc.Word{Text: c, X: xs[i], Y: y, W: 5 * float64(len([]rune(c))), H: 10})
	}
	return ws
}

func statementPage() page {
	var ws []pdfdoc.Word
	rows := [][]string{
		{"Particulars", "Note", "2024", "2023"},
		{"Income", "", "", ""},
		{"Revenue", "18", "1,200.50", "1,000"},
		{"Other", "19", "(45)", "—"},
		{"Expenses", "", "", ""},
		{"Page 3 of 40"},
		{"Tax", "", "(120)", "(100)"},
	}
	for i, r := range rows {
		ws = append(ws, line(float64(i*20), r...)...)
	}
	return page{text: "Statement of Profit and Loss (₹ in Crores)", words: ws}
}

func TestExtract_TextTable(t *testing.T) {
	doc := &fakeDoc{pages: []page{statementPage()}}
	ex := New(common.DefaultExtractConfig(), nil, nil)

	got, err := ex.Extract(context.Background(), doc, PageRange{})
	require.NoError(t, err)

	assert.Equal(t, []string{"2024", "2023"}, got.Headers)
	assert.Equal(t, "₹ in Crores", got.UnitLabel)
	assert.Equal(t, 1, got.Pages)

	labels := make([]string, len(got.Rows))
	for i, r := range got.Rows {
		labels[i] = r.Label
	}
	assert.Equal(t, []string{"Income", "Revenue", "Other", "Expenses", "Tax"}, labels)

	rev := got.Rows[1]
	assert.Equal(t, []entity.Value{entity.Number(1200.5), entity.Number(1000)}, rev.Values)
	assert.Equal(t, constants.SectionRevenue, rev.SectionHint)

	other := got.Rows[2]
	assert.Equal(t, []entity.Value{entity.Number(-45), entity.Null()}, other.Values)

	exp := got.Rows[3]
	assert.True(t, exp.IsSectionHeader)
	assert.Equal(t, []entity.Value{entity.Null(), entity.Null()}, exp.Values)

	tax := got.Rows[4]
	assert.Equal(t, []entity.Value{entity.Number(-120), entity.Number(-100)}, tax.Values)
}

func TestExtract_SkipsFailingPages(t *testing.T) {
	doc := &fakeDoc{pages: []page{{err: errors.New("bad content stream")}, statementPage()}}
	ex := New(common.DefaultExtractConfig(), nil, nil)

	got, err := ex.Extract(context.Background(), doc, PageRange{})
	require.NoError(t, err)
	assert.Equal(t, 1, got.PageFailures)
	assert.Equal(t, 2, got.Pages)
	assert.NotEmpty(t, got.Rows)
}

func TestExtract_PageCap(t *testing.T) {
	pages := make([]page, 12)
	for i := range pages {
		pages[i] = statementPage()
	}
	cfg := common.DefaultExtractConfig()
	got, err := New(cfg, nil, nil).Extract(context.Background(), &fakeDoc{pages: pages}, PageRange{})
	require.NoError(t, err)
	assert.Equal(t, cfg.TextMaxPages, got.Pages)
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(common.DefaultExtractConfig(), nil, nil).Extract(ctx, &fakeDoc{pages: []page{statementPage()}}, PageRange{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindHeader(t *testing.T) {
	tests := []struct {
		name  string
		table pdfdoc.Table
		want  int
	}{
		{"date row", pdfdoc.Table{{"Standalone results"}, {"", "Q1 FY24", "Q4 FY23"}}, 1},
		{"particulars", pdfdoc.Table{{"Particulars", "A", "B"}}, 0},
		{"wide row fallback", pdfdoc.Table{{"x"}, {"Item", "Current", "Previous"}}, 1},
		{"none", pdfdoc.Table{{"x"}, {"y", "z"}}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findHeader(tt.table, 8))
		})
	}
}

func TestHeaderColumns(t *testing.T) {
	cols := headerColumns([]string{"Particulars", "Note No.", "Mar 31, 2024 (₹ in Crores)", "Mar 31, 2023"})
	require.Len(t, cols, 2)
	assert.Equal(t, "Mar 31, 2024", cols[0].header)
	assert.Equal(t, 1, cols[0].fromRight)
	assert.Equal(t, "Mar 31, 2023", cols[1].header)

	// a header line that starts with a period has no label cell
	cols = headerColumns([]string{"Mar 2024", "Mar 2023"})
	require.Len(t, cols, 2)
	assert.Equal(t, "Mar 2024", cols[0].header)
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, entity.Number(-1234.5), cellValue("(1,234.50)"))
	assert.Equal(t, entity.Null(), cellValue("—"))
	assert.Equal(t, entity.Null(), cellValue("3.1"))
	assert.Equal(t, entity.Text("n/a"), cellValue("n/a"))
	assert.Equal(t, entity.Null(), cellValue("  "))
}
