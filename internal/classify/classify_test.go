package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/finstatement-extractor/constants"
	"github.com/joseph-ayodele/finstatement-extractor/internal/common"
	"github.com/joseph-ayodele/finstatement-extractor/internal/pdfdoc"
)

type fakeDoc struct {
	texts []string
	errs  map[int]error
	reads []int
}

func (d *fakeDoc) NumPages() int { return len(d.texts) }
func (d *fakeDoc) PageText(i int) (string, error) {
	d.reads = append(d.reads, i)
	if err := d.errs[i]; err != nil {
		return "", err
	}
	return d.texts[i-1], nil
}
func (d *fakeDoc) PageWords(int) ([]pdfdoc.Word, error) { return nil, nil }
func (d *fakeDoc) PageRules(int) ([]pdfdoc.Rule, error) { return nil, nil }
func (d *fakeDoc) Close() error                         { return nil }

func TestClassify(t *testing.T) {
	cfg := common.DefaultExtractConfig()
	long := strings.Repeat("Revenue from operations 1,200 ", 10)

	tests := []struct {
		name  string
		doc   *fakeDoc
		want  constants.DocumentKind
		reads []int
	}{
		{"text on first page", &fakeDoc{texts: []string{long, ""}}, constants.DocumentTextLayer, []int{1}},
		{"text on third page", &fakeDoc{texts: []string{"", "x", long, long}}, constants.DocumentTextLayer, []int{1, 2, 3}},
		{"text only past sample", &fakeDoc{texts: []string{"", "", "", long}}, constants.DocumentScannedImage, []int{1, 2, 3}},
		{"exactly threshold is scanned", &fakeDoc{texts: []string{strings.Repeat("a", 150)}}, constants.DocumentScannedImage, []int{1}},
		{"page error treated as empty", &fakeDoc{texts: []string{long}, errs: map[int]error{1: errors.New("bad stream")}}, constants.DocumentScannedImage, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(context.Background(), tt.doc, cfg, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.reads, tt.doc.reads)
		})
	}
}

func TestClassify_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Classify(ctx, &fakeDoc{texts: []string{"x"}}, common.DefaultExtractConfig(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassify_NoPages(t *testing.T) {
	_, err := Classify(context.Background(), &fakeDoc{}, common.DefaultExtractConfig(), nil)
	assert.ErrorIs(t, err, common.ErrClassification)
}
