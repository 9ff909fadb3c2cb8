package ocr

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	stdout []byte
	err    error
	// onRun lets a test create files the real binary would produce
	onRun func(args []string)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if f.onRun != nil {
		f.onRun(args)
	}
	if f.err != nil {
		return nil, []byte("boom"), f.err
	}
	return f.stdout, nil, nil
}

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t1700\t2200\t-1\t\n" +
	"4\t1\t1\t1\t1\t0\t100\t200\t900\t30\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t100\t200\t140\t30\t96.5\tRevenue\n" +
	"5\t1\t1\t1\t1\t2\t1200\t200\t90\t30\t91\t1,200\n" +
	"5\t1\t1\t1\t1\t3\t1400\t200\t10\t30\t-1\t \n" +
	"5\t1\t1\t1\t1\t4\t1500\t200\t90\t30\t12.25\t(45)\r\n"

func TestParseTSV(t *testing.T) {
	words := ParseTSV(sampleTSV)
	require.Len(t, words, 3)
	assert.Equal(t, Word{Text: "Revenue", Left: 100, Top: 200, Width: 140, Height: 30, Conf: 96.5}, words[0])
	assert.Equal(t, "1,200", words[1].Text)
	assert.Equal(t, "(45)", words[2].Text)
	assert.InDelta(t, 1245, words[1].CenterX(), 1e-9)
	assert.InDelta(t, (96.5+91+12.25)/3, MeanConfidence(words), 1e-9)
	assert.Zero(t, MeanConfidence(nil))
}

func TestTesseractEngine_Args(t *testing.T) {
	r := &fakeRunner{stdout: []byte(sampleTSV)}
	e := NewTesseractEngine(Config{PSM: 6, TessdataDir: "/td"}, r, nil)

	words, err := e.Words(context.Background(), "/tmp/p.png")
	require.NoError(t, err)
	assert.Len(t, words, 3)
	require.Len(t, r.calls, 1)
	assert.Equal(t, "tesseract", r.calls[0].name)
	assert.Equal(t, []string{"/tmp/p.png", "stdout", "-l", "eng", "--psm", "6", "--tessdata-dir", "/td", "tsv"}, r.calls[0].args)
}

func TestTesseractEngine_Text(t *testing.T) {
	r := &fakeRunner{stdout: []byte("Revenue\t\t1,200\r\n-----\n\n\n\nTotal  05\n")}
	e := NewTesseractEngine(Config{}, r, nil)
	txt, err := e.Text(context.Background(), "p.png")
	require.NoError(t, err)
	assert.Equal(t, "Revenue 1,200\n\nTotal 05", txt)
}

func TestTesseractEngine_Error(t *testing.T) {
	r := &fakeRunner{err: errors.New("exit status 1")}
	_, err := NewTesseractEngine(Config{}, r, nil).Words(context.Background(), "p.png")
	assert.ErrorContains(t, err, "tesseract TSV")
}

func TestRenderer_RenderPage(t *testing.T) {
	r := &fakeRunner{onRun: func(args []string) {
		prefix := args[len(args)-1]
		_ = os.WriteFile(prefix+"-03.png", []byte("png"), 0o644)
	}}
	rd := NewRenderer(Config{DPI: 150}, r, nil)

	img, cleanup, err := rd.RenderPage(context.Background(), "/in.pdf", 3, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(img, "page-03.png"))
	assert.FileExists(t, img)
	assert.Equal(t, []string{"-r", "150", "-f", "3", "-l", "3", "-png", "/in.pdf"}, r.calls[0].args[:8])

	cleanup()
	assert.NoFileExists(t, img)
}

func TestRenderer_FailureCleansUp(t *testing.T) {
	var prefix string
	r := &fakeRunner{err: errors.New("exit status 99"), onRun: func(args []string) {
		prefix = args[len(args)-1]
	}}
	rd := NewRenderer(Config{}, r, nil)

	_, cleanup, err := rd.RenderPage(context.Background(), "/in.pdf", 1, 300)
	require.Error(t, err)
	require.NotNil(t, cleanup)
	cleanup()
	assert.Equal(t, "300", r.calls[0].args[1])
	assert.NoDirExists(t, strings.TrimSuffix(prefix, "/page"))
}

func TestRenderer_NoImage(t *testing.T) {
	rd := NewRenderer(Config{}, &fakeRunner{}, nil)
	_, _, err := rd.RenderPage(context.Background(), "/in.pdf", 1, 0)
	assert.ErrorContains(t, err, "no image produced")
}

func TestNewEngine(t *testing.T) {
	e, err := NewEngine("", Config{}, &fakeRunner{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &TesseractEngine{}, e)

	_, err = NewEngine("abbyy", Config{}, nil, nil)
	assert.Error(t, err)
}
