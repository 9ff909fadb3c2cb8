// Package ocr rasterizes PDF pages and runs an OCR engine over them,
// returning positioned words.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/finstatement-extractor/internal/common"
)

const (
	EngineTesseract = "tesseract"
	EngineGosseract = "gosseract"
)

// Word is one recognized word in image pixels. Conf is 0..100.
type Word struct {
	Text   string
	Left   float64
	Top    float64
	Width  float64
	Height float64
	Conf   float64
}

func (w Word) Right() float64   { return w.Left + w.Width }
func (w Word) Bottom() float64  { return w.Top + w.Height }
func (w Word) CenterX() float64 { return w.Left + w.Width/2 }
func (w Word) CenterY() float64 { return w.Top + w.Height/2 }

// Engine recognizes a single page image.
type Engine interface {
	Words(ctx context.Context, imagePath string) ([]Word, error)
	Text(ctx context.Context, imagePath string) (string, error)
}

// Config holds binary locations and recognition settings.
type Config struct {
	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI, default 220
	PSM           int // 6 = uniform block of text
}

// ConfigFrom maps application config onto engine config.
func ConfigFrom(c common.OCRConfig) Config {
	return Config{
		Pdftoppm:      c.Pdftoppm,
		Tesseract:     c.Tesseract,
		TesseractLang: c.TesseractLang,
		TessdataDir:   c.TessdataDir,
		DPI:           c.DPI,
		PSM:           c.PSM,
	}
}

func (c Config) withDefaults() Config {
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.TesseractLang == "" {
		c.TesseractLang = "eng"
	}
	if c.DPI <= 0 {
		c.DPI = 220
	}
	return c
}

// NewEngine builds the engine named by kind. The gosseract engine is only
// available in binaries built with the gosseract tag.
func NewEngine(kind string, cfg Config, runner Runner, logger *slog.Logger) (Engine, error) {
	switch strings.ToLower(kind) {
	case "", EngineTesseract:
		return NewTesseractEngine(cfg, runner, logger), nil
	case EngineGosseract:
		return NewGosseractEngine(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", kind)
	}
}
