//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine links libtesseract through cgo. A client is created per
// call since gosseract clients are not safe for concurrent use.
type GosseractEngine struct {
	cfg    Config
	logger *slog.Logger
}

func NewGosseractEngine(cfg Config, logger *slog.Logger) (Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &GosseractEngine{cfg: cfg.withDefaults(), logger: logger}, nil
}

func (e *GosseractEngine) client(path string) (*gosseract.Client, error) {
	c := gosseract.NewClient()
	if e.cfg.TessdataDir != "" {
		if err := c.SetTessdataPrefix(e.cfg.TessdataDir); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	if err := c.SetLanguage(e.cfg.TesseractLang); err != nil {
		_ = c.Close()
		return nil, err
	}
	if e.cfg.PSM > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(e.cfg.PSM)); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	if err := c.SetImage(path); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	return c, nil
}

func (e *GosseractEngine) Text(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c, err := e.client(path)
	if err != nil {
		return "", err
	}
	defer c.Close()
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return Normalize(text), nil
}

func (e *GosseractEngine) Words(ctx context.Context, path string) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := e.client(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		if b.Word == "" {
			continue
		}
		words = append(words, Word{
			Text:   b.Word,
			Left:   float64(b.Box.Min.X),
			Top:    float64(b.Box.Min.Y),
			Width:  float64(b.Box.Dx()),
			Height: float64(b.Box.Dy()),
			Conf:   b.Confidence,
		})
	}
	e.logger.Debug("gosseract words", "image", path, "words", len(words), "mean_conf", MeanConfidence(words))
	return words, nil
}
