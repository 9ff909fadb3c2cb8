//go:build !gosseract

package ocr

import (
	"errors"
	"log/slog"
)

// ErrEngineNotBuilt is returned when the gosseract engine is requested from a
// binary built without the gosseract tag. Rebuild with -tags gosseract.
var ErrEngineNotBuilt = errors.New("gosseract engine not built; rebuild with -tags gosseract")

func NewGosseractEngine(Config, *slog.Logger) (Engine, error) {
	return nil, ErrEngineNotBuilt
}
