//go:build !gosseract

package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEngine_GosseractNotBuilt(t *testing.T) {
	_, err := NewEngine(EngineGosseract, Config{}, nil, nil)
	assert.ErrorIs(t, err, ErrEngineNotBuilt)
}
