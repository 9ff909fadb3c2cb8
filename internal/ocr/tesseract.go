package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// TesseractEngine shells out to the tesseract CLI.
type TesseractEngine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTesseractEngine(cfg Config, runner Runner, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = NewExecRunner(logger)
	}
	return &TesseractEngine{cfg: cfg.withDefaults(), runner: runner, logger: logger}
}

func (e *TesseractEngine) args(path string, extra ...string) []string {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return append(args, extra...)
}

// Text runs plain recognition: tesseract <file> stdout -l <lang>
func (e *TesseractEngine) Text(ctx context.Context, path string) (string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.args(path)...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return Normalize(string(out)), nil
}

// Words runs tesseract in TSV mode and keeps word-level boxes.
func (e *TesseractEngine) Words(ctx context.Context, path string) ([]Word, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.args(path, "tsv")...)
	if err != nil {
		return nil, fmt.Errorf("tesseract TSV: %w: %s", err, truncate(string(errb), 512))
	}
	words := ParseTSV(string(out))
	e.logger.Debug("tesseract words", "image", path, "words", len(words), "mean_conf", MeanConfidence(words))
	return words, nil
}

// ParseTSV reads tesseract TSV output. Only level-5 (word) rows with text and
// a non-negative confidence are returned.
func ParseTSV(tsv string) []Word {
	var words []Word
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || len(ln) == 0 {
			continue
		} // skip header
		cols := strings.Split(strings.TrimRight(ln, "\r"), "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		var box [4]float64
		ok := true
		for j := range box {
			v, err := strconv.ParseFloat(cols[6+j], 64)
			if err != nil {
				ok = false
				break
			}
			box[j] = v
		}
		if !ok {
			continue
		}
		words = append(words, Word{Text: text, Left: box[0], Top: box[1], Width: box[2], Height: box[3], Conf: conf})
	}
	return words
}

// MeanConfidence is the average word confidence, 0 for no words.
func MeanConfidence(words []Word) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += w.Conf
	}
	return sum / float64(len(words))
}
