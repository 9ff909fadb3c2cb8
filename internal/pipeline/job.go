package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/joseph-ayodele/finstatement-extractor/constants"
	"github.com/joseph-ayodele/finstatement-extractor/internal/pdfdoc"
)

// Input names the document to extract. Path wins when both are set.
type Input struct {
	Path string
	Data []byte
	// Name labels in-memory input in logs.
	Name string
}

func (in Input) name() string {
	switch {
	case in.Path != "":
		return filepath.Base(in.Path)
	case in.Name != "":
		return in.Name
	default:
		return "<memory>"
	}
}

// Job is the state of one extraction as it moves through the stages.
type Job struct {
	ID          string
	Input       Input
	Data        []byte
	Fingerprint string
	Doc         pdfdoc.Document
	Kind        constants.DocumentKind
	Logger      *slog.Logger

	pathOnce sync.Once
	path     string
	pathErr  error
	cleanups []func()
}

// PDFPath returns a file holding the document, writing in-memory input to a
// temp file on first use. The file lives until the job is cleaned up.
func (j *Job) PDFPath() (string, error) {
	j.pathOnce.Do(func() {
		if j.Input.Path != "" {
			j.path = j.Input.Path
			return
		}
		f, err := os.CreateTemp("", "fx-input-*.pdf")
		if err != nil {
			j.pathErr = fmt.Errorf("create temp pdf: %w", err)
			return
		}
		name := f.Name()
		j.cleanups = append(j.cleanups, func() { _ = os.Remove(name) })
		if _, err := f.Write(j.Data); err != nil {
			_ = f.Close()
			j.pathErr = fmt.Errorf("write temp pdf: %w", err)
			return
		}
		if err := f.Close(); err != nil {
			j.pathErr = fmt.Errorf("close temp pdf: %w", err)
			return
		}
		j.path = name
	})
	return j.path, j.pathErr
}

func (j *Job) cleanup() {
	for i := len(j.cleanups) - 1; i >= 0; i-- {
		j.cleanups[i]()
	}
	j.cleanups = nil
	if j.Doc != nil {
		if err := j.Doc.Close(); err != nil {
			j.Logger.Debug("failed to close document", "error", err)
		}
	}
}
