package pipeline

import (
	"context"

	"github.com/joseph-ayodele/finstatement-extractor/constants"
	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
	"github.com/joseph-ayodele/finstatement-extractor/internal/textlayer"
)

// Strategy produces an intermediate table for a job.
type Strategy interface {
	Kind() constants.Method
	Extract(ctx context.Context, job *Job) (entity.Extraction, error)
}

type textStrategy struct {
	extractor *textlayer.Extractor
}

func (textStrategy) Kind() constants.Method { return constants.MethodTextLayer }

func (s textStrategy) Extract(ctx context.Context, job *Job) (entity.Extraction, error) {
	return s.extractor.Extract(ctx, job.Doc, textlayer.PageRange{})
}
