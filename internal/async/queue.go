// Package async extracts many documents concurrently on a fixed worker pool.
package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
	"github.com/joseph-ayodele/finstatement-extractor/internal/pipeline"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document to extract.
type Job struct {
	ID          uuid.UUID
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

// NewJob stamps path with a fresh ID and submission time.
func NewJob(path string) Job {
	return Job{ID: uuid.New(), Path: path, SubmittedAt: time.Now()}
}

// Result pairs a job with its extraction outcome.
type Result struct {
	Job      Job
	Result   entity.ExtractionResult
	Duration time.Duration
}

// Extractor is the part of the pipeline the queue drives.
type Extractor interface {
	Extract(ctx context.Context, in pipeline.Input) entity.ExtractionResult
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
