package async

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is one file waiting to be processed.
type Job struct {
	ID          uuid.UUID
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

// NewJob stamps a job for path.
func NewJob(path string) Job {
	return Job{ID: uuid.New(), Path: path, SubmittedAt: time.Now().UTC()}
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
