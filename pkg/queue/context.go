package queue

import (
	"context"

	"github.com/google/uuid"
)

// JobInfo describes the attempt a handler is running.
type JobInfo struct {
	ID          uuid.UUID
	Type        string
	Priority    Priority
	Attempt     int
	MaxAttempts int
}

type jobInfoKey struct{}

func withJobInfo(ctx context.Context, job Job) context.Context {
	return context.WithValue(ctx, jobInfoKey{}, JobInfo{
		ID:          job.ID,
		Type:        job.Type,
		Priority:    job.Priority,
		Attempt:     job.Attempts,
		MaxAttempts: job.MaxAttempts,
	})
}

// JobInfoFromContext returns the job attempt a handler context belongs to.
func JobInfoFromContext(ctx context.Context) (JobInfo, bool) {
	info, ok := ctx.Value(jobInfoKey{}).(JobInfo)
	return info, ok
}
