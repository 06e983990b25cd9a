package logger

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Attribute keys shared by every component logging job activity.
const (
	KeyJobID     = "job_id"
	KeyJobType   = "job_type"
	KeyPriority  = "priority"
	KeySchedule  = "schedule"
	KeyAttempt   = "attempt"
	KeyComponent = "component"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

func JobID(id uuid.UUID) slog.Attr {
	return slog.String(KeyJobID, id.String())
}

func JobType(t string) slog.Attr {
	return slog.String(KeyJobType, t)
}

// Priority accepts any string-like priority tier.
func Priority[P ~string](p P) slog.Attr {
	return slog.String(KeyPriority, string(p))
}

// Attempt records attempt progress as a group, e.g. attempt.n=2 attempt.max=3.
func Attempt(n, maxAttempts int) slog.Attr {
	return slog.Group(KeyAttempt, slog.Int("n", n), slog.Int("max", maxAttempts))
}

func Schedule(name string) slog.Attr {
	return slog.String(KeySchedule, name)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Count records a number of affected items under the key "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}
