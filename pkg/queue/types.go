package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle status of a job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRetrying   Status = "retrying"
)

// Priority represents a job priority tier.
// Tiers are strictly ordered: critical > high > normal > low.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityNormal   Priority = "normal"
	PriorityLow      Priority = "low"
	PriorityDefault  Priority = PriorityNormal
)

// priorityTiers lists tiers in selection order.
var priorityTiers = [...]Priority{PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow}

// Valid checks if the priority is one of the known tiers.
func (p Priority) Valid() bool {
	return p.rank() >= 0
}

// rank returns the tier index, 0 being the most important. Unknown tiers return -1.
func (p Priority) rank() int {
	for i, tier := range priorityTiers {
		if tier == p {
			return i
		}
	}
	return -1
}

// Job represents a unit of asynchronous work tracked by the engine.
type Job struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	Data        json.RawMessage `json:"data,omitempty"`
	Priority    Priority        `json:"priority"`
	Status      Status          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	FailedAt    *time.Time      `json:"failed_at,omitempty"`
	Error       *string         `json:"error,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}
