package queue

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is the in-process registry of every job known to an engine.
// All methods are safe for concurrent use and return copies of the stored jobs.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*Job

	// order keeps insertion order for enumeration
	order []uuid.UUID

	// pending holds one FIFO per priority tier, indexed by Priority.rank()
	pending [len(priorityTiers)][]uuid.UUID
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[uuid.UUID]*Job),
	}
}

// Insert stores a new pending job.
func (ms *MemoryStore) Insert(job Job) error {
	if job.Status != StatusPending {
		return fmt.Errorf("%w: new job %s must be pending, got %s", ErrInvalidTransition, job.ID, job.Status)
	}
	rank := job.Priority.rank()
	if rank < 0 {
		return fmt.Errorf("unknown priority %q for job %s", job.Priority, job.ID)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.jobs[job.ID]; exists {
		return fmt.Errorf("%w: %s", ErrJobExists, job.ID)
	}

	ms.jobs[job.ID] = &job
	ms.order = append(ms.order, job.ID)
	ms.pending[rank] = append(ms.pending[rank], job.ID)

	return nil
}

// Get returns a copy of the job with the given id.
func (ms *MemoryStore) Get(id uuid.UUID) (Job, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	job, ok := ms.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// All returns every stored job in insertion order.
func (ms *MemoryStore) All() []Job {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	jobs := make([]Job, 0, len(ms.order))
	for _, id := range ms.order {
		jobs = append(jobs, *ms.jobs[id])
	}
	return jobs
}

// ByStatus returns jobs with the given status in insertion order.
func (ms *MemoryStore) ByStatus(status Status) []Job {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var jobs []Job
	for _, id := range ms.order {
		if job := ms.jobs[id]; job.Status == status {
			jobs = append(jobs, *job)
		}
	}
	return jobs
}

// Counts returns the number of jobs per status.
func (ms *MemoryStore) Counts() map[Status]int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	counts := make(map[Status]int, 5)
	for _, job := range ms.jobs {
		counts[job.Status]++
	}
	return counts
}

// Len returns the number of stored jobs.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.jobs)
}

// ClaimNext moves the next eligible job to processing and returns it.
// The highest non-empty tier wins; within a tier jobs are served in the
// order they became pending.
func (ms *MemoryStore) ClaimNext() (Job, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for rank := range ms.pending {
		for len(ms.pending[rank]) > 0 {
			id := ms.pending[rank][0]
			ms.pending[rank] = ms.pending[rank][1:]

			job, ok := ms.jobs[id]
			if !ok || job.Status != StatusPending {
				continue
			}

			now := time.Now()
			job.Status = StatusProcessing
			job.Attempts++
			if job.StartedAt == nil {
				job.StartedAt = &now
			}
			return *job, true
		}
	}

	return Job{}, false
}

// Complete marks a processing job as completed with the handler result.
func (ms *MemoryStore) Complete(id uuid.UUID, result json.RawMessage) (Job, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, ok := ms.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if err := checkTransition(job.Status, StatusCompleted); err != nil {
		return Job{}, fmt.Errorf("complete job %s: %w", id, err)
	}

	now := time.Now()
	job.Status = StatusCompleted
	job.Result = result
	job.CompletedAt = &now

	return *job, nil
}

// Fail records a failed attempt. With retry set the job moves to retrying,
// otherwise it fails terminally. A job that has used all of its attempts
// always fails terminally.
func (ms *MemoryStore) Fail(id uuid.UUID, errorMsg string, retry bool) (Job, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, ok := ms.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	next := StatusFailed
	if retry && job.Attempts < job.MaxAttempts {
		next = StatusRetrying
	}
	if err := checkTransition(job.Status, next); err != nil {
		return Job{}, fmt.Errorf("fail job %s: %w", id, err)
	}

	job.Status = next
	job.Error = &errorMsg
	if next == StatusFailed {
		now := time.Now()
		job.FailedAt = &now
	}

	return *job, nil
}

// Requeue moves a retrying job back to pending at the tail of its tier.
// It reports false when the job was removed or is no longer retrying.
func (ms *MemoryStore) Requeue(id uuid.UUID) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, ok := ms.jobs[id]
	if !ok || job.Status != StatusRetrying {
		return false
	}

	job.Status = StatusPending
	rank := job.Priority.rank()
	ms.pending[rank] = append(ms.pending[rank], id)

	return true
}

// ClearCompleted removes completed jobs and returns how many were removed.
func (ms *MemoryStore) ClearCompleted() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	removed := 0
	ms.order = slices.DeleteFunc(ms.order, func(id uuid.UUID) bool {
		if ms.jobs[id].Status != StatusCompleted {
			return false
		}
		delete(ms.jobs, id)
		removed++
		return true
	})

	return removed
}
