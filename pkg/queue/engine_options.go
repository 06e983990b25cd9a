package queue

import (
	"log/slog"
	"time"
)

// EngineOption is a functional option for configuring an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	concurrency        int
	jobTimeout         time.Duration
	shutdownTimeout    time.Duration
	retryPolicy        RetryPolicy
	defaultMaxAttempts int
	defaultPriority    Priority
	autoStart          bool
	store              *MemoryStore
	registry           *Registry
	observer           Observer
	logger             *slog.Logger
}

// WithConcurrency sets the maximum number of jobs executing at once.
func WithConcurrency(n int) EngineOption {
	return func(o *engineOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithJobTimeout sets how long the engine waits for a handler.
func WithJobTimeout(d time.Duration) EngineOption {
	return func(o *engineOptions) {
		if d > 0 {
			o.jobTimeout = d
		}
	}
}

// WithShutdownTimeout sets how long Run waits for in-flight jobs after its context is done.
func WithShutdownTimeout(d time.Duration) EngineOption {
	return func(o *engineOptions) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// WithRetryPolicy replaces the default linear retry policy.
func WithRetryPolicy(p RetryPolicy) EngineOption {
	return func(o *engineOptions) {
		if p != nil {
			o.retryPolicy = p
		}
	}
}

// WithRetryBaseDelay sets the base delay of the default linear retry policy.
func WithRetryBaseDelay(d time.Duration) EngineOption {
	return func(o *engineOptions) {
		o.retryPolicy = NewLinearRetry(d)
	}
}

// WithDefaultMaxAttempts sets the attempt ceiling for jobs added without WithMaxAttempts.
func WithDefaultMaxAttempts(n int) EngineOption {
	return func(o *engineOptions) {
		if n >= 1 && n <= maxAttemptsLimit {
			o.defaultMaxAttempts = n
		}
	}
}

// WithDefaultPriority sets the priority for jobs added without WithPriority.
func WithDefaultPriority(p Priority) EngineOption {
	return func(o *engineOptions) {
		if p.Valid() {
			o.defaultPriority = p
		}
	}
}

// WithAutoStart controls whether Add starts the dispatch loop when it is not running.
func WithAutoStart(enabled bool) EngineOption {
	return func(o *engineOptions) {
		o.autoStart = enabled
	}
}

// WithStore sets the job store, mostly useful to share a store with tests.
func WithStore(s *MemoryStore) EngineOption {
	return func(o *engineOptions) {
		if s != nil {
			o.store = s
		}
	}
}

// WithRegistry sets the handler registry.
func WithRegistry(r *Registry) EngineOption {
	return func(o *engineOptions) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithObserver registers a hook notified about job lifecycle events.
func WithObserver(obs Observer) EngineOption {
	return func(o *engineOptions) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithLogger sets the logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// maxAttemptsLimit caps attempts per job.
const maxAttemptsLimit = 100

// EnqueueOption is a functional option for the Add method.
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	priority    Priority
	maxAttempts int
}

// WithPriority sets the priority tier of the job. Unknown tiers are ignored.
func WithPriority(p Priority) EnqueueOption {
	return func(o *enqueueOptions) {
		if p.Valid() {
			o.priority = p
		}
	}
}

// WithMaxAttempts sets how many times the job may be dispatched (1-100).
func WithMaxAttempts(n int) EnqueueOption {
	return func(o *enqueueOptions) {
		if n >= 1 && n <= maxAttemptsLimit {
			o.maxAttempts = n
		}
	}
}
