package queue

import "errors"

// Common errors.
var (
	// ErrHandlerNotFound is returned when no handler is registered for a job type.
	// Jobs failing with it are never retried.
	ErrHandlerNotFound = errors.New("no handler registered for job type")

	// ErrHandlerAlreadyRegistered is returned when a job type already has a handler.
	ErrHandlerAlreadyRegistered = errors.New("handler already registered for job type")

	// ErrInvalidHandler is returned when registering a nil handler or an empty job type.
	ErrInvalidHandler = errors.New("handler and job type must be set")

	// ErrJobTimeout is recorded when a handler does not return within the job timeout.
	ErrJobTimeout = errors.New("job timed out")

	// ErrHandlerPanic is recorded when a handler panics.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrPayloadMarshal is returned when the job payload cannot be encoded to JSON.
	ErrPayloadMarshal = errors.New("failed to marshal payload to JSON")

	// ErrResultMarshal is recorded when a handler result cannot be encoded to JSON.
	ErrResultMarshal = errors.New("failed to marshal handler result to JSON")

	// ErrJobNotFound is returned when the store has no job with the given id.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobExists is returned when inserting a job whose id is already stored.
	ErrJobExists = errors.New("job already exists")

	// ErrInvalidTransition is returned when a status change is not a legal edge.
	ErrInvalidTransition = errors.New("invalid job status transition")

	// ErrEngineAlreadyStarted is returned when starting a running engine.
	ErrEngineAlreadyStarted = errors.New("engine already started")

	// ErrEngineNotStarted is returned when stopping an engine that is not running.
	ErrEngineNotStarted = errors.New("engine not started")

	// ErrEngineClosed is returned when using an engine after Close.
	ErrEngineClosed = errors.New("engine closed")

	// ErrEnqueuerNil is returned when a scheduler is created without an enqueuer.
	ErrEnqueuerNil = errors.New("enqueuer cannot be nil")

	// ErrInvalidScheduleName is returned when a schedule name is empty.
	ErrInvalidScheduleName = errors.New("schedule name cannot be empty")

	// ErrInvalidInterval is returned when a schedule interval is not positive.
	ErrInvalidInterval = errors.New("schedule interval must be positive")

	// ErrProducerNil is returned when a schedule has no data producer.
	ErrProducerNil = errors.New("data producer cannot be nil")

	// ErrInvalidSchedule is returned when a schedule is nil, never fires, or a cron expression cannot be parsed.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrSchedulerClosed is returned when adding schedules after Close.
	ErrSchedulerClosed = errors.New("scheduler closed")
)
