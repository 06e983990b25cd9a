package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/dmitrymomot/vocabq/pkg/async"
	"github.com/dmitrymomot/vocabq/pkg/logger"
)

// Engine accepts jobs, dispatches them to registered handlers by priority
// and records the outcome of every attempt.
type Engine struct {
	store    *MemoryStore
	registry *Registry
	retry    RetryPolicy
	observer Observer
	logger   *slog.Logger

	// Configuration
	concurrency        int
	jobTimeout         time.Duration
	shutdownTimeout    time.Duration
	defaultMaxAttempts int
	defaultPriority    Priority
	autoStart          bool

	// sem bounds the number of executing jobs, wake nudges the dispatch loop
	sem  *semaphore.Weighted
	wake chan struct{}

	// Dispatch loop state
	mu       sync.Mutex
	cancel   context.CancelFunc
	loopDone chan struct{}
	closed   bool

	// In-flight tracking; idle is closed whenever nothing is in flight
	flightMu sync.Mutex
	inFlight map[uuid.UUID]struct{}
	idle     chan struct{}

	// Pending retry timers keyed by job id
	timersMu sync.Mutex
	timers   map[uuid.UUID]*time.Timer
}

// NewEngine creates a new job engine. The dispatch loop is not started.
func NewEngine(opts ...EngineOption) *Engine {
	// Default options
	options := &engineOptions{
		concurrency:        5,
		jobTimeout:         30 * time.Second,
		shutdownTimeout:    30 * time.Second,
		retryPolicy:        NewLinearRetry(time.Second),
		defaultMaxAttempts: 3,
		defaultPriority:    PriorityDefault,
		autoStart:          true,
		observer:           noopObserver{},
		logger:             slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		opt(options)
	}

	if options.store == nil {
		options.store = NewMemoryStore()
	}
	if options.registry == nil {
		options.registry = NewRegistry()
	}

	idle := make(chan struct{})
	close(idle)

	return &Engine{
		store:              options.store,
		registry:           options.registry,
		retry:              options.retryPolicy,
		observer:           options.observer,
		logger:             options.logger,
		concurrency:        options.concurrency,
		jobTimeout:         options.jobTimeout,
		shutdownTimeout:    options.shutdownTimeout,
		defaultMaxAttempts: options.defaultMaxAttempts,
		defaultPriority:    options.defaultPriority,
		autoStart:          options.autoStart,
		sem:                semaphore.NewWeighted(int64(options.concurrency)),
		wake:               make(chan struct{}, 1),
		inFlight:           make(map[uuid.UUID]struct{}),
		idle:               idle,
		timers:             make(map[uuid.UUID]*time.Timer),
	}
}

// RegisterHandler registers the handler for a job type.
func (e *Engine) RegisterHandler(jobType string, h Handler) error {
	return e.registry.Register(jobType, h)
}

// RegisterHandlerFunc registers a plain function as the handler for a job type.
func (e *Engine) RegisterHandlerFunc(jobType string, fn func(ctx context.Context, data json.RawMessage) (any, error)) error {
	if fn == nil {
		return ErrInvalidHandler
	}
	return e.registry.Register(jobType, HandlerFunc(fn))
}

// RegisteredTypes returns the job types that have a handler, sorted alphabetically.
func (e *Engine) RegisteredTypes() []string {
	return e.registry.Types()
}

// Add submits a job and returns its id without waiting for execution.
// The payload is encoded to JSON; json.RawMessage values are stored as is.
// With auto start enabled, Add starts the dispatch loop if it is not running.
func (e *Engine) Add(jobType string, data any, opts ...EnqueueOption) (uuid.UUID, error) {
	if e.isClosed() {
		return uuid.Nil, ErrEngineClosed
	}

	options := &enqueueOptions{
		priority:    e.defaultPriority,
		maxAttempts: e.defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(options)
	}

	payload, err := encodeJSON(data)
	if err != nil {
		return uuid.Nil, errors.Join(ErrPayloadMarshal, fmt.Errorf("payload of type %T: %w", data, err))
	}

	job := Job{
		ID:          uuid.New(),
		Type:        jobType,
		Data:        payload,
		Priority:    options.priority,
		Status:      StatusPending,
		MaxAttempts: options.maxAttempts,
		CreatedAt:   time.Now(),
	}
	if err := e.store.Insert(job); err != nil {
		return uuid.Nil, fmt.Errorf("failed to store job %q: %w", jobType, err)
	}

	e.observer.JobEnqueued(job)
	e.logger.Debug("job enqueued",
		logger.JobID(job.ID),
		logger.JobType(job.Type),
		logger.Priority(job.Priority),
		slog.Int("max_attempts", job.MaxAttempts))

	if e.autoStart {
		if err := e.Start(); err != nil && !errors.Is(err, ErrEngineAlreadyStarted) {
			e.logger.Error("failed to auto start engine", logger.Error(err))
		}
	}
	e.signal()

	return job.ID, nil
}

// Start launches the dispatch loop in the background.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if e.cancel != nil {
		return ErrEngineAlreadyStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.loopDone = make(chan struct{})

	go e.dispatch(ctx, e.loopDone)

	e.logger.Info("job engine started",
		slog.Int("concurrency", e.concurrency),
		slog.Duration("job_timeout", e.jobTimeout))

	return nil
}

// Stop halts dispatching of new jobs. Jobs already in flight keep running
// and record their outcome; use Wait to block until they finish.
func (e *Engine) Stop() error {
	e.mu.Lock()
	cancel, loopDone := e.cancel, e.loopDone
	e.cancel = nil
	e.loopDone = nil
	e.mu.Unlock()

	if cancel == nil {
		return ErrEngineNotStarted
	}

	// mu is released: the loop may be inside an observer calling Stats
	cancel()
	<-loopDone

	e.logger.Info("job engine stopped", slog.Int("in_flight", e.inFlightCount()))

	return nil
}

// Wait blocks until no job is in flight or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	e.flightMu.Lock()
	idle := e.idle
	e.flightMu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the engine and returns a function suitable for errgroup.
// When ctx is done the engine stops and waits up to the shutdown timeout
// for in-flight jobs.
func (e *Engine) Run(ctx context.Context) func() error {
	return func() error {
		if err := e.Start(); err != nil && !errors.Is(err, ErrEngineAlreadyStarted) {
			return err
		}

		<-ctx.Done()

		if err := e.Stop(); err != nil && !errors.Is(err, ErrEngineNotStarted) {
			return err
		}

		waitCtx, cancel := context.WithTimeout(context.Background(), e.shutdownTimeout)
		defer cancel()

		if err := e.Wait(waitCtx); err != nil {
			e.logger.Warn("shutdown timeout reached with jobs in flight",
				slog.Int("in_flight", e.inFlightCount()))
			return fmt.Errorf("waiting for in-flight jobs: %w", err)
		}
		return nil
	}
}

// Close stops the engine, cancels pending retry timers and rejects further submissions.
// Jobs waiting for a retry stay in the retrying status.
func (e *Engine) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	if err := e.Stop(); err != nil && !errors.Is(err, ErrEngineNotStarted) {
		return err
	}

	e.timersMu.Lock()
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
	e.timers = nil
	e.timersMu.Unlock()

	return nil
}

// Running reports whether the dispatch loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancel != nil
}

// GetJob returns a snapshot of the job with the given id.
func (e *Engine) GetJob(id uuid.UUID) (Job, bool) {
	return e.store.Get(id)
}

// GetAllJobs returns snapshots of every known job.
func (e *Engine) GetAllJobs() []Job {
	return e.store.All()
}

// GetJobsByStatus returns snapshots of jobs in the given status.
func (e *Engine) GetJobsByStatus(status Status) []Job {
	return e.store.ByStatus(status)
}

// ClearCompleted removes completed jobs and returns how many were removed.
func (e *Engine) ClearCompleted() int {
	n := e.store.ClearCompleted()
	if n > 0 {
		e.logger.Debug("cleared completed jobs", logger.Count(n))
	}
	return n
}

// dispatch is the main loop. It blocks on the concurrency semaphore when
// saturated and on the wake channel when no job is pending.
func (e *Engine) dispatch(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			return
		}
		// Acquire may succeed on a cancelled context
		if ctx.Err() != nil {
			e.sem.Release(1)
			return
		}

		job, ok := e.store.ClaimNext()
		if !ok {
			e.sem.Release(1)
			select {
			case <-ctx.Done():
				return
			case <-e.wake:
			}
			continue
		}

		e.trackStart(job.ID)
		e.observer.JobStarted(job)
		e.logger.Debug("job dispatched",
			logger.JobID(job.ID),
			logger.JobType(job.Type),
			logger.Priority(job.Priority),
			logger.Attempt(job.Attempts, job.MaxAttempts))

		go e.execute(job)
	}
}

// execute runs one attempt and records its outcome.
func (e *Engine) execute(job Job) {
	start := time.Now()
	result, err := e.invoke(job)
	duration := time.Since(start)

	if err != nil {
		e.handleFailure(job, err, duration)
	} else {
		e.handleSuccess(job, result, duration)
	}

	e.trackDone(job.ID)
	e.sem.Release(1)
	e.signal()
}

// invoke calls the handler and races it against the job timeout.
// On timeout the handler context is cancelled, but a handler that ignores
// its context keeps running detached from the engine.
func (e *Engine) invoke(job Job) (json.RawMessage, error) {
	h, ok := e.registry.Lookup(job.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, job.Type)
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.jobTimeout)
	defer cancel()
	ctx = withJobInfo(ctx, job)

	future := async.Go(ctx, func(ctx context.Context) (any, error) {
		return h.Handle(ctx, job.Data)
	})

	res, err := future.AwaitContext(ctx)
	switch {
	case errors.Is(err, async.ErrPanic):
		return nil, fmt.Errorf("%w: %w", ErrHandlerPanic, err)
	case err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("%w after %s", ErrJobTimeout, e.jobTimeout)
	case err != nil:
		return nil, err
	}

	raw, err := encodeJSON(res)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResultMarshal, err)
	}
	return raw, nil
}

func (e *Engine) handleSuccess(job Job, result json.RawMessage, duration time.Duration) {
	completed, err := e.store.Complete(job.ID, result)
	if err != nil {
		e.logger.Error("failed to mark job as completed",
			logger.JobID(job.ID),
			logger.Error(err))
		return
	}

	e.observer.JobCompleted(completed, duration)
	e.logger.Info("job completed",
		logger.JobID(job.ID),
		logger.JobType(job.Type),
		logger.Attempt(job.Attempts, job.MaxAttempts),
		logger.Duration(duration))
}

// handleFailure asks the retry policy what to do with a failed attempt.
// Missing handlers are terminal whatever the policy says.
func (e *Engine) handleFailure(job Job, execErr error, duration time.Duration) {
	decision := e.retry.Decide(job, execErr)
	retry := decision.Retry && retryable(execErr)

	updated, err := e.store.Fail(job.ID, execErr.Error(), retry)
	if err != nil {
		e.logger.Error("failed to record job failure",
			logger.JobID(job.ID),
			logger.Error(err))
		return
	}

	if updated.Status == StatusRetrying {
		e.observer.JobRetrying(updated, decision.Delay)
		e.logger.Warn("job failed, retry scheduled",
			logger.JobID(job.ID),
			logger.JobType(job.Type),
			logger.Attempt(updated.Attempts, updated.MaxAttempts),
			slog.Duration("retry_in", decision.Delay),
			logger.Error(execErr))
		e.scheduleRetry(updated.ID, decision.Delay)
		return
	}

	e.observer.JobFailed(updated, duration)
	e.logger.Error("job failed",
		logger.JobID(job.ID),
		logger.JobType(job.Type),
		logger.Attempt(updated.Attempts, updated.MaxAttempts),
		logger.Duration(duration),
		logger.Error(execErr))
}

// scheduleRetry moves the job back to pending once delay has elapsed,
// unless it was removed from the store in the meantime.
func (e *Engine) scheduleRetry(id uuid.UUID, delay time.Duration) {
	e.timersMu.Lock()
	defer e.timersMu.Unlock()

	if e.timers == nil {
		return
	}

	e.timers[id] = time.AfterFunc(delay, func() {
		e.timersMu.Lock()
		if e.timers != nil {
			delete(e.timers, id)
		}
		e.timersMu.Unlock()

		if e.store.Requeue(id) {
			e.logger.Debug("job requeued for retry", logger.JobID(id))
			e.signal()
		}
	})
}

// signal wakes the dispatch loop without blocking.
func (e *Engine) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Engine) trackStart(id uuid.UUID) {
	e.flightMu.Lock()
	defer e.flightMu.Unlock()

	if len(e.inFlight) == 0 {
		e.idle = make(chan struct{})
	}
	e.inFlight[id] = struct{}{}
}

func (e *Engine) trackDone(id uuid.UUID) {
	e.flightMu.Lock()
	defer e.flightMu.Unlock()

	delete(e.inFlight, id)
	if len(e.inFlight) == 0 {
		close(e.idle)
	}
}

func (e *Engine) inFlightCount() int {
	e.flightMu.Lock()
	defer e.flightMu.Unlock()
	return len(e.inFlight)
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// encodeJSON marshals v, passing raw JSON through untouched.
func encodeJSON(v any) (json.RawMessage, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return slices.Clone(t), nil
	}
	return json.Marshal(v)
}
