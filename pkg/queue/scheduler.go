package queue

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/vocabq/pkg/async"
	"github.com/dmitrymomot/vocabq/pkg/logger"
)

// Enqueuer is the part of the engine the scheduler depends on.
type Enqueuer interface {
	Add(jobType string, data any, opts ...EnqueueOption) (uuid.UUID, error)
}

// DataProducer builds the payload for one recurring job.
type DataProducer func(ctx context.Context) (any, error)

// Scheduler periodically materializes jobs from named data producers.
type Scheduler struct {
	enqueuer Enqueuer
	logger   *slog.Logger

	mu      sync.Mutex
	entries map[string]*scheduleEntry
	closed  bool
	wg      sync.WaitGroup
}

// scheduleEntry holds configuration for one named schedule.
type scheduleEntry struct {
	name        string
	jobType     string
	producer    DataProducer
	schedule    Schedule
	priority    Priority
	maxAttempts int
	cancel      context.CancelFunc
}

// NewScheduler creates a scheduler feeding jobs into enqueuer.
func NewScheduler(enqueuer Enqueuer, opts ...SchedulerOption) (*Scheduler, error) {
	if enqueuer == nil {
		return nil, ErrEnqueuerNil
	}

	// Default options
	options := &schedulerOptions{
		logger: slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		opt(options)
	}

	return &Scheduler{
		enqueuer: enqueuer,
		logger:   options.logger,
		entries:  make(map[string]*scheduleEntry),
	}, nil
}

// Schedule registers a job produced every interval. Scheduling an existing
// name cancels the previous schedule first.
func (s *Scheduler) Schedule(name, jobType string, producer DataProducer, interval time.Duration, opts ...ScheduleOption) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	return s.ScheduleAt(name, jobType, producer, Every(interval), opts...)
}

// ScheduleAt registers a job produced whenever schedule fires.
// With WithRunImmediately the producer also runs once before ScheduleAt returns.
func (s *Scheduler) ScheduleAt(name, jobType string, producer DataProducer, schedule Schedule, opts ...ScheduleOption) error {
	switch {
	case name == "":
		return ErrInvalidScheduleName
	case producer == nil:
		return ErrProducerNil
	case schedule == nil:
		return ErrInvalidSchedule
	}
	if now := time.Now(); !advances(now, schedule.Next(now)) {
		return fmt.Errorf("%w: %s never fires", ErrInvalidSchedule, schedule)
	}

	options := &scheduleOptions{
		priority: PriorityDefault,
	}
	for _, opt := range opts {
		opt(options)
	}

	ctx, cancel := context.WithCancel(context.Background())
	entry := &scheduleEntry{
		name:        name,
		jobType:     jobType,
		producer:    producer,
		schedule:    schedule,
		priority:    options.priority,
		maxAttempts: options.maxAttempts,
		cancel:      cancel,
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return ErrSchedulerClosed
	}
	if prev, ok := s.entries[name]; ok {
		prev.cancel()
		s.logger.Info("replacing recurring schedule", logger.Schedule(name))
	}
	s.entries[name] = entry
	s.wg.Add(1)
	s.mu.Unlock()

	go s.loop(ctx, entry)

	s.logger.Info("registered recurring schedule",
		logger.Schedule(name),
		logger.JobType(jobType),
		slog.String("every", schedule.String()),
		slog.Bool("run_immediately", options.runImmediately))

	if options.runImmediately {
		s.tick(ctx, entry)
	}

	return nil
}

// Unschedule cancels the named schedule. Jobs it already created are not affected.
func (s *Scheduler) Unschedule(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[name]
	if !ok {
		return false
	}
	entry.cancel()
	delete(s.entries, name)

	s.logger.Info("removed recurring schedule", logger.Schedule(name))
	return true
}

// UnscheduleAll cancels every schedule and returns how many were cancelled.
func (s *Scheduler) UnscheduleAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelAllLocked()
}

// Schedules returns the names of registered schedules sorted alphabetically.
func (s *Scheduler) Schedules() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Close cancels every schedule and waits for their goroutines to exit.
// The scheduler cannot be reused afterwards.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	s.closed = true
	n := s.cancelAllLocked()
	s.mu.Unlock()

	s.wg.Wait()

	s.logger.Info("scheduler closed", logger.Count(n))
	return nil
}

// Run returns a function suitable for errgroup that closes the scheduler when ctx is done.
func (s *Scheduler) Run(ctx context.Context) func() error {
	return func() error {
		<-ctx.Done()
		return s.Close()
	}
}

func (s *Scheduler) cancelAllLocked() int {
	n := len(s.entries)
	for name, entry := range s.entries {
		entry.cancel()
		delete(s.entries, name)
	}
	return n
}

// loop fires the entry on its schedule until the entry is cancelled.
// Ticks missed while a producer was running are skipped, not replayed.
func (s *Scheduler) loop(ctx context.Context, entry *scheduleEntry) {
	defer s.wg.Done()

	now := time.Now()
	next := entry.schedule.Next(now)
	if !advances(now, next) {
		s.expire(entry)
		return
	}
	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.tick(ctx, entry)

			now := time.Now()
			next = entry.schedule.Next(next)
			if !advances(now, next) {
				next = entry.schedule.Next(now)
			}
			if !advances(now, next) {
				s.expire(entry)
				return
			}
			timer.Reset(time.Until(next))
		}
	}
}

// expire drops an entry whose schedule has no future fire time.
func (s *Scheduler) expire(entry *scheduleEntry) {
	s.mu.Lock()
	if s.entries[entry.name] == entry {
		delete(s.entries, entry.name)
	}
	s.mu.Unlock()
	entry.cancel()

	s.logger.Warn("recurring schedule has no next run, removed",
		logger.Schedule(entry.name),
		logger.JobType(entry.jobType),
		slog.String("every", entry.schedule.String()))
}

// tick runs the producer and enqueues its data. Failures are logged and
// never cancel the schedule.
func (s *Scheduler) tick(ctx context.Context, entry *scheduleEntry) {
	data, err := async.Go(ctx, func(ctx context.Context) (any, error) {
		return entry.producer(ctx)
	}).Await()

	// Unscheduled while the producer was running
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.logger.Error("recurring job producer failed",
			logger.Schedule(entry.name),
			logger.JobType(entry.jobType),
			logger.Error(err))
		return
	}

	opts := []EnqueueOption{WithPriority(entry.priority)}
	if entry.maxAttempts > 0 {
		opts = append(opts, WithMaxAttempts(entry.maxAttempts))
	}

	id, err := s.enqueuer.Add(entry.jobType, data, opts...)
	if err != nil {
		s.logger.Error("failed to enqueue recurring job",
			logger.Schedule(entry.name),
			logger.JobType(entry.jobType),
			logger.Error(err))
		return
	}

	s.logger.Debug("recurring job enqueued",
		logger.Schedule(entry.name),
		logger.JobType(entry.jobType),
		logger.JobID(id))
}
