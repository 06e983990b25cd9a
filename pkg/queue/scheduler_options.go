package queue

import "log/slog"

// SchedulerOption is a functional option for configuring a scheduler.
type SchedulerOption func(*schedulerOptions)

type schedulerOptions struct {
	logger *slog.Logger
}

// WithSchedulerLogger sets the logger for the scheduler.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(o *schedulerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// ScheduleOption is a functional option for configuring a single schedule.
type ScheduleOption func(*scheduleOptions)

type scheduleOptions struct {
	priority       Priority
	maxAttempts    int
	runImmediately bool
}

// WithSchedulePriority sets the priority of jobs produced by the schedule.
func WithSchedulePriority(p Priority) ScheduleOption {
	return func(o *scheduleOptions) {
		if p.Valid() {
			o.priority = p
		}
	}
}

// WithScheduleMaxAttempts sets the attempt ceiling of jobs produced by the schedule (1-100).
func WithScheduleMaxAttempts(n int) ScheduleOption {
	return func(o *scheduleOptions) {
		if n >= 1 && n <= maxAttemptsLimit {
			o.maxAttempts = n
		}
	}
}

// WithRunImmediately produces one job at registration in addition to the scheduled ones.
func WithRunImmediately() ScheduleOption {
	return func(o *scheduleOptions) {
		o.runImmediately = true
	}
}
