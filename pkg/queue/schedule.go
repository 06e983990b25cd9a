package queue

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule determines when a recurring job is produced next.
// Next returns the zero time when the schedule never fires again.
type Schedule interface {
	Next(from time.Time) time.Time
	String() string
}

// intervalSchedule runs at fixed intervals.
type intervalSchedule struct {
	every time.Duration
}

func (s intervalSchedule) Next(from time.Time) time.Time {
	if s.every <= 0 {
		return time.Time{}
	}
	return from.Add(s.every)
}

func (s intervalSchedule) String() string {
	return fmt.Sprintf("every %v", s.every)
}

// dailySchedule runs once per day at the given wall clock time.
type dailySchedule struct {
	hour, minute int
}

func (s dailySchedule) Next(from time.Time) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), s.hour, s.minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s dailySchedule) String() string {
	return fmt.Sprintf("daily at %02d:%02d", s.hour, s.minute)
}

// cronSchedule delegates to a parsed cron expression.
type cronSchedule struct {
	expr  string
	sched cron.Schedule
}

func (s cronSchedule) Next(from time.Time) time.Time {
	return s.sched.Next(from)
}

func (s cronSchedule) String() string {
	return "cron " + s.expr
}

// cronParser accepts standard 5-field expressions and descriptors such as "@hourly" or "@every 90s".
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Every creates a schedule that runs at a fixed interval.
// A non-positive interval never fires and is rejected by ScheduleAt.
func Every(d time.Duration) Schedule {
	return intervalSchedule{every: d}
}

// DailyAt creates a schedule that runs every day at hour:minute local time.
func DailyAt(hour, minute int) Schedule {
	return dailySchedule{hour: hour, minute: minute}
}

// Cron parses a cron expression into a Schedule.
// Expressions that can never match, such as "0 0 30 2 *", are rejected.
func Cron(expr string) (Schedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, expr, err)
	}
	if sched.Next(time.Now()).IsZero() {
		return nil, fmt.Errorf("%w: %q never fires", ErrInvalidSchedule, expr)
	}
	return cronSchedule{expr: expr, sched: sched}, nil
}

// MustCron is like Cron but panics on an invalid expression.
func MustCron(expr string) Schedule {
	s, err := Cron(expr)
	if err != nil {
		panic(err)
	}
	return s
}

// advances reports whether next is a usable fire time after from.
func advances(from, next time.Time) bool {
	return !next.IsZero() && next.After(from)
}
