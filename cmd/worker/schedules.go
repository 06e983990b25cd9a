package main

import (
	"context"
	"time"

	"github.com/dmitrymomot/vocabq/pkg/queue"
)

const (
	scheduleCleanup   = "completed-jobs-cleanup"
	scheduleAnalytics = "daily-analytics"
	scheduleReminders = "streak-reminders"
)

func registerSchedules(s *queue.Scheduler, cfg Config) error {
	if err := s.Schedule(scheduleCleanup, JobCleanup, emptyPayload, cfg.CleanupInterval,
		queue.WithSchedulePriority(queue.PriorityLow),
		queue.WithScheduleMaxAttempts(1),
	); err != nil {
		return err
	}

	daily, err := queue.Cron(cfg.AnalyticsCron)
	if err != nil {
		return err
	}
	if err := s.ScheduleAt(scheduleAnalytics, JobAggregateAnalytics, previousDay, daily); err != nil {
		return err
	}

	return s.Schedule(scheduleReminders, JobPushNotification, streakReminder, cfg.ReminderEvery,
		queue.WithSchedulePriority(queue.PriorityHigh),
	)
}

func emptyPayload(context.Context) (any, error) {
	return struct{}{}, nil
}

// previousDay aggregates the last full day in UTC.
func previousDay(context.Context) (any, error) {
	day := time.Now().UTC().AddDate(0, 0, -1)
	return AnalyticsPayload{Day: day.Format(time.DateOnly)}, nil
}

// streakReminder produces the broadcast reminder. Targeting individual
// learners is done by the notification service itself.
func streakReminder(context.Context) (any, error) {
	return PushPayload{
		UserID: "broadcast:streak-at-risk",
		Title:  "Keep your streak alive",
		Body:   "A five minute review keeps today's words fresh.",
	}, nil
}
