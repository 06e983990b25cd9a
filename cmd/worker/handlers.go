package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/dmitrymomot/vocabq/pkg/logger"
	"github.com/dmitrymomot/vocabq/pkg/queue"
)

// Job types handled by the worker.
const (
	JobSendEmail          = "email.send"
	JobPushNotification   = "notification.push"
	JobAggregateAnalytics = "analytics.aggregate"
	JobCleanup            = "jobs.cleanup"
)

var errInvalidPayload = errors.New("invalid payload")

type (
	// EmailPayload asks for a templated email, e.g. a welcome message or a weekly digest.
	EmailPayload struct {
		To       string         `json:"to"`
		Template string         `json:"template"`
		Locale   string         `json:"locale,omitempty"`
		Vars     map[string]any `json:"vars,omitempty"`
	}

	// PushPayload is a mobile push notification for one learner.
	PushPayload struct {
		UserID string `json:"user_id"`
		Title  string `json:"title"`
		Body   string `json:"body"`
	}

	// AnalyticsPayload selects the day whose learning activity is aggregated.
	AnalyticsPayload struct {
		Day string `json:"day"`
	}

	AnalyticsResult struct {
		Day        string    `json:"day"`
		Aggregated time.Time `json:"aggregated_at"`
	}

	CleanupResult struct {
		Removed int `json:"removed"`
	}
)

// registerHandlers wires the job handlers. Delivery is simulated with log
// records; real providers plug in behind the same job types.
func registerHandlers(engine *queue.Engine, log *slog.Logger) error {
	handlers := map[string]queue.Handler{
		JobSendEmail:          queue.NewHandler(sendEmail(log)),
		JobPushNotification:   queue.NewHandler(pushNotification(log)),
		JobAggregateAnalytics: queue.NewHandler(aggregateAnalytics(log)),
		JobCleanup:            queue.NewHandler(cleanupCompleted(engine, log)),
	}

	for jobType, h := range handlers {
		if err := engine.RegisterHandler(jobType, h); err != nil {
			return err
		}
	}
	return nil
}

func sendEmail(log *slog.Logger) queue.TypedHandlerFunc[EmailPayload, any] {
	return func(ctx context.Context, p EmailPayload) (any, error) {
		if _, err := mail.ParseAddress(p.To); err != nil {
			return nil, fmt.Errorf("%w: recipient %q: %w", errInvalidPayload, p.To, err)
		}
		if p.Template == "" {
			return nil, fmt.Errorf("%w: template is required", errInvalidPayload)
		}

		log.InfoContext(ctx, "email dispatched",
			slog.String("to", p.To),
			slog.String("template", p.Template),
			slog.String("locale", p.Locale))
		return nil, nil
	}
}

func pushNotification(log *slog.Logger) queue.TypedHandlerFunc[PushPayload, map[string]int] {
	return func(ctx context.Context, p PushPayload) (map[string]int, error) {
		if p.UserID == "" {
			return nil, fmt.Errorf("%w: user_id is required", errInvalidPayload)
		}

		log.InfoContext(ctx, "push notification sent",
			slog.String("user_id", p.UserID),
			slog.String("title", p.Title))
		return map[string]int{"delivered": 1}, nil
	}
}

func aggregateAnalytics(log *slog.Logger) queue.TypedHandlerFunc[AnalyticsPayload, AnalyticsResult] {
	return func(ctx context.Context, p AnalyticsPayload) (AnalyticsResult, error) {
		if _, err := time.Parse(time.DateOnly, p.Day); err != nil {
			return AnalyticsResult{}, fmt.Errorf("%w: day %q: %w", errInvalidPayload, p.Day, err)
		}
		if err := ctx.Err(); err != nil {
			return AnalyticsResult{}, err
		}

		log.InfoContext(ctx, "learning analytics aggregated", slog.String("day", p.Day))
		return AnalyticsResult{Day: p.Day, Aggregated: time.Now().UTC()}, nil
	}
}

// cleanupCompleted drops completed jobs so the in-memory store does not grow without bound.
func cleanupCompleted(engine *queue.Engine, log *slog.Logger) queue.TypedHandlerFunc[struct{}, CleanupResult] {
	return func(ctx context.Context, _ struct{}) (CleanupResult, error) {
		n := engine.ClearCompleted()
		log.InfoContext(ctx, "completed jobs cleared", logger.Count(n))
		return CleanupResult{Removed: n}, nil
	}
}
