package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/vocabq/pkg/logger"
	"github.com/dmitrymomot/vocabq/pkg/queue"
)

func newWorkerEngine(t *testing.T, opts ...queue.EngineOption) *queue.Engine {
	t.Helper()

	base := []queue.EngineOption{
		queue.WithLogger(logger.Discard()),
		queue.WithRetryBaseDelay(time.Millisecond),
	}
	engine := queue.NewEngine(append(base, opts...)...)
	t.Cleanup(func() { _ = engine.Close() })

	require.NoError(t, registerHandlers(engine, logger.Discard()))
	return engine
}

func waitTerminal(t *testing.T, engine *queue.Engine, id uuid.UUID) queue.Job {
	t.Helper()

	require.Eventually(t, func() bool {
		job, ok := engine.GetJob(id)
		return ok && job.Status.Terminal()
	}, 2*time.Second, 5*time.Millisecond)

	job, _ := engine.GetJob(id)
	return job
}

func TestRegisterHandlers(t *testing.T) {
	t.Parallel()

	engine := newWorkerEngine(t)
	assert.Equal(t, []string{JobAggregateAnalytics, JobSendEmail, JobCleanup, JobPushNotification}, engine.RegisteredTypes())

	assert.ErrorIs(t, registerHandlers(engine, logger.Discard()), queue.ErrHandlerAlreadyRegistered)
}

func TestSendEmail(t *testing.T) {
	t.Parallel()

	engine := newWorkerEngine(t)

	t.Run("valid email", func(t *testing.T) {
		t.Parallel()

		id, err := engine.Add(JobSendEmail, EmailPayload{To: "learner@example.com", Template: "welcome", Locale: "de"})
		require.NoError(t, err)

		job := waitTerminal(t, engine, id)
		assert.Equal(t, queue.StatusCompleted, job.Status)
		assert.Nil(t, job.Result)
	})

	t.Run("bad recipient exhausts its attempts", func(t *testing.T) {
		t.Parallel()

		id, err := engine.Add(JobSendEmail, EmailPayload{To: "not-an-address", Template: "welcome"}, queue.WithMaxAttempts(2))
		require.NoError(t, err)

		job := waitTerminal(t, engine, id)
		assert.Equal(t, queue.StatusFailed, job.Status)
		assert.Equal(t, 2, job.Attempts)
		require.NotNil(t, job.Error)
		assert.Contains(t, *job.Error, "invalid payload")
	})

	t.Run("missing template", func(t *testing.T) {
		t.Parallel()

		id, err := engine.Add(JobSendEmail, EmailPayload{To: "learner@example.com"}, queue.WithMaxAttempts(1))
		require.NoError(t, err)

		job := waitTerminal(t, engine, id)
		assert.Equal(t, queue.StatusFailed, job.Status)
	})
}

func TestPushNotification(t *testing.T) {
	t.Parallel()

	engine := newWorkerEngine(t)
	id, err := engine.Add(JobPushNotification, PushPayload{UserID: "u-42", Title: "Review time"}, queue.WithPriority(queue.PriorityHigh))
	require.NoError(t, err)

	job := waitTerminal(t, engine, id)
	assert.Equal(t, queue.StatusCompleted, job.Status)
	assert.JSONEq(t, `{"delivered":1}`, string(job.Result))
}

func TestAggregateAnalytics(t *testing.T) {
	t.Parallel()

	engine := newWorkerEngine(t)

	id, err := engine.Add(JobAggregateAnalytics, AnalyticsPayload{Day: "2024-03-09"})
	require.NoError(t, err)
	job := waitTerminal(t, engine, id)
	require.Equal(t, queue.StatusCompleted, job.Status)

	var res AnalyticsResult
	require.NoError(t, json.Unmarshal(job.Result, &res))
	assert.Equal(t, "2024-03-09", res.Day)
	assert.False(t, res.Aggregated.IsZero())

	badID, err := engine.Add(JobAggregateAnalytics, AnalyticsPayload{Day: "yesterday"}, queue.WithMaxAttempts(1))
	require.NoError(t, err)
	assert.Equal(t, queue.StatusFailed, waitTerminal(t, engine, badID).Status)
}

func TestCleanupCompleted(t *testing.T) {
	t.Parallel()

	engine := newWorkerEngine(t)

	for range 3 {
		id, err := engine.Add(JobPushNotification, PushPayload{UserID: "u-1"})
		require.NoError(t, err)
		waitTerminal(t, engine, id)
	}

	id, err := engine.Add(JobCleanup, struct{}{})
	require.NoError(t, err)

	job := waitTerminal(t, engine, id)
	require.Equal(t, queue.StatusCompleted, job.Status)
	assert.JSONEq(t, `{"removed":3}`, string(job.Result))

	// the cleanup job itself is left for the next round
	all := engine.GetAllJobs()
	require.Len(t, all, 1)
	assert.Equal(t, id, all[0].ID)
}

func TestJobInfoExtractor(t *testing.T) {
	t.Parallel()

	_, ok := jobInfoExtractor(context.Background())
	assert.False(t, ok)

	buf := &bytes.Buffer{}
	log := logger.New(logger.WithOutput(buf), logger.WithContextExtractors(jobInfoExtractor))

	engine := queue.NewEngine(queue.WithLogger(logger.Discard()))
	t.Cleanup(func() { _ = engine.Close() })
	require.NoError(t, engine.RegisterHandler(JobPushNotification, queue.NewHandler(pushNotification(log))))

	id, err := engine.Add(JobPushNotification, PushPayload{UserID: "u-7", Title: "hi"})
	require.NoError(t, err)
	require.Equal(t, queue.StatusCompleted, waitTerminal(t, engine, id).Status)

	var entry struct {
		Msg string `json:"msg"`
		Job struct {
			ID      string `json:"id"`
			Type    string `json:"type"`
			Attempt int    `json:"attempt"`
		} `json:"job"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "push notification sent", entry.Msg)
	assert.Equal(t, id.String(), entry.Job.ID)
	assert.Equal(t, JobPushNotification, entry.Job.Type)
	assert.Equal(t, 1, entry.Job.Attempt)
}
