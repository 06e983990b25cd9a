package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/vocabq/pkg/logger"
)

func TestError(t *testing.T) {
	attr := logger.Error(errors.New("boom"))
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, "boom", attr.Value.String())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestJobAttrs(t *testing.T) {
	id := uuid.New()

	attr := logger.JobID(id)
	assert.Equal(t, logger.KeyJobID, attr.Key)
	assert.Equal(t, id.String(), attr.Value.String())

	attr = logger.JobType("email.send")
	assert.Equal(t, "job_type", attr.Key)
	assert.Equal(t, "email.send", attr.Value.String())

	type tier string
	attr = logger.Priority(tier("critical"))
	assert.Equal(t, "priority", attr.Key)
	assert.Equal(t, "critical", attr.Value.String())

	attr = logger.Schedule("streak-reminders")
	assert.Equal(t, "schedule", attr.Key)
	assert.Equal(t, "streak-reminders", attr.Value.String())
}

func TestAttempt(t *testing.T) {
	attr := logger.Attempt(2, 3)
	require.Equal(t, "attempt", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())

	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "n", g[0].Key)
	assert.Equal(t, int64(2), g[0].Value.Int64())
	assert.Equal(t, "max", g[1].Key)
	assert.Equal(t, int64(3), g[1].Value.Int64())
}

func TestDurationAndCount(t *testing.T) {
	attr := logger.Duration(1500 * time.Millisecond)
	assert.Equal(t, "duration", attr.Key)
	assert.Equal(t, 1500*time.Millisecond, attr.Value.Duration())

	attr = logger.Count(7)
	assert.Equal(t, "count", attr.Key)
	assert.Equal(t, int64(7), attr.Value.Int64())

	attr = logger.Component("scheduler")
	assert.Equal(t, "component", attr.Key)
	assert.Equal(t, "scheduler", attr.Value.String())
}
