package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/vocabq/pkg/queue"
)

type reviewPayload struct {
	UserID string   `json:"user_id"`
	Words  []string `json:"words"`
}

type reviewResult struct {
	Scheduled int `json:"scheduled"`
}

func TestNewHandler(t *testing.T) {
	t.Parallel()

	h := queue.NewHandler(func(_ context.Context, p reviewPayload) (reviewResult, error) {
		return reviewResult{Scheduled: len(p.Words)}, nil
	})

	t.Run("decodes payload", func(t *testing.T) {
		t.Parallel()

		res, err := h.Handle(context.Background(), json.RawMessage(`{"user_id":"u1","words":["serendipity","ubiquitous"]}`))
		require.NoError(t, err)
		assert.Equal(t, reviewResult{Scheduled: 2}, res)
	})

	t.Run("empty payload gives zero value", func(t *testing.T) {
		t.Parallel()

		res, err := h.Handle(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, reviewResult{}, res)
	})

	t.Run("invalid payload", func(t *testing.T) {
		t.Parallel()

		_, err := h.Handle(context.Background(), json.RawMessage(`{"words":"not-a-list"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode payload")
	})

	t.Run("handler error is returned", func(t *testing.T) {
		t.Parallel()

		errBoom := errors.New("boom")
		failing := queue.NewHandler(func(context.Context, reviewPayload) (any, error) {
			return nil, errBoom
		})

		_, err := failing.Handle(context.Background(), json.RawMessage(`{}`))
		assert.ErrorIs(t, err, errBoom)
	})
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	noop := queue.HandlerFunc(func(context.Context, json.RawMessage) (any, error) {
		return nil, nil
	})

	t.Run("register and lookup", func(t *testing.T) {
		t.Parallel()

		r := queue.NewRegistry()
		require.NoError(t, r.Register("email.send", noop))

		h, ok := r.Lookup("email.send")
		require.True(t, ok)
		assert.NotNil(t, h)

		_, ok = r.Lookup("sms.send")
		assert.False(t, ok)
	})

	t.Run("duplicate registration is rejected", func(t *testing.T) {
		t.Parallel()

		r := queue.NewRegistry()
		require.NoError(t, r.Register("email.send", noop))

		err := r.Register("email.send", noop)
		assert.ErrorIs(t, err, queue.ErrHandlerAlreadyRegistered)
		assert.Contains(t, err.Error(), "email.send")
	})

	t.Run("replace overwrites", func(t *testing.T) {
		t.Parallel()

		r := queue.NewRegistry()
		require.NoError(t, r.Register("email.send", noop))

		replacement := queue.HandlerFunc(func(context.Context, json.RawMessage) (any, error) {
			return "replaced", nil
		})
		require.NoError(t, r.Replace("email.send", replacement))

		h, ok := r.Lookup("email.send")
		require.True(t, ok)
		res, err := h.Handle(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, "replaced", res)
	})

	t.Run("invalid registrations", func(t *testing.T) {
		t.Parallel()

		r := queue.NewRegistry()
		assert.ErrorIs(t, r.Register("", noop), queue.ErrInvalidHandler)
		assert.ErrorIs(t, r.Register("email.send", nil), queue.ErrInvalidHandler)
		assert.ErrorIs(t, r.Replace("", noop), queue.ErrInvalidHandler)
	})

	t.Run("types are sorted", func(t *testing.T) {
		t.Parallel()

		r := queue.NewRegistry()
		for _, jt := range []string{"notification.push", "analytics.aggregate", "email.send"} {
			require.NoError(t, r.Register(jt, noop))
		}
		assert.Equal(t, []string{"analytics.aggregate", "email.send", "notification.push"}, r.Types())
	})
}
