package httpserver_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/vocabq/pkg/httpserver"
)

func localListener(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

func runServer(t *testing.T, srv *httpserver.Server, handler http.Handler) (context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, handler) }()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, time.Second, 5*time.Millisecond)
	t.Cleanup(cancel)
	return cancel, done
}

func TestServer_RunAndShutdown(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(
		httpserver.WithListener(localListener(t)),
		httpserver.WithShutdownTimeout(100*time.Millisecond),
	)
	cancel, done := runServer(t, srv, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	}))

	resp, err := http.Get("http://" + srv.Addr().String())
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "run did not finish")
	}
}

func TestServer_RunTwice(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithListener(localListener(t)))
	runServer(t, srv, nil)

	err := srv.Run(context.Background(), nil)
	assert.ErrorIs(t, err, httpserver.ErrStart)
	assert.ErrorIs(t, err, httpserver.ErrAlreadyRunning)
}

func TestServer_ListenError(t *testing.T) {
	t.Parallel()

	busy := localListener(t)
	t.Cleanup(func() { _ = busy.Close() })

	srv := httpserver.New(httpserver.WithAddr(busy.Addr().String()))
	err := srv.Run(context.Background(), nil)
	assert.ErrorIs(t, err, httpserver.ErrStart)
}

func TestServer_NilHandlerServesNotFound(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithListener(localListener(t)))
	runServer(t, srv, nil)

	resp, err := http.Get("http://" + srv.Addr().String() + "/anything")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOptionsPanicOnInvalidValues(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { httpserver.WithAddr("") })
	assert.Panics(t, func() { httpserver.WithListener(nil) })
	assert.Panics(t, func() { httpserver.WithReadTimeout(0) })
	assert.Panics(t, func() { httpserver.WithWriteTimeout(-time.Second) })
	assert.Panics(t, func() { httpserver.WithIdleTimeout(0) })
	assert.Panics(t, func() { httpserver.WithShutdownTimeout(0) })
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	ln := localListener(t)
	srv := httpserver.NewFromConfig(httpserver.Config{
		Addr:            "127.0.0.1:1",
		ReadTimeout:     time.Second,
		ShutdownTimeout: 50 * time.Millisecond,
	}, httpserver.WithListener(ln))

	runServer(t, srv, nil)
	assert.Equal(t, ln.Addr().String(), srv.Addr().String(), "listener option wins over the configured addr")
}

func TestHealthCheckHandler(t *testing.T) {
	t.Parallel()

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		httpserver.HealthCheckHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ALIVE", rec.Body.String())
	})

	t.Run("ready", func(t *testing.T) {
		t.Parallel()

		ok := func(context.Context) error { return nil }
		rec := httptest.NewRecorder()
		httpserver.HealthCheckHandler(nil, ok, ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "READY", rec.Body.String())
	})

	t.Run("not ready", func(t *testing.T) {
		t.Parallel()

		var calledSecond bool
		failing := func(context.Context) error { return errors.New("engine stopped") }
		second := func(context.Context) error { calledSecond = true; return nil }

		rec := httptest.NewRecorder()
		httpserver.HealthCheckHandler(nil, failing, second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "NOT_READY", rec.Body.String())
		assert.False(t, calledSecond)
	})

	t.Run("checks receive the request context", func(t *testing.T) {
		t.Parallel()

		type key struct{}
		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		req = req.WithContext(context.WithValue(req.Context(), key{}, "probe"))

		var got any
		check := func(ctx context.Context) error { got = ctx.Value(key{}); return nil }
		httpserver.HealthCheckHandler(nil, check).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "probe", got)
	})
}
