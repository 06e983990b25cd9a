package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/vocabq/pkg/httpserver"
	"github.com/dmitrymomot/vocabq/pkg/logger"
	"github.com/dmitrymomot/vocabq/pkg/queue"
	"github.com/dmitrymomot/vocabq/pkg/requestid"
)

// newRouter serves the ops endpoints. None of them enqueue work.
func newRouter(engine *queue.Engine, gatherer prometheus.Gatherer, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware(), middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", httpserver.HealthCheckHandler(log))
	r.Get("/readyz", httpserver.HealthCheckHandler(log, engineRunning(engine)))

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, http.StatusOK, engine.Stats())
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", listJobs(engine, log))
		r.Get("/{id}", getJob(engine, log))
	})

	return r
}

func engineRunning(engine *queue.Engine) func(context.Context) error {
	return func(context.Context) error {
		if !engine.Running() {
			return queue.ErrEngineNotStarted
		}
		return nil
	}
}

// listJobs returns every job, or only those in the status given by ?status=.
func listJobs(engine *queue.Engine, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := queue.Status(r.URL.Query().Get("status"))
		if status == "" {
			writeJSON(w, log, http.StatusOK, engine.GetAllJobs())
			return
		}
		if !status.Valid() {
			writeError(w, log, http.StatusBadRequest, "unknown status "+string(status))
			return
		}

		jobs := engine.GetJobsByStatus(status)
		if jobs == nil {
			jobs = []queue.Job{}
		}
		writeJSON(w, log, http.StatusOK, jobs)
	}
}

func getJob(engine *queue.Engine, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, log, http.StatusBadRequest, "invalid job id")
			return
		}

		job, ok := engine.GetJob(id)
		if !ok {
			writeError(w, log, http.StatusNotFound, queue.ErrJobNotFound.Error())
			return
		}
		writeJSON(w, log, http.StatusOK, job)
	}
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response", logger.Error(err), logger.Component("http"))
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, msg string) {
	writeJSON(w, log, status, map[string]string{"error": msg})
}
