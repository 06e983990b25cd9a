// Package queue provides an in-process background job engine with priority
// tiers, a concurrency ceiling, per-job timeouts and linear retries.
//
// The package is organised around three main components:
//
//   - Engine: stores submitted jobs, dispatches them to handlers and records outcomes
//   - Registry: maps a job type to the Handler that executes it
//   - Scheduler: materializes recurring jobs from data producers on a timer
//
// Jobs live in a MemoryStore owned by the engine. Nothing is persisted: a
// process restart loses every job.
//
// # Lifecycle
//
// A job starts pending. The dispatcher picks the highest priority pending job
// (critical > high > normal > low, first in first out within a tier), marks
// it processing and counts the attempt. A successful handler completes the
// job. A failed or timed out attempt moves it to retrying when attempts
// remain; after Base * attempts it becomes pending again. The last attempt
// fails the job terminally. Jobs whose type has no handler fail on the first
// attempt.
//
// Priority is enforced at selection time only: a critical job never preempts
// work already in flight, and lower tiers may wait indefinitely under a
// sustained stream of higher priority jobs.
//
// # Usage
//
//	engine := queue.NewEngine(
//	    queue.WithConcurrency(10),
//	    queue.WithJobTimeout(15*time.Second),
//	    queue.WithLogger(log),
//	)
//
//	_ = engine.RegisterHandler("email.send", queue.NewHandler(
//	    func(ctx context.Context, p SendEmailPayload) (any, error) {
//	        return nil, mailer.Send(ctx, p.To, p.Template)
//	    },
//	))
//
//	id, err := engine.Add("email.send", SendEmailPayload{To: "ann@example.com"},
//	    queue.WithPriority(queue.PriorityHigh),
//	    queue.WithMaxAttempts(5),
//	)
//
//	job, ok := engine.GetJob(id)
//
// Recurring job:
//
//	s, _ := queue.NewScheduler(engine)
//	_ = s.Schedule("streak-reminders", "notification.push",
//	    func(ctx context.Context) (any, error) { return reminders.Due(ctx) },
//	    time.Hour,
//	    queue.WithRunImmediately(),
//	)
//
// # Timeouts
//
// A handler that does not return within the job timeout is treated like a
// failed attempt. Its context is cancelled, but the engine cannot stop a
// handler that ignores ctx: such a handler keeps running in the background
// after the engine has moved on.
//
// # Introspection
//
// Engine.Stats returns job counts per status together with the number of
// handlers in flight. Metrics is an Observer exporting lifecycle counters to
// Prometheus; NewStatsCollector exposes the Stats snapshot on every scrape.
//
// # Error Handling
//
// Package-level sentinel errors (e.g. ErrHandlerNotFound, ErrJobTimeout) are
// recorded on failed jobs and returned by the API; check them with errors.Is.
package queue
