package queue

import "time"

// Observer receives job lifecycle events from the engine.
// Calls happen on engine goroutines and must not block. Reading engine
// state such as Stats or Running from a callback is safe.
type Observer interface {
	JobEnqueued(job Job)
	JobStarted(job Job)
	JobCompleted(job Job, duration time.Duration)
	JobRetrying(job Job, delay time.Duration)
	JobFailed(job Job, duration time.Duration)
}

type noopObserver struct{}

func (noopObserver) JobEnqueued(Job)                 {}
func (noopObserver) JobStarted(Job)                  {}
func (noopObserver) JobCompleted(Job, time.Duration) {}
func (noopObserver) JobRetrying(Job, time.Duration)  {}
func (noopObserver) JobFailed(Job, time.Duration)    {}
