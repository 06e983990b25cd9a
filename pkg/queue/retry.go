package queue

import (
	"errors"
	"time"
)

// RetryDecision tells the engine what to do with a failed attempt.
type RetryDecision struct {
	Retry bool
	Delay time.Duration
}

// RetryPolicy decides whether a failed job becomes eligible again.
// The job passed in already has its attempt counted.
type RetryPolicy interface {
	Decide(job Job, err error) RetryDecision
}

// RetryPolicyFunc adapts a function to the RetryPolicy interface.
type RetryPolicyFunc func(job Job, err error) RetryDecision

func (f RetryPolicyFunc) Decide(job Job, err error) RetryDecision {
	return f(job, err)
}

// LinearRetry waits Base * attempts before the job becomes pending again.
// The delay grows linearly, not exponentially: 1x, 2x, 3x...
type LinearRetry struct {
	Base time.Duration
}

// NewLinearRetry creates a linear retry policy. Negative base delays are treated as zero.
func NewLinearRetry(base time.Duration) LinearRetry {
	return LinearRetry{Base: max(base, 0)}
}

func (p LinearRetry) Decide(job Job, err error) RetryDecision {
	if !retryable(err) || job.Attempts >= job.MaxAttempts {
		return RetryDecision{}
	}
	return RetryDecision{
		Retry: true,
		Delay: p.Base * time.Duration(job.Attempts),
	}
}

// retryable reports false for failures that would repeat on every attempt.
func retryable(err error) bool {
	return !errors.Is(err, ErrHandlerNotFound)
}
