package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
)

type (
	// Handler executes jobs of one type. The returned value becomes the job result.
	Handler interface {
		Handle(ctx context.Context, data json.RawMessage) (any, error)
	}

	// HandlerFunc adapts a plain function to the Handler interface.
	HandlerFunc func(ctx context.Context, data json.RawMessage) (any, error)

	// TypedHandlerFunc receives the payload decoded into T.
	TypedHandlerFunc[T, R any] func(ctx context.Context, payload T) (R, error)
)

func (f HandlerFunc) Handle(ctx context.Context, data json.RawMessage) (any, error) {
	return f(ctx, data)
}

// NewHandler wraps a typed function, decoding the JSON payload before the call.
// A payload that does not decode into T is reported as a handler failure.
func NewHandler[T, R any](fn TypedHandlerFunc[T, R]) Handler {
	return &typedHandler[T, R]{fn: fn}
}

type typedHandler[T, R any] struct {
	fn TypedHandlerFunc[T, R]
}

func (h *typedHandler[T, R]) Handle(ctx context.Context, data json.RawMessage) (any, error) {
	var payload T
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode payload into %T: %w", payload, err)
		}
	}
	return h.fn(ctx, payload)
}

// Registry maps job types to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler for jobType. Registering a type twice is an error;
// use Replace to swap an existing handler.
func (r *Registry) Register(jobType string, h Handler) error {
	if jobType == "" || h == nil {
		return ErrInvalidHandler
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[jobType]; exists {
		return fmt.Errorf("%w: %s", ErrHandlerAlreadyRegistered, jobType)
	}
	r.handlers[jobType] = h
	return nil
}

// Replace sets the handler for jobType, overwriting any previous registration.
func (r *Registry) Replace(jobType string, h Handler) error {
	if jobType == "" || h == nil {
		return ErrInvalidHandler
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[jobType] = h
	return nil
}

// Lookup returns the handler registered for jobType.
func (r *Registry) Lookup(jobType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[jobType]
	return h, ok
}

// Types returns the registered job types sorted alphabetically.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
