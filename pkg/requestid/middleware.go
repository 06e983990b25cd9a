package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

// DefaultHeader carries the request id in both directions.
const DefaultHeader = "X-Request-ID"

const maxIDLength = 128

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type options struct {
	header   string
	generate func() string
}

// Option configures the middleware.
type Option func(*options)

// WithHeader reads and writes the id under a different header name.
func WithHeader(name string) Option {
	return func(o *options) {
		if name != "" {
			o.header = name
		}
	}
}

// WithGenerator replaces the uuid generator used for new ids.
func WithGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.generate = fn
		}
	}
}

// Middleware propagates a caller supplied request id or assigns a new one.
// Ids that are too long or contain anything but letters, digits, '-' and '_'
// are replaced.
func Middleware(opts ...Option) func(http.Handler) http.Handler {
	o := options{header: DefaultHeader, generate: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(o.header)
			if !valid(id) {
				id = o.generate()
			}
			w.Header().Set(o.header, id)
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
		})
	}
}

func valid(id string) bool {
	return id != "" && len(id) <= maxIDLength && validID.MatchString(id)
}
