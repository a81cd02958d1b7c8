package httpserver

import (
	"log"
	"net/http"
	"time"
)

type middlewareConfig struct {
	logger Logger
	now    func() time.Time
}

// MiddlewareOption is a functional option for configuring Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithLogger sets a custom logger for request and panic logging.
// If not set, requests are not logged but panics are still recovered.
func WithLogger(logger Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.logger = logger
	}
}

// WithLoggingEnabled enables logging using the default Go log package.
func WithLoggingEnabled() MiddlewareOption {
	return func(c *middlewareConfig) {
		c.logger = log.Default()
	}
}

// Middleware wraps next with panic recovery and request logging.
// Response bodies and headers are never logged.
//
// Example usage:
//
//	mux := http.NewServeMux()
//	mux.Handle(httpserver.PublicTokenRoute, httpserver.TokenHandler(service))
//	handler := httpserver.Middleware(httpserver.WithLoggingEnabled())(mux)
func Middleware(opts ...MiddlewareOption) func(http.Handler) http.Handler {
	config := &middlewareConfig{now: time.Now}
	for _, opt := range opts {
		opt(config)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := config.now()

			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					if config.logger != nil {
						config.logger.Printf("httpserver: panic serving %s %s: %v", r.Method, r.URL.Path, p)
					}
					if !rec.wroteHeader {
						WriteError(rec, http.StatusInternalServerError, "internal_error", http.StatusText(http.StatusInternalServerError))
					}
				}

				if config.logger != nil {
					config.logger.Printf("httpserver: %s %s %d (%s)", r.Method, r.URL.Path, rec.Status(), config.now().Sub(start).Round(time.Millisecond))
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(status int) {
	if !s.wroteHeader {
		s.status = status
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Status() int {
	if !s.wroteHeader {
		return http.StatusOK
	}
	return s.status
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
