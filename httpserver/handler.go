package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/AmmannChristian/go-forgeauth/oauth2client"
	"github.com/AmmannChristian/go-forgeauth/secrets"
	"github.com/AmmannChristian/go-forgeauth/tokencache"
)

// PublicTokenRoute is the externally reachable token route.
const PublicTokenRoute = "/api/forge/oauth/token"

// Logger is an interface for optional logging in handlers and middleware.
type Logger interface {
	Printf(format string, args ...any)
}

// PublicTokenSource provides the read-only viewer token.
type PublicTokenSource interface {
	GetPublicToken(ctx context.Context) (tokencache.Record, error)
}

// SlotReporter reports cache slot states for health checks.
type SlotReporter interface {
	State(kind tokencache.Kind) tokencache.State
}

// TokenResponse is the JSON body served by TokenHandler.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ErrorResponse is the JSON body served on failure. It never carries a token.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type handlerConfig struct {
	logger Logger
	now    func() time.Time
}

// HandlerOption is a functional option for configuring handlers.
type HandlerOption func(*handlerConfig)

// WithHandlerLogger sets a logger for token failures.
func WithHandlerLogger(logger Logger) HandlerOption {
	return func(c *handlerConfig) {
		c.logger = logger
	}
}

// WithHandlerLoggingEnabled logs token failures using the default Go log package.
func WithHandlerLoggingEnabled() HandlerOption {
	return func(c *handlerConfig) {
		c.logger = log.Default()
	}
}

// WithHandlerClock sets the clock used to compute expires_in.
func WithHandlerClock(now func() time.Time) HandlerOption {
	return func(c *handlerConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// TokenHandler serves the public token as JSON on GET.
//
// expires_in is the number of whole seconds left at the time of the response.
// Failures surface as 503 (an upstream could not be reached) or 502 (an
// upstream refused), with no token in the body.
func TokenHandler(source PublicTokenSource, opts ...HandlerOption) http.Handler {
	config := &handlerConfig{now: time.Now}
	for _, opt := range opts {
		opt(config)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "only GET is supported")
			return
		}

		record, err := source.GetPublicToken(r.Context())
		if err != nil {
			if config.logger != nil {
				config.logger.Printf("httpserver: public token unavailable for %s %s: %v", r.Method, r.URL.Path, err)
			}
			status := StatusForError(err)
			WriteError(w, status, "token_unavailable", http.StatusText(status))
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		WriteJSON(w, http.StatusOK, TokenResponse{
			AccessToken: record.BearerValue,
			TokenType:   "Bearer",
			ExpiresIn:   record.RemainingSeconds(config.now()),
			ExpiresAt:   record.ExpiresAt.UTC(),
		})
	})
}

// HealthHandler reports liveness together with the state of each cache slot.
// It never triggers a refresh.
func HealthHandler(reporter SlotReporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"slots": map[string]string{
				tokencache.Public.String():   reporter.State(tokencache.Public).String(),
				tokencache.Internal.String(): reporter.State(tokencache.Internal).String(),
			},
		})
	})
}

// StatusForError maps a token failure to an HTTP status.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, oauth2client.ErrAuthUnreachable),
		errors.Is(err, secrets.ErrSecretStoreUnreachable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// WriteJSON writes v as a JSON response with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorResponse with status.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{Error: code, Message: message})
}
