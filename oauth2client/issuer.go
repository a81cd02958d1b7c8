package oauth2client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTokenURL is the Autodesk Platform Services two-legged token endpoint.
const DefaultTokenURL = "https://developer.api.autodesk.com/authentication/v2/token"

var (
	// ErrAuthRejected indicates the authorization endpoint refused the grant
	// (bad credentials, invalid scope) or answered with an unusable token.
	ErrAuthRejected = errors.New("oauth2client: authorization rejected")

	// ErrAuthUnreachable indicates the authorization endpoint could not be reached.
	ErrAuthUnreachable = errors.New("oauth2client: authorization endpoint unreachable")
)

// Logger is an interface for optional logging in Issuer.
// Implementations can log token exchanges if desired.
type Logger interface {
	Printf(format string, args ...any)
}

// Issuer performs client-credentials grants against a fixed token endpoint.
// It holds no token state and is safe for concurrent use.
type Issuer struct {
	tokenURL   string
	authStyle  oauth2.AuthStyle
	httpClient *http.Client
	logger     Logger
}

// Option is a functional option for configuring Issuer.
type Option func(*Issuer)

// WithHTTPClient sets the HTTP client used for the grant request.
// If not set, the client carried in the request context (oauth2.HTTPClient) or
// http.DefaultClient is used.
func WithHTTPClient(client *http.Client) Option {
	return func(i *Issuer) {
		i.httpClient = client
	}
}

// WithAuthStyle sets how client credentials are presented to the endpoint.
// Default is oauth2.AuthStyleInHeader (HTTP Basic).
func WithAuthStyle(style oauth2.AuthStyle) Option {
	return func(i *Issuer) {
		i.authStyle = style
	}
}

// WithLogger sets a custom logger for token exchange events.
// If not set, no logging will occur.
func WithLogger(logger Logger) Option {
	return func(i *Issuer) {
		i.logger = logger
	}
}

// WithLoggingEnabled enables logging using the default Go log package.
func WithLoggingEnabled() Option {
	return func(i *Issuer) {
		i.logger = log.Default()
	}
}

// NewIssuer creates an Issuer for the given token endpoint.
// An empty tokenURL selects DefaultTokenURL.
func NewIssuer(tokenURL string, opts ...Option) *Issuer {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	i := &Issuer{
		tokenURL:  tokenURL,
		authStyle: oauth2.AuthStyleInHeader,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// TokenURL returns the configured token endpoint.
func (i *Issuer) TokenURL() string {
	return i.tokenURL
}

// IssueToken performs a single client-credentials exchange and returns the
// bearer value with its validity in seconds.
//
// Errors wrap ErrAuthRejected or ErrAuthUnreachable. Nothing is retried.
func (i *Issuer) IssueToken(ctx context.Context, clientID, clientSecret string, scopes ScopeSet) (string, int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if clientID == "" || clientSecret == "" {
		return "", 0, fmt.Errorf("%w: client id and client secret are required", ErrAuthRejected)
	}
	if !scopes.IsPredefined() {
		return "", 0, fmt.Errorf("%w: unsupported scope set %q", ErrAuthRejected, scopes.Name())
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     i.tokenURL,
		Scopes:       scopes.Scopes(),
		AuthStyle:    i.authStyle,
	}

	if i.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, i.httpClient)
	}

	token, err := config.Token(ctx)
	if err != nil {
		return "", 0, classifyTokenError(err)
	}

	expiresIn := expiresInSeconds(token, time.Now())
	if i.logger != nil {
		i.logger.Printf("oauth2client: issued %s token (expires_in: %ds)", scopes.Name(), expiresIn)
	}

	return token.AccessToken, expiresIn, nil
}

// classifyTokenError maps a token retrieval failure onto the issuer taxonomy.
// Endpoint replies are rejections unless the server itself failed (5xx).
func classifyTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %w", ErrAuthUnreachable, err)
		}
		return fmt.Errorf("%w: %w", ErrAuthRejected, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrAuthUnreachable, err)
	}

	// Malformed success responses (e.g. missing access_token).
	return fmt.Errorf("%w: %w", ErrAuthRejected, err)
}

// expiresInSeconds prefers the wire expires_in and falls back to the computed expiry.
func expiresInSeconds(token *oauth2.Token, now time.Time) int64 {
	if token.ExpiresIn > 0 {
		return token.ExpiresIn
	}
	if token.Expiry.IsZero() {
		return 0
	}
	return int64(token.Expiry.Sub(now).Round(time.Second) / time.Second)
}
