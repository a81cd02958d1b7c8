package tokencache

import (
	"log"
	"time"
)

// Logger is an interface for optional logging in Cache.
// Implementations can log token refresh events if desired.
type Logger interface {
	Printf(format string, args ...any)
}

// Option is a functional option for configuring Cache.
type Option func(*Cache)

// WithLogger sets a custom logger for token refresh events.
// If not set, no logging will occur.
func WithLogger(logger Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithLoggingEnabled enables logging using the default Go log package.
// This is a convenience option that sets the logger to log.Default().
func WithLoggingEnabled() Option {
	return func(c *Cache) {
		c.logger = log.Default()
	}
}

// WithClock replaces the wall clock used for issue times and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithExpiryLeeway treats records as expired this long before their ExpiresAt.
//
// The default is zero: a record is served until the instant it expires.
// A positive leeway is a deliberate deviation that trades extra refreshes
// for protection against clock skew with downstream services.
func WithExpiryLeeway(leeway time.Duration) Option {
	return func(c *Cache) {
		if leeway > 0 {
			c.expiryLeeway = leeway
		}
	}
}

// WithSlotCredentials overrides the credential parameter names for one slot.
func WithSlotCredentials(kind Kind, creds Credentials) Option {
	return func(c *Cache) {
		if c.slotCredentials == nil {
			c.slotCredentials = make(map[Kind]Credentials)
		}
		c.slotCredentials[kind] = creds
	}
}
