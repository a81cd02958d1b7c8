package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AmmannChristian/go-forgeauth/oauth2client"
)

// FakeClock is a manually advanced clock. Pass its Now method to tokencache.WithClock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock returns a clock frozen at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// IssueCall records one StubIssuer invocation.
type IssueCall struct {
	ClientID     string
	ClientSecret string
	Scopes       oauth2client.ScopeSet
}

// StubIssuer returns scripted tokens and records every call.
//
// Without a custom Func it answers "v1", "v2", ... with ExpiresIn seconds.
type StubIssuer struct {
	// ExpiresIn is the validity returned by the default behavior. Zero means 3600.
	ExpiresIn int64

	// Err, when set, is returned by every call.
	Err error

	// Func overrides the default behavior entirely.
	Func func(ctx context.Context, clientID, clientSecret string, scopes oauth2client.ScopeSet) (string, int64, error)

	// Block, when non-nil, is received from before answering.
	Block <-chan struct{}

	// Started, when non-nil, receives a value (non-blocking) as each call begins.
	Started chan<- struct{}

	mu    sync.Mutex
	calls []IssueCall
}

// IssueToken implements tokencache.Issuer.
func (s *StubIssuer) IssueToken(ctx context.Context, clientID, clientSecret string, scopes oauth2client.ScopeSet) (string, int64, error) {
	s.mu.Lock()
	s.calls = append(s.calls, IssueCall{ClientID: clientID, ClientSecret: clientSecret, Scopes: scopes})
	n := len(s.calls)
	s.mu.Unlock()

	if s.Started != nil {
		select {
		case s.Started <- struct{}{}:
		default:
		}
	}
	if s.Block != nil {
		<-s.Block
	}

	if s.Func != nil {
		return s.Func(ctx, clientID, clientSecret, scopes)
	}
	if s.Err != nil {
		return "", 0, s.Err
	}

	expiresIn := s.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}
	return fmt.Sprintf("v%d", n), expiresIn, nil
}

// Calls returns the recorded invocations.
func (s *StubIssuer) Calls() []IssueCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]IssueCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many times IssueToken ran.
func (s *StubIssuer) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// StubSecrets resolves names from an in-memory map and records lookups.
type StubSecrets struct {
	mu      sync.Mutex
	values  map[string]string
	errs    map[string]error
	lookups []string
}

// NewStubSecrets returns a resolver serving values.
func NewStubSecrets(values map[string]string) *StubSecrets {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &StubSecrets{values: copied, errs: make(map[string]error)}
}

// Fail makes lookups of name return err until Clear is called.
func (s *StubSecrets) Fail(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[name] = err
}

// Clear removes a failure installed by Fail.
func (s *StubSecrets) Clear(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.errs, name)
}

// Resolve implements tokencache.SecretResolver.
func (s *StubSecrets) Resolve(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups = append(s.lookups, name)

	if err, ok := s.errs[name]; ok {
		return "", err
	}
	value, ok := s.values[name]
	if !ok {
		return "", fmt.Errorf("testutil: no stub value for %q", name)
	}
	return value, nil
}

// Lookups returns the requested names in order.
func (s *StubSecrets) Lookups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lookups))
	copy(out, s.lookups)
	return out
}
