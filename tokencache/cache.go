package tokencache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AmmannChristian/go-forgeauth/oauth2client"
	"golang.org/x/sync/singleflight"
)

// maxRefreshRounds bounds how often GetToken re-joins a refresh whose result
// was already expired when it arrived.
const maxRefreshRounds = 2

var (
	// ErrInvalidToken indicates the issuer answered with an empty bearer or a
	// non-positive validity.
	ErrInvalidToken = errors.New("tokencache: issuer returned an unusable token")

	// ErrTokenExpired indicates freshly minted records kept arriving already expired.
	ErrTokenExpired = errors.New("tokencache: refreshed token expired before it could be returned")

	// ErrUnknownSlot indicates a Kind other than Public or Internal.
	ErrUnknownSlot = errors.New("tokencache: unknown slot")
)

// SecretResolver fetches a named credential string.
type SecretResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// Issuer exchanges client credentials for a bearer token valid for expiresIn seconds.
type Issuer interface {
	IssueToken(ctx context.Context, clientID, clientSecret string, scopes oauth2client.ScopeSet) (string, int64, error)
}

// Credentials names the parameters holding the OAuth client id and secret.
type Credentials struct {
	ClientIDParameter     string
	ClientSecretParameter string
}

func (c Credentials) validate() error {
	if c.ClientIDParameter == "" {
		return errors.New("tokencache: client id parameter name is required")
	}
	if c.ClientSecretParameter == "" {
		return errors.New("tokencache: client secret parameter name is required")
	}
	return nil
}

// slot holds one scope set's record. Slots share no locks.
type slot struct {
	kind       Kind
	scopes     oauth2client.ScopeSet
	mu         sync.RWMutex
	record     *Record
	refreshing atomic.Bool
	group      singleflight.Group
}

// Cache serves public and internal tokens, refreshing each slot on demand.
// It is safe for concurrent use.
type Cache struct {
	secrets         SecretResolver
	issuer          Issuer
	credentials     Credentials
	slotCredentials map[Kind]Credentials
	slots           [2]*slot
	now             func() time.Time
	expiryLeeway    time.Duration
	logger          Logger
}

// New creates a Cache with both slots empty.
//
// Parameters:
//   - secrets: resolves the client id and secret on every refresh
//   - issuer: performs the client-credentials exchange
//   - creds: parameter names used by both slots unless WithSlotCredentials overrides one
//   - opts: Optional configuration options (WithLogger, WithClock, WithExpiryLeeway, ...)
func New(secrets SecretResolver, issuer Issuer, creds Credentials, opts ...Option) (*Cache, error) {
	if secrets == nil {
		return nil, errors.New("tokencache: secret resolver is required")
	}
	if issuer == nil {
		return nil, errors.New("tokencache: issuer is required")
	}
	if err := creds.validate(); err != nil {
		return nil, err
	}

	c := &Cache{
		secrets:     secrets,
		issuer:      issuer,
		credentials: creds,
		now:         time.Now,
		slots: [2]*slot{
			Public:   {kind: Public, scopes: oauth2client.Public},
			Internal: {kind: Internal, scopes: oauth2client.Internal},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	for kind, override := range c.slotCredentials {
		if _, err := c.slot(kind); err != nil {
			return nil, err
		}
		if err := override.validate(); err != nil {
			return nil, fmt.Errorf("%w (%s slot)", err, kind)
		}
	}

	return c, nil
}

// GetToken returns a record for kind that is valid at the time of return,
// refreshing the slot when it is empty or expired.
//
// Concurrent callers for the same slot share a single refresh and all observe
// its record or its error. The refresh runs to completion even if ctx ends;
// a caller whose ctx ends stops waiting and gets ctx.Err().
func (c *Cache) GetToken(ctx context.Context, kind Kind) (Record, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := c.slot(kind)
	if err != nil {
		return Record{}, err
	}

	// Fast path: serve the cached record without joining a refresh.
	if record, ok := c.cached(s); ok {
		return record, nil
	}

	refreshCtx := context.WithoutCancel(ctx)
	for round := 0; round < maxRefreshRounds; round++ {
		ch := s.group.DoChan(s.kind.String(), func() (any, error) {
			return c.refresh(refreshCtx, s)
		})

		var result singleflight.Result
		select {
		case <-ctx.Done():
			return Record{}, ctx.Err()
		case result = <-ch:
		}

		if result.Err != nil {
			return Record{}, result.Err
		}

		record := result.Val.(Record)
		if c.usable(record) {
			return record, nil
		}
	}

	return Record{}, fmt.Errorf("%w (%s slot)", ErrTokenExpired, s.kind)
}

// State reports the current lifecycle state of kind's slot.
func (c *Cache) State(kind Kind) State {
	s, err := c.slot(kind)
	if err != nil {
		return StateEmpty
	}
	if s.refreshing.Load() {
		return StateRefreshing
	}
	if _, ok := c.cached(s); ok {
		return StateValid
	}
	return StateEmpty
}

func (c *Cache) slot(kind Kind) (*slot, error) {
	if kind != Public && kind != Internal {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSlot, int(kind))
	}
	return c.slots[kind], nil
}

func (c *Cache) cached(s *slot) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record == nil || !c.usable(*s.record) {
		return Record{}, false
	}
	return *s.record, true
}

func (c *Cache) usable(record Record) bool {
	return record.ValidAt(c.now().Add(c.expiryLeeway))
}

// refresh runs as the single in-flight flight for s.
func (c *Cache) refresh(ctx context.Context, s *slot) (any, error) {
	// Double-check: a flight that finished just before this one started may
	// already have stored a fresh record.
	if record, ok := c.cached(s); ok {
		return record, nil
	}

	s.refreshing.Store(true)
	defer s.refreshing.Store(false)

	record, err := c.mint(ctx, s)

	s.mu.Lock()
	if err != nil {
		s.record = nil
	} else {
		s.record = &record
	}
	s.mu.Unlock()

	if err != nil {
		if c.logger != nil {
			c.logger.Printf("tokencache: %s token refresh failed: %v", s.kind, err)
		}
		return nil, err
	}

	if c.logger != nil {
		c.logger.Printf("tokencache: obtained new %s token (expires: %s)", s.kind, record.ExpiresAt.Format(time.RFC3339))
	}

	return record, nil
}

// mint resolves fresh credentials and exchanges them for a new record.
func (c *Cache) mint(ctx context.Context, s *slot) (Record, error) {
	creds := c.credentialsFor(s.kind)

	clientID, err := c.secrets.Resolve(ctx, creds.ClientIDParameter)
	if err != nil {
		return Record{}, fmt.Errorf("tokencache: resolve client id for %s token: %w", s.kind, err)
	}

	clientSecret, err := c.secrets.Resolve(ctx, creds.ClientSecretParameter)
	if err != nil {
		return Record{}, fmt.Errorf("tokencache: resolve client secret for %s token: %w", s.kind, err)
	}

	bearer, expiresIn, err := c.issuer.IssueToken(ctx, clientID, clientSecret, s.scopes)
	if err != nil {
		return Record{}, fmt.Errorf("tokencache: issue %s token: %w", s.kind, err)
	}

	if bearer == "" || expiresIn <= 0 {
		return Record{}, fmt.Errorf("%w: %s token with expires_in %d", ErrInvalidToken, s.kind, expiresIn)
	}

	return newRecord(bearer, c.now(), expiresIn), nil
}

func (c *Cache) credentialsFor(kind Kind) Credentials {
	if creds, ok := c.slotCredentials[kind]; ok {
		return creds
	}
	return c.credentials
}
