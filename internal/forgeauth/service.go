// Package forgeauth is the token facade. It lives under internal/ so that only code in
// this module can obtain the privileged internal token; the public token is the only one
// exposed at the HTTP boundary.
package forgeauth

import (
	"context"
	"errors"

	"github.com/AmmannChristian/go-forgeauth/tokencache"
)

// TokenGetter is the cache behind the facade.
type TokenGetter interface {
	GetToken(ctx context.Context, kind tokencache.Kind) (tokencache.Record, error)
}

// Service hands out the public and internal tokens.
type Service struct {
	cache TokenGetter
}

// NewService wraps cache.
func NewService(cache TokenGetter) (*Service, error) {
	if cache == nil {
		return nil, errors.New("forgeauth: token cache is required")
	}
	return &Service{cache: cache}, nil
}

// GetPublicToken returns the read-only viewer token. Safe to hand to external callers.
func (s *Service) GetPublicToken(ctx context.Context) (tokencache.Record, error) {
	return s.cache.GetToken(ctx, tokencache.Public)
}

// GetInternalToken returns the privileged read/write token. Never expose it outside the process.
func (s *Service) GetInternalToken(ctx context.Context) (tokencache.Record, error) {
	return s.cache.GetToken(ctx, tokencache.Internal)
}

// InternalAccessToken returns only the internal bearer value, for outbound transports.
func (s *Service) InternalAccessToken(ctx context.Context) (string, error) {
	record, err := s.GetInternalToken(ctx)
	if err != nil {
		return "", err
	}
	return record.BearerValue, nil
}
