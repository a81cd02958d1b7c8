// Package oauth2client performs OAuth2 client-credentials ("two-legged") grants for the two
// fixed scope sets this service hands out.
//
// An Issuer holds no token state: every IssueToken call performs exactly one exchange against
// the configured endpoint and reports the bearer value with its validity in seconds. Caching
// belongs to package tokencache.
//
// # Scope sets
//
//   - Public: read-only viewer scope (viewables:read)
//   - Internal: privileged bucket/data/code scopes, for in-process use only
//
// Arbitrary scope composition is not supported; IssueToken rejects anything but Public or Internal.
//
// # Errors
//
// Failures wrap ErrAuthRejected (the endpoint refused the grant or returned an unusable token)
// or ErrAuthUnreachable (transport failure or 5xx). Match them with errors.Is.
//
// # Quick Start
//
//	issuer := oauth2client.NewIssuer(
//	    oauth2client.DefaultTokenURL,
//	    oauth2client.WithHTTPClient(httpClient),
//	    oauth2client.WithLoggingEnabled(),
//	)
//	bearer, expiresIn, err := issuer.IssueToken(ctx, clientID, clientSecret, oauth2client.Public)
package oauth2client
