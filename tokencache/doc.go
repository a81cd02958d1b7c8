// Package tokencache serves the public and internal access tokens from two independent
// in-memory slots, minting a new token only when a slot is empty or its record has expired.
//
// # Refresh
//
// A refresh resolves the client id and client secret through a SecretResolver (fresh on every
// refresh, never cached), exchanges them through an Issuer for the slot's scope set, and stores
// a Record with ExpiresAt = issue time + expires_in.
//
// # Concurrency
//
// Each slot owns its own lock and golang.org/x/sync/singleflight group:
//
//   - at most one refresh per slot is in flight at any time
//   - every caller that joins a refresh receives the same Record or the same error
//   - the public and internal slots never wait on each other
//   - a refresh is detached from caller cancellation; a caller whose context ends stops waiting
//
// A failed refresh leaves the slot empty so the next call starts over. GetToken never returns a
// record whose ExpiresAt has passed.
//
// # Quick Start
//
//	cache, err := tokencache.New(provider, issuer, tokencache.Credentials{
//	    ClientIDParameter:     "/forge/client-id",
//	    ClientSecretParameter: "/forge/client-secret",
//	}, tokencache.WithLoggingEnabled())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	record, err := cache.GetToken(ctx, tokencache.Public)
package tokencache
