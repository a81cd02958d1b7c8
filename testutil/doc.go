// Package testutil provides deterministic fakes for testing code built on go-forgeauth.
//
//   - FakeClock: manually advanced clock for tokencache.WithClock
//   - StubIssuer: scripted tokencache.Issuer that records calls and can block mid-exchange
//   - StubSecrets: in-memory tokencache.SecretResolver with injectable failures
//
// All fakes are safe for concurrent use.
package testutil
