// Package testutil provides test helpers for go-forgeauth packages.
//
// It includes utilities to spin up IPv4-only local HTTP servers (avoiding IPv6 in sandboxes),
// mock OAuth2 token endpoints without real sockets, and generate self-signed certificates for TLS tests.
//
// # Utilities
//
//   - NewLocalHTTPServer: start httptest server bound to 127.0.0.1, closed on cleanup
//   - MockOAuth2Server, StaticJSONResponse, JSONResponse: stub token endpoints and capture requests and form bodies
//   - RoundTripFunc: inline http.RoundTripper implementations
//   - WriteTestCertAndKey: generate a temporary self-signed server certificate
package testutil
