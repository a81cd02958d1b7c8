// Package httpclient builds HTTP clients for the outbound side of the service.
//
// The token exchange uses a plain Builder (timeout, TLS 1.2+, optional CA bundle). Trusted
// in-process collaborators add WithTokenSource so every request carries the privileged
// internal token; OAuth2Transport can also wrap any RoundTripper directly.
//
// # Quick Start
//
//	client, err := httpclient.NewBuilder().
//	    WithTokenSource(httpclient.TokenSourceFunc(service.InternalAccessToken)).
//	    WithTimeout(15 * time.Second).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// All components are safe for concurrent use if the provided TokenSource is.
package httpclient
