// Package httpserver serves the public token route and the health check.
//
// TokenHandler answers GET requests with the cached public token as JSON.
// The privileged internal token has no handler here and is never served.
// Middleware adds panic recovery and request logging, and NewServer and Serve
// run an optionally TLS-enabled http.Server with graceful shutdown.
//
// # Quick Start
//
//	mux := http.NewServeMux()
//	mux.Handle(httpserver.PublicTokenRoute, httpserver.TokenHandler(service))
//	mux.Handle("/healthz", httpserver.HealthHandler(cache))
//
//	server, err := httpserver.NewServer(":3000", httpserver.Middleware()(mux), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := httpserver.ListenAndServe(ctx, server); err != nil {
//	    log.Fatal(err)
//	}
//
// # Responses
//
// A successful token response carries Cache-Control: no-store:
//
//	{"access_token":"...","token_type":"Bearer","expires_in":3599,"expires_at":"..."}
//
// Failures return a JSON ErrorResponse. Unreachable upstreams map to 503 and
// refusals to 502. Non-GET methods receive 405.
package httpserver
