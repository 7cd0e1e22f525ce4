// Package server provides HTTP routing, middleware, and the OAuth linking flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] is applied in the order added, the first added being the outermost. [BasicRouter] registers every route
// as an [http.ServeMux] method pattern ("GET /auth"), so method filtering and 405 responses come from the mux.
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to keep route definitions within the implementation.
//
// # Linking Flow
//
//  1. GET /auth?github_username=...&github_access_token=... encrypts the GitHub identity into the state parameter and
//     redirects (302) to Spotify's consent page. Missing parameters are rejected with 400.
//  2. GET /callback?code=...&state=... decrypts the state (400 when it does not decode), exchanges the code (502 when
//     Spotify refuses), and saves the link. A GitHub account that links again keeps its identity and gets new tokens.
//     The bio is then written once, best effort, and the handler answers "ok.".
//
// # Middleware
//
//   - [Recover] : converts handler panics into 500 responses
//   - [Logging] : one log line per request, without query strings
//   - [Instrument] : Prometheus request counters and latency
//   - [RateLimit] : process-wide token bucket, 429 when exhausted
//
// GET /healthz answers "ok." and GET /metrics serves the default Prometheus registry, which also carries the sync
// metrics of package tasks.
package server
