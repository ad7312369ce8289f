package auth

import "strings"

// PublicEndpoints lists paths reachable without a JWT: orchestration
// health checks, Prometheus scraping, API docs, and token issuance
// (a token cannot be required to obtain a token). setupRoutes may
// replace this list from the security config.
var PublicEndpoints = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
	"/swagger/",
	"/auth/token",
}

// IsPublicEndpoint reports whether path is reachable without
// authentication. Entries ending in "/" match by prefix (so /swagger/
// covers /swagger/index.html); all others match exactly, optionally with
// a trailing slash or query string — /health matches /health?x=1 but
// never /health/detail or /healthcheck.
func IsPublicEndpoint(path string) bool {
	for _, ep := range PublicEndpoints {
		if strings.HasSuffix(ep, "/") {
			if strings.HasPrefix(path, ep) {
				return true
			}
			continue
		}
		if path == ep || path == ep+"/" || strings.HasPrefix(path, ep+"?") {
			return true
		}
	}
	return false
}
