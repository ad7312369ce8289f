// Package pathutil normalizes request paths for metrics labels and extracts
// resource IDs for the stdlib mux handlers.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern pairs a route regexp with its normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns lists the dynamic routes, most specific first. Pre-compiled
// so normalization stays well under a microsecond per call.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/posts/\d+$`), Template: "/posts/:id"},
	{Pattern: regexp.MustCompile(`^/posts/\d+/preview$`), Template: "/posts/:id/preview"},
	{Pattern: regexp.MustCompile(`^/posts/\d+/schedule$`), Template: "/posts/:id/schedule"},

	{Pattern: regexp.MustCompile(`^/campaigns/\d+$`), Template: "/campaigns/:id"},
	{Pattern: regexp.MustCompile(`^/campaigns/\d+/posts$`), Template: "/campaigns/:id/posts"},

	// Resilience introspection routes keyed by host or service name.
	// The literal reset-all route goes first so it is not folded into :service.
	{Pattern: regexp.MustCompile(`^/api/resilience/breakers/reset$`), Template: "/api/resilience/breakers/reset"},
	{Pattern: regexp.MustCompile(`^/api/resilience/ratelimits/[^/]+$`), Template: "/api/resilience/ratelimits/:host"},
	{Pattern: regexp.MustCompile(`^/api/resilience/breakers/[^/]+$`), Template: "/api/resilience/breakers/:service"},
	{Pattern: regexp.MustCompile(`^/api/resilience/breakers/[^/]+/history$`), Template: "/api/resilience/breakers/:service/history"},
	{Pattern: regexp.MustCompile(`^/api/resilience/breakers/[^/]+/reset$`), Template: "/api/resilience/breakers/:service/reset"},
	{Pattern: regexp.MustCompile(`^/api/resilience/breakers/[^/]+/force$`), Template: "/api/resilience/breakers/:service/force"},
}

// NormalizePath folds ID-bearing paths into templates so Prometheus label
// cardinality stays bounded: /posts/123 becomes /posts/:id. Query strings
// and trailing slashes are stripped first. Static paths such as /health or
// /posts/search pass through unchanged, as does anything unrecognized.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return path
}
