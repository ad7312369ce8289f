package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// CORSConfig holds the cross-origin policy for the admin API.
//
// The campaign console is the only intended browser client, so the origin
// list is an explicit allowlist: no wildcards, no pattern matching. Origins
// are compared case-insensitively on scheme and host.
type CORSConfig struct {
	// AllowedOrigins is the exact set of origins permitted to call the
	// API from a browser, e.g. "https://console.example.com".
	AllowedOrigins []string

	// AllowedMethods is sent in Access-Control-Allow-Methods.
	AllowedMethods []string

	// AllowedHeaders is sent in Access-Control-Allow-Headers.
	AllowedHeaders []string

	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int

	// Logger records rejected origins. Defaults to slog.Default().
	Logger *slog.Logger
}

const defaultCORSMaxAge = 300

// LoadCORSConfig reads the CORS policy from the environment.
//
// CORS_ALLOWED_ORIGINS is a comma-separated origin list and is required;
// a deployment that should not serve browsers at all sets it to "none" to
// get an empty allowlist. Each origin must be a bare scheme://host[:port]
// with no path, and "*" is rejected outright: the admin API carries
// credentials, and a wildcard would hand them to any page.
func LoadCORSConfig() (*CORSConfig, error) {
	raw := os.Getenv("CORS_ALLOWED_ORIGINS")
	if raw == "" {
		return nil, fmt.Errorf("CORS_ALLOWED_ORIGINS must be set (use \"none\" to disable browser access)")
	}

	config := &CORSConfig{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         defaultCORSMaxAge,
	}

	if maxAge := os.Getenv("CORS_MAX_AGE"); maxAge != "" {
		parsed, err := strconv.Atoi(maxAge)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("CORS_MAX_AGE must be a non-negative integer, got %q", maxAge)
		}
		config.MaxAge = parsed
	}

	if strings.EqualFold(strings.TrimSpace(raw), "none") {
		return config, nil
	}

	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		normalized, err := normalizeOrigin(origin)
		if err != nil {
			return nil, fmt.Errorf("CORS_ALLOWED_ORIGINS entry %q: %w", origin, err)
		}
		config.AllowedOrigins = append(config.AllowedOrigins, normalized)
	}
	if len(config.AllowedOrigins) == 0 {
		return nil, fmt.Errorf("CORS_ALLOWED_ORIGINS contained no usable origins")
	}
	return config, nil
}

// normalizeOrigin validates one allowlist entry and lowercases it for
// comparison.
func normalizeOrigin(origin string) (string, error) {
	if origin == "*" {
		return "", fmt.Errorf("wildcard origins are not allowed on a credentialed API")
	}
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("parse origin: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("origin scheme must be http or https")
	}
	if u.Host == "" {
		return "", fmt.Errorf("origin has no host")
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("origin must not carry a path, query, or fragment")
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), nil
}

// originAllowed reports whether origin matches the allowlist exactly.
func (c *CORSConfig) originAllowed(origin string) bool {
	origin = strings.ToLower(origin)
	for _, allowed := range c.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// CORS enforces the allowlist and answers preflight requests.
//
// Requests without an Origin header (curl, service-to-service) pass through
// untouched. Requests from a disallowed origin get no CORS headers, which
// makes the browser block the response; a disallowed preflight is answered
// 403 so the failure shows up in the network log rather than silently.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	allowMethods := strings.Join(config.AllowedMethods, ", ")
	allowHeaders := strings.Join(config.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Responses vary by Origin whether or not it is allowed, so
			// shared caches must not mix them.
			w.Header().Add("Vary", "Origin")

			if !config.originAllowed(origin) {
				logger.Warn("cross-origin request rejected",
					slog.String("origin", origin),
					slog.String("path", r.URL.Path),
				)
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", allowMethods)
				w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
