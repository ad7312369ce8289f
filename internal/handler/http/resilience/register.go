package resilience

import (
	"net/http"

	"campaign-relay/internal/handler/http/auth"
	"campaign-relay/pkg/resilience"
)

// Register registers the resilience inspection and operation routes.
// Read endpoints are public; state-mutating endpoints require authentication.
func Register(mux *http.ServeMux, limiter *resilience.RateLimiter, registry *resilience.Registry) {
	mux.Handle("GET    /api/resilience/ratelimits", RateLimitListHandler{Limiter: limiter})
	mux.Handle("GET    /api/resilience/ratelimits/{host}", RateLimitGetHandler{Limiter: limiter})
	mux.Handle("GET    /api/resilience/breakers", BreakerListHandler{Registry: registry})
	mux.Handle("GET    /api/resilience/breakers/{service}", BreakerGetHandler{Registry: registry})
	mux.Handle("GET    /api/resilience/breakers/{service}/history", BreakerHistoryHandler{Registry: registry})
	mux.Handle("GET    /api/resilience/config", ConfigHandler{Limiter: limiter})

	mux.Handle("DELETE /api/resilience/ratelimits", auth.Authz(RateLimitClearAllHandler{Limiter: limiter}))
	mux.Handle("DELETE /api/resilience/ratelimits/{host}", auth.Authz(RateLimitClearHandler{Limiter: limiter}))
	mux.Handle("POST   /api/resilience/breakers/reset", auth.Authz(BreakerResetAllHandler{Registry: registry}))
	mux.Handle("POST   /api/resilience/breakers/{service}/reset", auth.Authz(BreakerResetHandler{Registry: registry}))
	mux.Handle("POST   /api/resilience/breakers/{service}/force", auth.Authz(BreakerForceHandler{Registry: registry}))
}
