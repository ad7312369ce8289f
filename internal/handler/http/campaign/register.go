package campaign

import (
	"net/http"

	"campaign-relay/internal/handler/http/auth"
	"campaign-relay/internal/handler/http/middleware"
	campaignUC "campaign-relay/internal/usecase/campaign"
)

// Register registers all campaign-related HTTP handlers with the given mux.
// It sets up routes for listing, searching, creating, updating, and deleting
// campaigns. Mutating routes require authentication via the auth middleware.
// The search endpoint is rate limited to prevent DoS attacks.
func Register(mux *http.ServeMux, svc *campaignUC.Service, searchRateLimiter *middleware.RateLimiter) {
	mux.Handle("GET    /campaigns", ListHandler{svc})
	// Search endpoint with rate limiting (100 req/min per IP)
	mux.Handle("GET    /campaigns/search", searchRateLimiter.Middleware(SearchHandler{svc}))
	mux.Handle("GET    /campaigns/", GetHandler{svc})

	mux.Handle("POST   /campaigns", auth.Authz(CreateHandler{svc}))
	mux.Handle("PUT    /campaigns/", auth.Authz(UpdateHandler{svc}))
	mux.Handle("DELETE /campaigns/", auth.Authz(DeleteHandler{svc}))
}
