package post

import (
	"log/slog"
	"net/http"

	"campaign-relay/internal/handler/http/auth"
	"campaign-relay/internal/handler/http/middleware"
	postUC "campaign-relay/internal/usecase/post"
)

// Register registers all post-related HTTP handlers with the given mux.
// It sets up routes for listing, searching, drafting, scheduling, updating,
// and deleting posts. Mutating routes require authentication via the auth
// middleware; drafting additionally burns generator quota, so it shares the
// search rate limiter.
func Register(mux *http.ServeMux, svc *postUC.Service, preview PreviewFetcher, searchRateLimiter *middleware.RateLimiter, logger *slog.Logger) {
	mux.Handle("GET    /posts", ListHandler{Svc: svc, Logger: logger})
	mux.Handle("GET    /posts/search", searchRateLimiter.Middleware(SearchHandler{svc}))
	mux.Handle("GET    /posts/{id}/preview", PreviewHandler{Svc: svc, Fetcher: preview})
	mux.Handle("GET    /posts/", GetHandler{svc})

	mux.Handle("POST   /posts", auth.Authz(DraftHandler{svc}))
	mux.Handle("POST   /posts/{id}/schedule", auth.Authz(ScheduleHandler{svc}))
	mux.Handle("PUT    /posts/", auth.Authz(UpdateHandler{svc}))
	mux.Handle("DELETE /posts/", auth.Authz(DeleteHandler{svc}))
}
