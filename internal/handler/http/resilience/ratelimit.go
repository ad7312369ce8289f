package resilience

import (
	"fmt"
	"net/http"
	"sort"

	"campaign-relay/internal/handler/http/respond"
	"campaign-relay/pkg/resilience"
)

// RateLimitListHandler handles GET /api/resilience/ratelimits requests.
type RateLimitListHandler struct {
	Limiter *resilience.RateLimiter
}

// ServeHTTP godoc
// @Summary      ホスト別レート制限状態一覧
// @Description  外部ホストごとのクールダウン状態とキュー長を返す
// @Tags         resilience
// @Produce      json
// @Success      200 {array} resilience.HostStatusDTO
// @Router       /api/resilience/ratelimits [get]
func (h RateLimitListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	statuses := h.Limiter.Status()

	dtos := make([]HostStatusDTO, 0, len(statuses))
	for _, s := range statuses {
		dtos = append(dtos, toHostStatusDTO(s))
	}
	// Map iteration order is random; keep the listing stable for clients.
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].Host < dtos[j].Host })

	respond.JSON(w, http.StatusOK, dtos)
}

// RateLimitGetHandler handles GET /api/resilience/ratelimits/{host} requests.
type RateLimitGetHandler struct {
	Limiter *resilience.RateLimiter
}

func (h RateLimitGetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	host := r.PathValue("host")
	if host == "" {
		respond.Error(w, http.StatusBadRequest, fmt.Errorf("host is required"))
		return
	}

	respond.JSON(w, http.StatusOK, toHostStatusDTO(h.Limiter.HostStatus(host)))
}

// RateLimitClearHandler handles DELETE /api/resilience/ratelimits/{host} requests.
// Clearing a host cancels its cooldown and releases any queued calls.
type RateLimitClearHandler struct {
	Limiter *resilience.RateLimiter
}

// ServeHTTP godoc
// @Summary      ホストのレート制限解除
// @Description  指定ホストのクールダウンを解除し、待機中のリクエストを解放する
// @Tags         resilience
// @Param        host path string true "対象ホスト"
// @Success      204 "No Content"
// @Security     BearerAuth
// @Router       /api/resilience/ratelimits/{host} [delete]
func (h RateLimitClearHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	host := r.PathValue("host")
	if host == "" {
		respond.Error(w, http.StatusBadRequest, fmt.Errorf("host is required"))
		return
	}

	h.Limiter.ClearRateLimit(host)
	w.WriteHeader(http.StatusNoContent)
}

// RateLimitClearAllHandler handles DELETE /api/resilience/ratelimits requests.
type RateLimitClearAllHandler struct {
	Limiter *resilience.RateLimiter
}

func (h RateLimitClearAllHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Limiter.ResetAll()
	w.WriteHeader(http.StatusNoContent)
}
