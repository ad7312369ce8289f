package resilience

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"campaign-relay/internal/handler/http/respond"
	"campaign-relay/pkg/resilience"
)

// defaultHistoryLimit is how many outcome entries a history request returns
// when the client does not pass ?limit=.
const defaultHistoryLimit = 50

// BreakerListHandler handles GET /api/resilience/breakers requests.
type BreakerListHandler struct {
	Registry *resilience.Registry
}

// ServeHTTP godoc
// @Summary      サーキットブレーカー一覧
// @Description  登録済みブレーカーの状態と呼び出し統計を返す
// @Tags         resilience
// @Produce      json
// @Success      200 {array} resilience.BreakerDTO
// @Router       /api/resilience/breakers [get]
func (h BreakerListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	statuses := h.Registry.AllStatuses()
	statistics := h.Registry.AllStatistics()

	dtos := make([]BreakerDTO, 0, len(statuses))
	for service, status := range statuses {
		dtos = append(dtos, toBreakerDTO(status, statistics[service]))
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].Service < dtos[j].Service })

	respond.JSON(w, http.StatusOK, dtos)
}

// BreakerGetHandler handles GET /api/resilience/breakers/{service} requests.
type BreakerGetHandler struct {
	Registry *resilience.Registry
}

func (h BreakerGetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	breaker, ok := h.Registry.Lookup(r.PathValue("service"))
	if !ok {
		respond.Error(w, http.StatusNotFound, fmt.Errorf("unknown service"))
		return
	}

	respond.JSON(w, http.StatusOK, toBreakerDTO(breaker.Status(), breaker.Statistics()))
}

// BreakerHistoryHandler handles GET /api/resilience/breakers/{service}/history requests.
type BreakerHistoryHandler struct {
	Registry *resilience.Registry
}

// ServeHTTP godoc
// @Summary      ブレーカーの呼び出し履歴
// @Description  直近の呼び出し結果（成功/失敗とレイテンシ）を新しい順に返す
// @Tags         resilience
// @Produce      json
// @Param        service path  string true  "サービス名"
// @Param        limit   query int    false "取得件数(デフォルト50)"
// @Success      200 {array} resilience.HistoryEntryDTO
// @Failure      404 {object} map[string]string
// @Router       /api/resilience/breakers/{service}/history [get]
func (h BreakerHistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	breaker, ok := h.Registry.Lookup(r.PathValue("service"))
	if !ok {
		respond.Error(w, http.StatusNotFound, fmt.Errorf("unknown service"))
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respond.Error(w, http.StatusBadRequest, fmt.Errorf("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	respond.JSON(w, http.StatusOK, toHistoryDTO(breaker.History(limit)))
}

// BreakerResetHandler handles POST /api/resilience/breakers/{service}/reset requests.
type BreakerResetHandler struct {
	Registry *resilience.Registry
}

// ServeHTTP godoc
// @Summary      ブレーカーのリセット
// @Description  指定サービスのブレーカーを closed 状態に戻し、カウンタを初期化する
// @Tags         resilience
// @Param        service path string true "サービス名"
// @Success      204 "No Content"
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /api/resilience/breakers/{service}/reset [post]
func (h BreakerResetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.Reset(r.PathValue("service")); err != nil {
		respond.Error(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BreakerForceHandler handles POST /api/resilience/breakers/{service}/force requests.
// Forcing a state is an operator override for incident response; the breaker
// resumes normal transitions from the forced state.
type BreakerForceHandler struct {
	Registry *resilience.Registry
}

func (h BreakerForceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	breaker, ok := h.Registry.Lookup(r.PathValue("service"))
	if !ok {
		respond.Error(w, http.StatusNotFound, fmt.Errorf("unknown service"))
		return
	}

	state, err := resilience.ParseState(r.URL.Query().Get("state"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	breaker.ForceState(state)
	respond.JSON(w, http.StatusOK, toBreakerDTO(breaker.Status(), breaker.Statistics()))
}

// BreakerResetAllHandler handles POST /api/resilience/breakers/reset requests.
type BreakerResetAllHandler struct {
	Registry *resilience.Registry
}

func (h BreakerResetAllHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Registry.ResetAll()
	w.WriteHeader(http.StatusNoContent)
}

// ConfigHandler handles GET /api/resilience/config requests.
type ConfigHandler struct {
	Limiter *resilience.RateLimiter
}

func (h ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, toConfigDTO(h.Limiter.Config()))
}
