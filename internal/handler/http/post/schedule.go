package post

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"campaign-relay/internal/handler/http/respond"
	postUC "campaign-relay/internal/usecase/post"
)

type ScheduleHandler struct{ Svc *postUC.Service }

// ServeHTTP 投稿スケジュール設定
// @Summary      投稿スケジュール設定
// @Description  draftまたはfailed状態の投稿を指定時刻にスケジュールします
// @Tags         posts
// @Security     BearerAuth
// @Accept       json
// @Param        id path int true "投稿ID"
// @Param        schedule body object true "配信時刻（RFC3339）"
// @Success      204 "No Content"
// @Failure      400 {string} string "Bad request - invalid input"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      404 {string} string "Not found - post not found"
// @Failure      409 {string} string "Conflict - post is publishing or already published"
// @Router       /posts/{id}/schedule [post]
func (h ScheduleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("invalid post id"))
		return
	}

	var req struct {
		ScheduledAt string `json:"scheduled_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if req.ScheduledAt == "" {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("scheduled_at required"))
		return
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("scheduled_at must be in RFC3339 format"))
		return
	}

	if err := h.Svc.Schedule(r.Context(), id, at); err != nil {
		code := http.StatusBadRequest
		switch {
		case errors.Is(err, postUC.ErrPostNotFound):
			code = http.StatusNotFound
		case errors.Is(err, postUC.ErrNotSchedulable):
			code = http.StatusConflict
		}
		respond.SafeError(w, code, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
