package post

import (
	"errors"
	"net/http"

	"campaign-relay/internal/handler/http/pathutil"
	"campaign-relay/internal/handler/http/respond"
	postUC "campaign-relay/internal/usecase/post"
)

type GetHandler struct{ Svc *postUC.Service }

// ServeHTTP 投稿詳細取得
// @Summary      投稿詳細取得
// @Description  指定されたIDの投稿を取得します（キャンペーン名を含む）
// @Tags         posts
// @Produce      json
// @Param        id path int true "投稿ID"
// @Success      200 {object} DTO "投稿詳細"
// @Failure      400 {string} string "Bad request - invalid post ID"
// @Failure      404 {string} string "Not found - post not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /posts/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/posts/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	post, campaignName, err := h.Svc.GetWithCampaign(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, postUC.ErrInvalidPostID) {
			code = http.StatusBadRequest
		} else if errors.Is(err, postUC.ErrPostNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDTO(post, campaignName))
}
