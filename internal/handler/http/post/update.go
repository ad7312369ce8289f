package post

import (
	"encoding/json"
	"errors"
	"net/http"

	"campaign-relay/internal/handler/http/pathutil"
	"campaign-relay/internal/handler/http/respond"
	postUC "campaign-relay/internal/usecase/post"
)

type UpdateHandler struct{ Svc *postUC.Service }

// ServeHTTP 投稿更新
// @Summary      投稿更新
// @Description  既存の投稿のコピーを部分更新します
// @Tags         posts
// @Security     BearerAuth
// @Accept       json
// @Param        id path int true "投稿ID"
// @Param        post body object true "更新する投稿情報"
// @Success      204 "No Content"
// @Failure      400 {string} string "Bad request - invalid input"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      404 {string} string "Not found - post not found"
// @Router       /posts/{id} [put]
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/posts/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Headline *string `json:"headline"`
		Body     *string `json:"body"`
		LinkURL  *string `json:"link_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	err = h.Svc.Update(r.Context(), postUC.UpdateInput{
		ID:       id,
		Headline: req.Headline,
		Body:     req.Body,
		LinkURL:  req.LinkURL,
	})
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, postUC.ErrPostNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
