package post

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"campaign-relay/internal/handler/http/respond"
	"campaign-relay/internal/infra/platform"
	"campaign-relay/internal/observability/metrics"
	postUC "campaign-relay/internal/usecase/post"
)

// PreviewFetcher fetches link metadata for a post's landing URL.
type PreviewFetcher interface {
	FetchPreview(ctx context.Context, rawURL string) (*platform.LinkPreview, error)
}

// PreviewHandler handles GET /posts/{id}/preview requests.
// It fetches the OpenGraph metadata of the post's link so editors can see
// what receivers will unfurl before the post goes out.
type PreviewHandler struct {
	Svc     *postUC.Service
	Fetcher PreviewFetcher
}

// ServeHTTP godoc
// @Summary      投稿リンクのプレビュー取得
// @Description  投稿のリンク先ページから OpenGraph メタデータを取得する
// @Tags         posts
// @Produce      json
// @Param        id path int true "投稿ID"
// @Success      200 {object} platform.LinkPreview
// @Failure      404 {object} map[string]string
// @Failure      422 {object} map[string]string "投稿にリンクが設定されていない"
// @Router       /posts/{id}/preview [get]
func (h PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, fmt.Errorf("invalid post ID"))
		return
	}

	post, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, postUC.ErrPostNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}

	if post.LinkURL == "" {
		metrics.RecordLinkPreviewSkipped()
		respond.Error(w, http.StatusUnprocessableEntity, fmt.Errorf("post has no link"))
		return
	}

	start := time.Now()
	preview, err := h.Fetcher.FetchPreview(r.Context(), post.LinkURL)
	if err != nil {
		metrics.RecordLinkPreviewFailed(time.Since(start))
		respond.SafeError(w, http.StatusBadGateway, err)
		return
	}
	metrics.RecordLinkPreviewSuccess(time.Since(start))

	respond.JSON(w, http.StatusOK, preview)
}
