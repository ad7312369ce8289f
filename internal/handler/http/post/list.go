package post

import (
	"log/slog"
	"net/http"
	"time"

	"campaign-relay/internal/common/pagination"
	"campaign-relay/internal/handler/http/requestid"
	"campaign-relay/internal/handler/http/respond"
	"campaign-relay/internal/observability/logging"
	postUC "campaign-relay/internal/usecase/post"
)

type ListHandler struct {
	Svc    *postUC.Service
	Logger *slog.Logger
}

// Response is the paginated envelope returned by the list endpoint.
type Response struct {
	Data       []DTO               `json:"data"`
	Pagination pagination.Metadata `json:"pagination"`
}

// ServeHTTP 投稿一覧取得
// @Summary      投稿一覧取得（ページネーション対応）
// @Description  投稿をキャンペーン名付きで取得します。ページネーションパラメータを指定して、ページ単位で取得できます。
// @Tags         posts
// @Produce      json
// @Param        page   query    int  false  "ページ番号 (1-based)" default(1) minimum(1)
// @Param        limit  query    int  false  "1ページあたりの件数" default(20) minimum(1) maximum(100)
// @Success      200 {object} Response "ページネーション付き投稿一覧"
// @Failure      400 {string} string "Invalid query parameters"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /posts [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	reqID := requestid.FromContext(ctx)
	logger := logging.WithRequestID(ctx, h.Logger)

	params, err := pagination.ParseQueryParams(r)
	if err != nil {
		logger.Warn("Invalid pagination parameters",
			"error", err.Error(),
			"request_id", reqID)
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.Svc.ListWithCampaignPaginated(ctx, params)
	if err != nil {
		logger.Error("Failed to list posts",
			"error", err.Error(),
			"page", params.Page,
			"limit", params.Limit,
			"request_id", reqID)
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(result.Data))
	for _, item := range result.Data {
		dtos = append(dtos, toDTO(item.Post, item.CampaignName))
	}

	logger.Info("Paginated post list",
		"page", params.Page,
		"limit", params.Limit,
		"returned_count", len(dtos),
		"duration_ms", time.Since(startTime).Milliseconds(),
		"request_id", reqID)

	respond.JSON(w, http.StatusOK, Response{
		Data:       dtos,
		Pagination: result.Pagination,
	})
}
