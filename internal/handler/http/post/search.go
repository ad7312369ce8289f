package post

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"campaign-relay/internal/domain/entity"
	"campaign-relay/internal/handler/http/respond"
	"campaign-relay/internal/pkg/search"
	"campaign-relay/internal/pkg/validation"
	"campaign-relay/internal/repository"
	postUC "campaign-relay/internal/usecase/post"
)

type SearchHandler struct{ Svc *postUC.Service }

// ServeHTTP 投稿検索
// @Summary      投稿検索
// @Description  マルチキーワードで投稿を検索します（AND論理）
// @Tags         posts
// @Produce      json
// @Param        keyword query string true "検索キーワード（スペース区切り）"
// @Param        campaign_id query int false "キャンペーンIDでフィルタ"
// @Param        channel query string false "チャンネルでフィルタ"
// @Param        status query string false "ステータスでフィルタ"
// @Param        from query string false "配信予定日時の開始（ISO 8601）"
// @Param        to query string false "配信予定日時の終了（ISO 8601）"
// @Success      200 {array} DTO "検索結果"
// @Failure      400 {string} string "Bad request"
// @Failure      500 {string} string "Server error"
// @Router       /posts/search [get]
func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	kw := r.URL.Query().Get("keyword")
	if kw == "" {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("keyword query param required"))
		return
	}

	keywords, err := search.ParseKeywords(kw, search.DefaultMaxKeywordCount, search.DefaultMaxKeywordLength)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest,
			fmt.Errorf("invalid keyword: %w", err))
		return
	}

	filters, err := parseFilters(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	list, err := h.Svc.SearchWithFilters(r.Context(), keywords, filters)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]DTO, 0, len(list))
	for _, p := range list {
		out = append(out, toDTO(p, ""))
	}
	respond.JSON(w, http.StatusOK, out)
}

func parseFilters(r *http.Request) (repository.PostSearchFilters, error) {
	var filters repository.PostSearchFilters

	if idStr := r.URL.Query().Get("campaign_id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id <= 0 {
			return filters, errors.New("invalid campaign_id: must be a positive integer")
		}
		filters.CampaignID = &id
	}

	if ch := r.URL.Query().Get("channel"); ch != "" {
		if !entity.IsValidChannel(ch) {
			return filters, fmt.Errorf("invalid channel: %s", ch)
		}
		filters.Channel = &ch
	}

	if st := r.URL.Query().Get("status"); st != "" {
		status := entity.PostStatus(st)
		if !status.IsValid() {
			return filters, fmt.Errorf("invalid status: %s", st)
		}
		filters.Status = &status
	}

	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		from, err := validation.ParseDateISO8601(fromStr)
		if err != nil {
			return filters, fmt.Errorf("invalid from date: %w", err)
		}
		filters.From = from
	}

	if toStr := r.URL.Query().Get("to"); toStr != "" {
		to, err := validation.ParseDateISO8601(toStr)
		if err != nil {
			return filters, fmt.Errorf("invalid to date: %w", err)
		}
		filters.To = to
	}

	if filters.From != nil && filters.To != nil && filters.From.After(*filters.To) {
		return filters, errors.New("invalid date range: from date must be before or equal to to date")
	}

	return filters, nil
}
