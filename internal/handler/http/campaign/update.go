package campaign

import (
	"encoding/json"
	"errors"
	"net/http"

	"campaign-relay/internal/domain/entity"
	"campaign-relay/internal/handler/http/pathutil"
	"campaign-relay/internal/handler/http/respond"
	campaignUC "campaign-relay/internal/usecase/campaign"
)

type UpdateHandler struct{ Svc *campaignUC.Service }

// ServeHTTP キャンペーン更新
// @Summary      キャンペーン更新
// @Description  既存のキャンペーンを部分更新します（指定したフィールドのみ）
// @Tags         campaigns
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "キャンペーンID"
// @Param        campaign body object true "更新するキャンペーン情報"
// @Success      204 "No Content"
// @Failure      400 {string} string "Bad request - invalid input"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      404 {string} string "Not found - campaign not found"
// @Router       /campaigns/{id} [put]
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/campaigns/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Name       *string            `json:"name"`
		Brief      *string            `json:"brief"`
		Objective  *string            `json:"objective"`
		Status     *string            `json:"status"`
		Channels   []string           `json:"channels"`
		CopyConfig *entity.CopyConfig `json:"copy_config"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	err = h.Svc.Update(r.Context(), campaignUC.UpdateInput{
		ID:         id,
		Name:       req.Name,
		Brief:      req.Brief,
		Objective:  req.Objective,
		Status:     req.Status,
		Channels:   req.Channels,
		CopyConfig: req.CopyConfig,
	})
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, campaignUC.ErrCampaignNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
