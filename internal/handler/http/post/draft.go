package post

import (
	"encoding/json"
	"errors"
	"net/http"

	"campaign-relay/internal/handler/http/respond"
	"campaign-relay/internal/observability/metrics"
	campaignUC "campaign-relay/internal/usecase/campaign"
	postUC "campaign-relay/internal/usecase/post"
)

type DraftHandler struct{ Svc *postUC.Service }

// ServeHTTP 投稿ドラフト作成
// @Summary      投稿ドラフト作成
// @Description  キャンペーンのブリーフからコピーを生成し、draft状態の投稿を作成します
// @Tags         posts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        post body object true "ドラフト作成パラメータ"
// @Success      201 {object} DTO "作成されたドラフト"
// @Failure      400 {string} string "Bad request - invalid input"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      404 {string} string "Not found - campaign not found"
// @Failure      409 {string} string "Conflict - duplicate copy"
// @Failure      422 {string} string "Unprocessable - campaign not active"
// @Router       /posts [post]
func (h DraftHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CampaignID int64    `json:"campaign_id"`
		Channel    string   `json:"channel"`
		LinkURL    string   `json:"link_url"`
		Seeds      []string `json:"seeds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if req.CampaignID == 0 || req.Channel == "" {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("campaign_id and channel are required"))
		return
	}

	created, err := h.Svc.Draft(r.Context(), postUC.DraftInput{
		CampaignID: req.CampaignID,
		Channel:    req.Channel,
		LinkURL:    req.LinkURL,
		Seeds:      req.Seeds,
	})
	if err != nil {
		code := http.StatusBadRequest
		result := "error"
		switch {
		case errors.Is(err, campaignUC.ErrCampaignNotFound):
			code = http.StatusNotFound
		case errors.Is(err, postUC.ErrDuplicateCopy):
			code = http.StatusConflict
			result = "duplicate"
		case errors.Is(err, postUC.ErrCampaignNotActive):
			code = http.StatusUnprocessableEntity
		}
		metrics.RecordPostDrafted(req.Channel, result)
		respond.SafeError(w, code, err)
		return
	}

	metrics.RecordPostDrafted(req.Channel, "created")
	respond.JSON(w, http.StatusCreated, toDTO(created, ""))
}
