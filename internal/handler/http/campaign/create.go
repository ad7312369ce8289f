package campaign

import (
	"encoding/json"
	"errors"
	"net/http"

	"campaign-relay/internal/domain/entity"
	"campaign-relay/internal/handler/http/respond"
	campaignUC "campaign-relay/internal/usecase/campaign"
)

type CreateHandler struct{ Svc *campaignUC.Service }

// ServeHTTP キャンペーン作成
// @Summary      キャンペーン作成
// @Description  新しいキャンペーンをdraft状態で作成します
// @Tags         campaigns
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        campaign body object true "作成するキャンペーン情報"
// @Success      201 {object} DTO
// @Failure      400 {string} string "Bad request - invalid input"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Router       /campaigns [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string             `json:"name"`
		Brief      string             `json:"brief"`
		Objective  string             `json:"objective"`
		Channels   []string           `json:"channels"`
		CopyConfig *entity.CopyConfig `json:"copy_config"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("name required"))
		return
	}
	if len(req.Channels) == 0 {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("at least one channel required"))
		return
	}
	created, err := h.Svc.Create(r.Context(), campaignUC.CreateInput{
		Name:       req.Name,
		Brief:      req.Brief,
		Objective:  req.Objective,
		Channels:   req.Channels,
		CopyConfig: req.CopyConfig,
	})
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(created))
}
