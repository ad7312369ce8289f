package campaign

import (
	"errors"
	"net/http"

	"campaign-relay/internal/handler/http/pathutil"
	"campaign-relay/internal/handler/http/respond"
	campaignUC "campaign-relay/internal/usecase/campaign"
)

type DeleteHandler struct{ Svc *campaignUC.Service }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/campaigns/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, campaignUC.ErrCampaignNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
