package campaign

import (
	"net/http"

	"campaign-relay/internal/domain/entity"
	"campaign-relay/internal/handler/http/respond"
	campaignUC "campaign-relay/internal/usecase/campaign"
)

type ListHandler struct{ Svc *campaignUC.Service }

// ServeHTTP lists campaigns. With ?status=active only campaigns eligible
// for scheduling and publishing are returned.
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		list []*entity.Campaign
		err  error
	)
	if r.URL.Query().Get("status") == "active" {
		list, err = h.Svc.ListActive(r.Context())
	} else {
		list, err = h.Svc.List(r.Context())
	}
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, 0, len(list))
	for _, c := range list {
		out = append(out, toDTO(c))
	}
	respond.JSON(w, http.StatusOK, out)
}
