package campaign

import (
	"errors"
	"net/http"
	"net/url"

	"campaign-relay/internal/handler/http/respond"
	campaignUC "campaign-relay/internal/usecase/campaign"
)

type SearchHandler struct{ Svc *campaignUC.Service }

func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	keyword := parseKeyword(r.URL)
	if keyword == "" {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("keyword query param required"))
		return
	}
	list, err := h.Svc.Search(r.Context(), keyword)
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

func parseKeyword(u *url.URL) string {
	return u.Query().Get("keyword")
}
