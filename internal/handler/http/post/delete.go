package post

import (
	"errors"
	"net/http"

	"campaign-relay/internal/handler/http/pathutil"
	"campaign-relay/internal/handler/http/respond"
	postUC "campaign-relay/internal/usecase/post"
)

type DeleteHandler struct{ Svc *postUC.Service }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/posts/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, postUC.ErrPostNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
