package http

import "net/http"

const (
	// JWT は通常 1KB 未満。余裕を持たせて 8KB まで許容する。
	maxAuthorizationHeader = 8192
	maxPathLength          = 2048
)

// InputValidation rejects requests with oversized Authorization headers
// or paths before they reach routing. Body size is limited separately by
// LimitRequestBody.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.Header.Get("Authorization")) > maxAuthorizationHeader {
				writeJSONError(w, http.StatusBadRequest, "authorization header too large")
				return
			}
			if len(r.URL.Path) > maxPathLength {
				writeJSONError(w, http.StatusRequestURITooLong, "URI too long")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
