package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestInputValidation(t *testing.T) {
	handler := InputValidation()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("normal request passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
		req.Header.Set("Authorization", "Bearer "+strings.Repeat("a", 512))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("oversized authorization header rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
		req.Header.Set("Authorization", "Bearer "+strings.Repeat("a", maxAuthorizationHeader))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
		if !strings.Contains(rec.Body.String(), "authorization header too large") {
			t.Errorf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("oversized path rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/posts/"+strings.Repeat("x", maxPathLength), nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusRequestURITooLong {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusRequestURITooLong)
		}
	})

	t.Run("path at the limit passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/"+strings.Repeat("x", maxPathLength-1), nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})
}
