package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestHealthServer() *HealthServer {
	return NewHealthServer(":0", slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func probe(t *testing.T, handler http.HandlerFunc, path string) (int, healthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec.Code, body
}

func TestHealthServer_Liveness(t *testing.T) {
	server := newTestHealthServer()

	// Liveness answers 200 regardless of readiness.
	code, body := probe(t, server.handleLiveness, "/health")
	if code != http.StatusOK {
		t.Errorf("liveness = %d, want 200", code)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}

func TestHealthServer_ReadinessTransitions(t *testing.T) {
	server := newTestHealthServer()

	code, body := probe(t, server.handleReadiness, "/health/ready")
	if code != http.StatusServiceUnavailable {
		t.Errorf("readiness before SetReady = %d, want 503", code)
	}
	if body.Status != "not ready" {
		t.Errorf("status = %q, want not ready", body.Status)
	}

	server.SetReady(true)
	if code, _ := probe(t, server.handleReadiness, "/health/ready"); code != http.StatusOK {
		t.Errorf("readiness after SetReady(true) = %d, want 200", code)
	}

	// Draining: the worker marks itself not ready before shutdown.
	server.SetReady(false)
	if code, _ := probe(t, server.handleReadiness, "/health/ready"); code != http.StatusServiceUnavailable {
		t.Errorf("readiness after SetReady(false) = %d, want 503", code)
	}
}

func TestHealthServer_GracefulShutdown(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	server := NewHealthServer("localhost:19094", logger)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() { errChan <- server.Start(ctx) }()

	// Wait for the listener to come up.
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get("http://localhost:19094/health")
		if err == nil {
			_ = resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()

	select {
	case err := <-errChan:
		if err != http.ErrServerClosed {
			t.Errorf("Start returned %v, want http.ErrServerClosed", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("shutdown timeout")
	}

	if _, err := http.Get("http://localhost:19094/health"); err == nil {
		t.Error("expected connection error after shutdown")
	}
}
