package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"campaign-relay/internal/infra/generator"
)

// GeneratorHealthChecker reports the operational state of a copy generation
// backend. All generator providers implement it.
type GeneratorHealthChecker interface {
	Health(ctx context.Context) (*generator.HealthStatus, error)
}

// GeneratorHealthHandler provides health check endpoints for the copy
// generation backend.
type GeneratorHealthHandler struct {
	provider GeneratorHealthChecker
}

// NewGeneratorHealthHandler creates a new generator health check handler.
func NewGeneratorHealthHandler(provider GeneratorHealthChecker) *GeneratorHealthHandler {
	return &GeneratorHealthHandler{
		provider: provider,
	}
}

// GeneratorHealthResponse represents the response structure for generator health endpoints.
type GeneratorHealthResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	Latency     string `json:"latency,omitempty"`
	CircuitOpen bool   `json:"circuit_open,omitempty"`
	Ready       *bool  `json:"ready,omitempty"`
}

// Health returns basic health status of the copy generation backend.
// GET /health/generator
// Returns 200 if healthy, 503 if unavailable.
func (h *GeneratorHealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, err := h.provider.Health(ctx)

	w.Header().Set("Content-Type", "application/json")

	// Handle error or nil status
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		response := GeneratorHealthResponse{
			Status:  "unhealthy",
			Message: err.Error(),
		}
		if encErr := json.NewEncoder(w).Encode(response); encErr != nil {
			slog.Error("failed to encode generator health response", slog.Any("error", encErr))
		}
		return
	}

	// Handle unhealthy status
	if status == nil || !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		response := GeneratorHealthResponse{
			Status: "unhealthy",
		}
		if status != nil {
			response.Message = status.Message
			response.CircuitOpen = status.CircuitOpen
		}
		if encErr := json.NewEncoder(w).Encode(response); encErr != nil {
			slog.Error("failed to encode generator health response", slog.Any("error", encErr))
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	response := GeneratorHealthResponse{
		Status:  "healthy",
		Latency: status.Latency.String(),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("failed to encode generator health response", slog.Any("error", err))
	}
}

// Ready returns readiness for traffic (checks circuit breaker state).
// GET /ready/generator
// Returns 200 if ready to serve traffic, 503 if circuit breaker is open.
// Note: Ready only checks circuit breaker state, not overall health.
// A backend can be unhealthy but still ready if the circuit is closed.
func (h *GeneratorHealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, err := h.provider.Health(ctx)

	w.Header().Set("Content-Type", "application/json")

	// Handle nil status (error with no status returned)
	if status == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		ready := false
		msg := "health check failed"
		if err != nil {
			msg = err.Error()
		}
		response := GeneratorHealthResponse{
			Ready:   &ready,
			Message: msg,
		}
		if encErr := json.NewEncoder(w).Encode(response); encErr != nil {
			slog.Error("failed to encode generator ready response", slog.Any("error", encErr))
		}
		return
	}

	// Check circuit breaker state (determines readiness, not health)
	if status.CircuitOpen {
		w.WriteHeader(http.StatusServiceUnavailable)
		ready := false
		response := GeneratorHealthResponse{
			Ready:   &ready,
			Message: "circuit breaker open",
		}
		if encErr := json.NewEncoder(w).Encode(response); encErr != nil {
			slog.Error("failed to encode generator ready response", slog.Any("error", encErr))
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	ready := true
	response := GeneratorHealthResponse{
		Ready: &ready,
	}
	if encErr := json.NewEncoder(w).Encode(response); encErr != nil {
		slog.Error("failed to encode generator ready response", slog.Any("error", encErr))
	}
}
