package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campaign-relay/internal/pkg/config"
	"campaign-relay/pkg/resilience"
)

// HealthResponse represents a simple health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ChannelHealthResponse represents the health status of all delivery channels.
type ChannelHealthResponse struct {
	Healthy          bool            `json:"healthy"`
	Channels         []ChannelStatus `json:"channels"`
	RateLimitedHosts []string        `json:"rate_limited_hosts"`
	QueuedRequests   int             `json:"queued_requests"`
}

// ChannelStatus represents the breaker state of a single delivery channel.
type ChannelStatus struct {
	Name                string     `json:"name"`
	State               string     `json:"state"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	OpenedAt            *time.Time `json:"opened_at,omitempty"`
}

// startMetricsServer serves /metrics (Prometheus exposition), /health
// (liveness), and /health/channels (delivery channel readiness) on
// METRICS_PORT (default 9090). It runs in the background; cancelling ctx
// shuts it down gracefully within 5 seconds without blocking termination.
func startMetricsServer(ctx context.Context, logger *slog.Logger, registry *resilience.Registry, limiter *resilience.RateLimiter) *http.Server {
	port := getMetricsPort()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/health/channels", channelHealthHandler(registry, limiter))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in background goroutine
	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info("metrics server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	return server
}

// getMetricsPort reads METRICS_PORT, defaulting to 9090 on unset or
// invalid values.
func getMetricsPort() int {
	return config.Int("METRICS_PORT", 9090, func(v int) error {
		return config.ValidateIntRange(v, 1, 65535)
	}).Value
}

// healthHandler handles GET /health requests (liveness probe).
// Always returns 200 OK with {"status": "healthy"}.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "healthy"})
}

// channelHealthHandler creates a handler for GET /health/channels (readiness probe).
// Returns 200 OK while every channel breaker is closed or half-open.
// Returns 503 Service Unavailable when any breaker is open: the worker is
// alive but at least one channel is refusing deliveries.
func channelHealthHandler(registry *resilience.Registry, limiter *resilience.RateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses := registry.AllStatuses()

		channels := make([]ChannelStatus, 0, len(statuses))
		healthy := true

		for _, status := range statuses {
			channels = append(channels, ChannelStatus{
				Name:                status.Service,
				State:               status.State.String(),
				ConsecutiveFailures: status.ConsecutiveFailures,
				OpenedAt:            status.OpenedAt,
			})

			if status.State == resilience.StateOpen {
				healthy = false
			}
		}

		// Rate limit state is informational only: a throttled host clears
		// itself and should not flip readiness.
		rateLimited := make([]string, 0)
		queued := 0
		for host, hostStatus := range limiter.Status() {
			if hostStatus.RateLimited {
				rateLimited = append(rateLimited, host)
			}
			queued += hostStatus.QueueLength
		}

		statusCode := http.StatusOK
		if !healthy {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(ChannelHealthResponse{
			Healthy:          healthy,
			Channels:         channels,
			RateLimitedHosts: rateLimited,
			QueuedRequests:   queued,
		})
	}
}
