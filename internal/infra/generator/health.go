package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// HealthStatus reports the operational state of a copy generation backend.
type HealthStatus struct {
	Healthy     bool
	Latency     time.Duration
	Message     string
	CircuitOpen bool
}

// Health reports the Claude backend status. It inspects the circuit breaker
// state without issuing a billable API call.
func (c *Claude) Health(_ context.Context) (*HealthStatus, error) {
	start := time.Now()

	cbState := c.circuitBreaker.State()
	if cbState == gobreaker.StateOpen {
		return &HealthStatus{
			Healthy:     false,
			Latency:     0,
			Message:     "circuit breaker is open",
			CircuitOpen: true,
		}, nil
	}

	return &HealthStatus{
		Healthy:     true,
		Latency:     time.Since(start),
		Message:     fmt.Sprintf("circuit breaker state: %s", cbState),
		CircuitOpen: false,
	}, nil
}

// Health reports the OpenAI backend status. It inspects the circuit breaker
// state without issuing a billable API call.
func (o *OpenAI) Health(_ context.Context) (*HealthStatus, error) {
	start := time.Now()

	cbState := o.circuitBreaker.State()
	if cbState == gobreaker.StateOpen {
		return &HealthStatus{
			Healthy:     false,
			Latency:     0,
			Message:     "circuit breaker is open",
			CircuitOpen: true,
		}, nil
	}

	return &HealthStatus{
		Healthy:     true,
		Latency:     time.Since(start),
		Message:     fmt.Sprintf("circuit breaker state: %s", cbState),
		CircuitOpen: false,
	}, nil
}

// Health reports the no-op backend as always available.
func (n *NoOp) Health(_ context.Context) (*HealthStatus, error) {
	return &HealthStatus{
		Healthy: true,
		Message: "noop generator",
	}, nil
}
