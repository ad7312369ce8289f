// Package resilience exposes the outbound-call protection layer over HTTP:
// per-host rate-limit state, circuit breaker state and history, and the
// effective limiter configuration. Read endpoints are open; anything that
// mutates breaker or limiter state requires authentication.
package resilience

import (
	"time"

	"campaign-relay/pkg/resilience"
)

// HostStatusDTO is the wire form of one host's rate-limit state.
type HostStatusDTO struct {
	Host         string     `json:"host" example:"hooks.slack.com"`
	RateLimited  bool       `json:"rate_limited" example:"true"`
	ResetAt      *time.Time `json:"reset_at,omitempty"`
	RetryAfterMS int64      `json:"retry_after_ms" example:"30000"`
	RetryCount   int        `json:"retry_count" example:"2"`
	QueueLength  int        `json:"queue_length" example:"4"`
}

func toHostStatusDTO(s resilience.HostStatus) HostStatusDTO {
	return HostStatusDTO{
		Host:         s.Host,
		RateLimited:  s.RateLimited,
		ResetAt:      s.ResetAt,
		RetryAfterMS: s.RetryAfter.Milliseconds(),
		RetryCount:   s.RetryCount,
		QueueLength:  s.QueueLength,
	}
}

// BreakerDTO combines a breaker's state snapshot with its call statistics.
type BreakerDTO struct {
	Service              string     `json:"service" example:"slack"`
	State                string     `json:"state" example:"open"`
	ConsecutiveFailures  int        `json:"consecutive_failures" example:"5"`
	ConsecutiveSuccesses int        `json:"consecutive_successes" example:"0"`
	OpenedAt             *time.Time `json:"opened_at,omitempty"`
	TimeUntilTrialMS     int64      `json:"time_until_trial_ms" example:"12000"`
	LastStateChange      time.Time  `json:"last_state_change"`
	TotalCalls           int64      `json:"total_calls" example:"120"`
	Successes            int64      `json:"successes" example:"110"`
	Failures             int64      `json:"failures" example:"10"`
	Rejections           int64      `json:"rejections" example:"3"`
	SuccessRate          float64    `json:"success_rate" example:"0.9167"`
}

func toBreakerDTO(status resilience.BreakerStatus, stats resilience.BreakerStatistics) BreakerDTO {
	return BreakerDTO{
		Service:              status.Service,
		State:                status.State.String(),
		ConsecutiveFailures:  status.ConsecutiveFailures,
		ConsecutiveSuccesses: status.ConsecutiveSuccesses,
		OpenedAt:             status.OpenedAt,
		TimeUntilTrialMS:     status.TimeUntilTrial.Milliseconds(),
		LastStateChange:      status.LastStateChange,
		TotalCalls:           stats.TotalCalls,
		Successes:            stats.Successes,
		Failures:             stats.Failures,
		Rejections:           stats.Rejections,
		SuccessRate:          stats.SuccessRate,
	}
}

// HistoryEntryDTO is one recorded call outcome.
type HistoryEntryDTO struct {
	Timestamp time.Time `json:"timestamp"`
	Outcome   string    `json:"outcome" example:"failure"`
	LatencyMS int64     `json:"latency_ms" example:"840"`
}

func toHistoryDTO(entries []resilience.HistoryEntry) []HistoryEntryDTO {
	out := make([]HistoryEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntryDTO{
			Timestamp: e.Timestamp,
			Outcome:   string(e.Outcome),
			LatencyMS: e.Latency.Milliseconds(),
		})
	}
	return out
}

// ConfigDTO is the serializable subset of the limiter configuration.
type ConfigDTO struct {
	MaxQueueSize        int              `json:"max_queue_size" example:"100"`
	DefaultRetryAfterMS int64            `json:"default_retry_after_ms" example:"60000"`
	BaseDelayMS         int64            `json:"base_delay_ms" example:"1000"`
	MaxDelayMS          int64            `json:"max_delay_ms" example:"60000"`
	BackoffMultiplier   float64          `json:"backoff_multiplier" example:"2"`
	DrainIntervalMS     int64            `json:"drain_interval_ms" example:"100"`
	PerHostDelayMS      map[string]int64 `json:"per_host_delay_ms"`
}

func toConfigDTO(c resilience.Config) ConfigDTO {
	perHost := make(map[string]int64, len(c.PerHostDelay))
	for host, delay := range c.PerHostDelay {
		perHost[host] = delay.Milliseconds()
	}
	return ConfigDTO{
		MaxQueueSize:        c.MaxQueueSize,
		DefaultRetryAfterMS: c.DefaultRetryAfter.Milliseconds(),
		BaseDelayMS:         c.BaseDelay.Milliseconds(),
		MaxDelayMS:          c.MaxDelay.Milliseconds(),
		BackoffMultiplier:   c.BackoffMultiplier,
		DrainIntervalMS:     c.DrainInterval.Milliseconds(),
		PerHostDelayMS:      perHost,
	}
}
