// Package platform delivers scheduled posts to external channels.
// It defines the Publisher interface which allows different delivery targets
// (Slack, Discord, generic webhooks, etc.) to be used interchangeably through
// dependency injection.
//
// All outbound HTTP traffic funnels through a shared Client that routes every
// call via the rate limiter and the per-service circuit breaker, so individual
// publishers only build payloads and never talk to the network directly.
package platform

import (
	"context"

	"campaign-relay/internal/domain/entity"
)

// Publisher is an interface for delivering a post to one channel.
// Implementations should handle error classification and logging internally;
// throttling and breaker state are managed by the shared Client.
type Publisher interface {
	// PublishPost delivers one scheduled post to the publisher's channel.
	// The campaign provides branding context (name, objective) for the
	// rendered payload.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - post: The post to deliver (must not be nil)
	//   - campaign: The campaign the post belongs to (must not be nil)
	//
	// Returns:
	//   - error: Non-nil if delivery failed after all retry attempts
	//
	// Implementations should:
	//   - Generate a unique request ID for tracing
	//   - Route the HTTP call through the shared Client
	//   - Surface throttle and breaker errors unchanged so callers can
	//     reschedule instead of blocking
	//   - Log all attempts with the request ID for debugging
	//   - Respect context cancellation
	PublishPost(ctx context.Context, post *entity.Post, campaign *entity.Campaign) error
}
