package platform

import (
	"context"

	"campaign-relay/internal/domain/entity"
)

// NoOpPublisher is a no-operation implementation of the Publisher interface.
// It backs dry-run mode and disabled channels so callers never need nil
// checks. This follows the Null Object pattern.
type NoOpPublisher struct{}

// NewNoOpPublisher creates a new NoOpPublisher instance.
func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

// PublishPost does nothing and returns nil immediately.
// This allows a channel to be disabled without changing the code flow.
func (n *NoOpPublisher) PublishPost(ctx context.Context, post *entity.Post, campaign *entity.Campaign) error {
	// No-op: intentionally does nothing
	return nil
}
