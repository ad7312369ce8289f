// Package publish provides the use case for delivering due posts to their
// channels. It claims scheduled posts, routes each one through the platform
// publisher for its channel, and records the outcome. Outbound calls are
// protected by the resilience layer inside the platform client; this package
// only classifies those errors for bookkeeping and metrics.
package publish

import "errors"

// Sentinel errors for publish use case operations.
var (
	// ErrNoPublisher indicates that a post's channel has no configured publisher.
	ErrNoPublisher = errors.New("no publisher configured for channel")

	// ErrAlreadyClaimed indicates that another worker claimed the post first.
	ErrAlreadyClaimed = errors.New("post already claimed")
)
