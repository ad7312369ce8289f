// Package post provides use cases for managing scheduled posts.
// It implements business logic for drafting copy, scheduling, updating,
// and querying posts, including duplicate-copy detection backed by
// embedding similarity search.
package post

import "errors"

// Sentinel errors for post use case operations.
var (
	// ErrPostNotFound indicates that the requested post was not found.
	ErrPostNotFound = errors.New("post not found")

	// ErrInvalidPostID indicates that the provided post ID is invalid.
	// Post IDs must be positive integers.
	ErrInvalidPostID = errors.New("invalid post ID")

	// ErrDuplicateCopy indicates that generated copy is an exact or
	// near-duplicate of an existing post in the same campaign.
	ErrDuplicateCopy = errors.New("duplicate post copy")

	// ErrCampaignNotActive indicates that drafting or scheduling was
	// attempted for a campaign that is not in active status.
	ErrCampaignNotActive = errors.New("campaign is not active")

	// ErrNotSchedulable indicates that the post is not in a state that
	// allows scheduling (only draft and failed posts can be scheduled).
	ErrNotSchedulable = errors.New("post cannot be scheduled from its current state")
)
