// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Campaign and Post, along with
// their validation rules and domain-specific errors.
package entity

import "time"

// PostStatus represents the lifecycle state of a scheduled post.
type PostStatus string

// Post lifecycle states.
const (
	PostStatusDraft      PostStatus = "draft"
	PostStatusScheduled  PostStatus = "scheduled"
	PostStatusPublishing PostStatus = "publishing"
	PostStatusPublished  PostStatus = "published"
	PostStatusFailed     PostStatus = "failed"
)

// IsValid reports whether the status is one of the known lifecycle states.
func (s PostStatus) IsValid() bool {
	switch s {
	case PostStatusDraft, PostStatusScheduled, PostStatusPublishing,
		PostStatusPublished, PostStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the post will receive no further publish attempts.
func (s PostStatus) Terminal() bool {
	return s == PostStatusPublished
}

// Post represents one piece of copy scheduled for delivery on one channel.
// It contains the generated copy, its delivery window, and publish bookkeeping.
type Post struct {
	ID          int64
	CampaignID  int64
	Channel     string
	Headline    string
	Body        string
	LinkURL     string
	Status      PostStatus
	Attempts    int
	ScheduledAt time.Time
	PublishedAt *time.Time
	CreatedAt   time.Time
}

// Due reports whether the post is scheduled and its delivery time has arrived.
func (p *Post) Due(now time.Time) bool {
	return p.Status == PostStatusScheduled && !p.ScheduledAt.After(now)
}

// IsValidChannel reports whether ch names a supported delivery channel.
func IsValidChannel(ch string) bool {
	switch ch {
	case "slack", "discord", "webhook":
		return true
	}
	return false
}
