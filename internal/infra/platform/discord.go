package platform

import (
	"context"
	"log/slog"
	"time"

	"campaign-relay/internal/domain/entity"
	"campaign-relay/internal/utils/text"

	"github.com/google/uuid"
)

// DiscordConfig contains configuration for Discord webhook delivery.
type DiscordConfig struct {
	// Enabled indicates whether Discord delivery is enabled
	Enabled bool

	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	// Timeout bounds one publish call end to end, including queue waits
	Timeout time.Duration
}

// DiscordPublisher delivers post copy to Discord via webhook.
type DiscordPublisher struct {
	config DiscordConfig
	client *Client
}

// discordService keys the Discord circuit breaker in the registry.
const discordService = "discord"

// NewDiscordPublisher creates a new DiscordPublisher with the specified
// configuration. Discord's webhook quota (30 requests per minute) is enforced
// by the shared limiter's per-host pacing table rather than inside the
// publisher.
func NewDiscordPublisher(config DiscordConfig, client *Client) *DiscordPublisher {
	return &DiscordPublisher{
		config: config,
		client: client,
	}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	URL         string             `json:"url"`
	Color       int                `json:"color"`
	Footer      DiscordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	// Discord limits
	maxTitleLength       = 256
	maxDescriptionLength = 4096
	truncationSuffix     = "..."

	// Discord blue color (#5865F2)
	discordBlueColor = 5793266
)

// buildEmbedPayload creates a Discord webhook payload from a post and its campaign.
//
// The payload includes:
//   - Title: Post headline (truncated to 256 chars if needed)
//   - Description: Post body copy (truncated to 4093 chars + "..." if needed)
//   - URL: Post landing link
//   - Color: Discord blue (#5865F2)
//   - Footer: Campaign name
//   - Timestamp: Scheduled delivery time in RFC3339 format
func (d *DiscordPublisher) buildEmbedPayload(post *entity.Post, campaign *entity.Campaign) DiscordWebhookPayload {
	title := post.Headline
	if text.CountRunes(title) > maxTitleLength {
		title = text.TruncateRunes(title, maxTitleLength)
	}

	description := truncateText(post.Body, maxDescriptionLength, truncationSuffix)

	embed := DiscordEmbed{
		Title:       title,
		Description: description,
		URL:         post.LinkURL,
		Color:       discordBlueColor,
		Footer: DiscordEmbedFooter{
			Text: campaign.Name,
		},
		Timestamp: post.ScheduledAt.Format(time.RFC3339),
	}

	return DiscordWebhookPayload{
		Embeds: []DiscordEmbed{embed},
	}
}

// PublishPost delivers a post to Discord.
// This method implements the Publisher interface.
//
// It performs the following steps:
//  1. Generate unique request_id for tracing
//  2. Add request_id to context and apply the configured timeout
//  3. Build the embed payload
//  4. Send the webhook request through the shared client (limiter + breaker)
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - post: The post to deliver (must not be nil)
//   - campaign: The campaign the post belongs to (must not be nil)
//
// Returns:
//   - error: Non-nil if delivery failed; throttle and breaker errors are
//     surfaced unchanged so the caller can reschedule
func (d *DiscordPublisher) PublishPost(ctx context.Context, post *entity.Post, campaign *entity.Campaign) error {
	// Generate unique request ID for tracing
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	slog.Info("Starting Discord delivery",
		slog.String("request_id", requestID),
		slog.Int64("post_id", post.ID),
		slog.Int64("campaign_id", campaign.ID),
		slog.Time("scheduled_at", post.ScheduledAt))

	payload := d.buildEmbedPayload(post, campaign)
	return d.client.PostJSON(ctx, discordService, d.config.WebhookURL, payload)
}
