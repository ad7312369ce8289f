package platform

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"campaign-relay/internal/domain/entity"

	"github.com/google/uuid"
)

// SlackConfig contains configuration for Slack webhook delivery.
type SlackConfig struct {
	// Enabled indicates whether Slack delivery is enabled
	Enabled bool

	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	// Timeout bounds one publish call end to end, including queue waits
	Timeout time.Duration
}

// SlackPublisher delivers post copy to Slack via Incoming Webhook.
type SlackPublisher struct {
	config SlackConfig
	client *Client
}

// slackService keys the Slack circuit breaker in the registry.
const slackService = "slack"

// NewSlackPublisher creates a new SlackPublisher with the specified
// configuration. All HTTP traffic goes through client, so the Slack host
// shares rate limit state with every other caller of the same limiter.
func NewSlackPublisher(config SlackConfig, client *Client) *SlackPublisher {
	return &SlackPublisher{
		config: config,
		client: client,
	}
}

// SlackWebhookPayload represents the JSON payload sent to Slack webhook using Block Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`   // Fallback text (required)
	Blocks []SlackBlock `json:"blocks"` // Rich formatting blocks
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`               // "section", "context", "divider"
	Text     *SlackTextObject  `json:"text,omitempty"`     // Text content (for section)
	Elements []SlackTextObject `json:"elements,omitempty"` // Elements (for context)
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"` // Actual text content
}

const (
	// Slack Block Kit limits
	maxSectionTextLength = 3000
	maxContextTextLength = 2000
	maxFallbackLength    = 150

	// Truncation suffix
	slackTruncationSuffix = "..."
)

// buildBlockKitPayload creates a Slack webhook payload from a post and its campaign.
//
// The payload includes:
//   - Text: Fallback text for notifications (headline + campaign name)
//   - Section Block: Headline (bold, linked when the post carries a URL) + body copy
//   - Context Block: Campaign name + scheduled delivery time
//
// Body copy is truncated to 3000 characters if needed to fit Block Kit limits.
func (s *SlackPublisher) buildBlockKitPayload(post *entity.Post, campaign *entity.Campaign) SlackWebhookPayload {
	// Build fallback text (used in notifications)
	fallbackText := fmt.Sprintf("%s - %s", post.Headline, campaign.Name)
	fallbackText = truncateText(fallbackText, maxFallbackLength, slackTruncationSuffix)

	// Build section block text (headline with link + body copy)
	// Format: *<url|headline>*\n\nbody
	headline := post.Headline
	if post.LinkURL != "" {
		headline = fmt.Sprintf("<%s|%s>", post.LinkURL, post.Headline)
	}
	sectionText := fmt.Sprintf("*%s*\n\n%s", headline, post.Body)

	// Truncate section text if needed
	sectionText = truncateText(sectionText, maxSectionTextLength, slackTruncationSuffix)

	// Build context block text (campaign + delivery slot)
	contextText := fmt.Sprintf("%s • %s", campaign.Name, post.ScheduledAt.Format(time.RFC3339))
	contextText = truncateText(contextText, maxContextTextLength, slackTruncationSuffix)

	// Create section block
	sectionBlock := SlackBlock{
		Type: "section",
		Text: &SlackTextObject{
			Type: "mrkdwn",
			Text: sectionText,
		},
	}

	// Create context block
	contextBlock := SlackBlock{
		Type: "context",
		Elements: []SlackTextObject{
			{
				Type: "mrkdwn",
				Text: contextText,
			},
		},
	}

	return SlackWebhookPayload{
		Text:   fallbackText,
		Blocks: []SlackBlock{sectionBlock, contextBlock},
	}
}

// PublishPost delivers a post to Slack.
// This method implements the Publisher interface.
//
// It performs the following steps:
//  1. Generate unique request_id for tracing
//  2. Add request_id to context and apply the configured timeout
//  3. Build the Block Kit payload
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
func (s *SlackPublisher) PublishPost(ctx context.Context, post *entity.Post, campaign *entity.Campaign) error {
	// Generate unique request ID for tracing
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	slog.Info("Starting Slack delivery",
		slog.String("request_id", requestID),
		slog.Int64("post_id", post.ID),
		slog.Int64("campaign_id", campaign.ID),
		slog.Time("scheduled_at", post.ScheduledAt))

	payload := s.buildBlockKitPayload(post, campaign)
	return s.client.PostJSON(ctx, slackService, s.config.WebhookURL, payload)
}
