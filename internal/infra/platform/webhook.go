package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"campaign-relay/internal/domain/entity"

	"github.com/google/uuid"
)

// WebhookConfig contains configuration for generic webhook delivery.
type WebhookConfig struct {
	// Enabled indicates whether webhook delivery is enabled
	Enabled bool

	// URL is the endpoint that receives the publish event
	URL string

	// Timeout bounds one publish call end to end, including queue waits
	Timeout time.Duration
}

// WebhookPublisher delivers post copy to an arbitrary HTTP endpoint as a
// JSON event. It backs the "webhook" channel for receivers that are neither
// Slack nor Discord, such as in-house gateways or automation tools.
type WebhookPublisher struct {
	config WebhookConfig
	client *Client
	tokens *TokenSource
}

// webhookService keys the webhook circuit breaker in the registry.
const webhookService = "webhook"

// NewWebhookPublisher creates a new WebhookPublisher with the specified
// configuration. When tokens is non-nil every request carries a bearer token
// obtained from it; pass nil for endpoints that authenticate via the URL.
func NewWebhookPublisher(config WebhookConfig, client *Client, tokens *TokenSource) *WebhookPublisher {
	return &WebhookPublisher{
		config: config,
		client: client,
		tokens: tokens,
	}
}

// WebhookEvent is the JSON envelope delivered to the configured endpoint.
type WebhookEvent struct {
	Event    string          `json:"event"`
	SentAt   string          `json:"sent_at"`
	Campaign WebhookCampaign `json:"campaign"`
	Post     WebhookPost     `json:"post"`
}

// WebhookCampaign carries the campaign fields receivers key on.
type WebhookCampaign struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Objective string `json:"objective"`
}

// WebhookPost carries the post copy and its delivery slot.
type WebhookPost struct {
	ID          int64  `json:"id"`
	Headline    string `json:"headline"`
	Body        string `json:"body"`
	LinkURL     string `json:"link_url,omitempty"`
	ScheduledAt string `json:"scheduled_at"`
}

// eventPostPublish names the only event type emitted today.
const eventPostPublish = "post.publish"

// buildEvent creates the webhook event envelope from a post and its campaign.
func (w *WebhookPublisher) buildEvent(post *entity.Post, campaign *entity.Campaign, now time.Time) WebhookEvent {
	return WebhookEvent{
		Event:  eventPostPublish,
		SentAt: now.UTC().Format(time.RFC3339),
		Campaign: WebhookCampaign{
			ID:        campaign.ID,
			Name:      campaign.Name,
			Objective: campaign.Objective,
		},
		Post: WebhookPost{
			ID:          post.ID,
			Headline:    post.Headline,
			Body:        post.Body,
			LinkURL:     post.LinkURL,
			ScheduledAt: post.ScheduledAt.Format(time.RFC3339),
		},
	}
}

// PublishPost delivers a post to the configured webhook endpoint.
// This method implements the Publisher interface.
//
// The request carries a bearer token from the publisher's token source when
// one is configured; token refresh goes through the same limiter, so a
// throttled identity provider surfaces here as a rate limit error.
//
// Returns:
//   - error: Non-nil if delivery failed; throttle and breaker errors are
//     surfaced unchanged so the caller can reschedule
func (w *WebhookPublisher) PublishPost(ctx context.Context, post *entity.Post, campaign *entity.Campaign) error {
	// Generate unique request ID for tracing
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	if w.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.config.Timeout)
		defer cancel()
	}

	slog.Info("Starting webhook delivery",
		slog.String("request_id", requestID),
		slog.Int64("post_id", post.ID),
		slog.Int64("campaign_id", campaign.ID),
		slog.Time("scheduled_at", post.ScheduledAt))

	event := w.buildEvent(post, campaign, time.Now())
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	var token string
	if w.tokens != nil {
		token, err = w.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("obtain access token: %w", err)
		}
	}

	_, err = w.client.sendWithRetry(ctx, webhookService, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(jsonData))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req, nil
	})
	return err
}
