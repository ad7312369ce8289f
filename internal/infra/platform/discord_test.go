package platform

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"campaign-relay/pkg/resilience"
)

/* ──── ペイロード構築 ──── */

func TestDiscordPublisher_buildEmbedPayload(t *testing.T) {
	t.Run("TC-1: should build valid embed with all fields", func(t *testing.T) {
		// Arrange
		publisher := NewDiscordPublisher(DiscordConfig{
			Enabled:    true,
			WebhookURL: "https://discord.com/api/webhooks/test",
			Timeout:    10 * time.Second,
		}, newTestClient(t))

		post := testPost()
		campaign := testCampaign()

		// Act
		payload := publisher.buildEmbedPayload(post, campaign)

		// Assert
		if len(payload.Embeds) != 1 {
			t.Fatalf("expected 1 embed, got %d", len(payload.Embeds))
		}

		embed := payload.Embeds[0]
		if embed.Title != post.Headline {
			t.Errorf("expected title=%q, got %q", post.Headline, embed.Title)
		}
		if embed.Description != post.Body {
			t.Errorf("expected description=%q, got %q", post.Body, embed.Description)
		}
		if embed.URL != post.LinkURL {
			t.Errorf("expected url=%q, got %q", post.LinkURL, embed.URL)
		}
		if embed.Color != discordBlueColor {
			t.Errorf("expected color=%d, got %d", discordBlueColor, embed.Color)
		}
		if embed.Footer.Text != campaign.Name {
			t.Errorf("expected footer=%q, got %q", campaign.Name, embed.Footer.Text)
		}

		expectedTimestamp := "2025-03-10T09:00:00Z"
		if embed.Timestamp != expectedTimestamp {
			t.Errorf("expected timestamp=%q, got %q", expectedTimestamp, embed.Timestamp)
		}
	})

	t.Run("TC-2: should truncate long body (>4096 chars) with ...", func(t *testing.T) {
		// Arrange
		publisher := NewDiscordPublisher(DiscordConfig{Enabled: true}, newTestClient(t))

		post := testPost()
		post.Body = strings.Repeat("a", 5000)

		// Act
		payload := publisher.buildEmbedPayload(post, testCampaign())

		// Assert
		embed := payload.Embeds[0]
		if got := len([]rune(embed.Description)); got != maxDescriptionLength {
			t.Errorf("expected description length=%d, got %d", maxDescriptionLength, got)
		}
		if !strings.HasSuffix(embed.Description, truncationSuffix) {
			t.Errorf("expected description to end with %q", truncationSuffix)
		}
	})

	t.Run("TC-3: should truncate long headline (>256 chars)", func(t *testing.T) {
		// Arrange
		publisher := NewDiscordPublisher(DiscordConfig{Enabled: true}, newTestClient(t))

		post := testPost()
		post.Headline = strings.Repeat("x", 300)

		// Act
		payload := publisher.buildEmbedPayload(post, testCampaign())

		// Assert
		embed := payload.Embeds[0]
		if got := len([]rune(embed.Title)); got != maxTitleLength {
			t.Errorf("expected title length=%d, got %d", maxTitleLength, got)
		}
		if embed.Title != strings.Repeat("x", maxTitleLength) {
			t.Errorf("expected title to be truncated to first %d chars", maxTitleLength)
		}
	})

	t.Run("TC-4: should truncate multibyte headline on character boundaries", func(t *testing.T) {
		// Arrange
		publisher := NewDiscordPublisher(DiscordConfig{Enabled: true}, newTestClient(t))

		post := testPost()
		post.Headline = strings.Repeat("見", 300)

		// Act
		payload := publisher.buildEmbedPayload(post, testCampaign())

		// Assert
		embed := payload.Embeds[0]
		if got := len([]rune(embed.Title)); got != maxTitleLength {
			t.Errorf("expected title length=%d runes, got %d", maxTitleLength, got)
		}
		if embed.Title != strings.Repeat("見", maxTitleLength) {
			t.Error("expected rune-aligned truncation")
		}
	})

	t.Run("TC-5: should handle empty body", func(t *testing.T) {
		// Arrange
		publisher := NewDiscordPublisher(DiscordConfig{Enabled: true}, newTestClient(t))

		post := testPost()
		post.Body = ""

		// Act
		payload := publisher.buildEmbedPayload(post, testCampaign())

		// Assert
		if payload.Embeds[0].Description != "" {
			t.Errorf("expected empty description, got %q", payload.Embeds[0].Description)
		}
	})
}

/* ──── PublishPost ──── */

func TestDiscordPublisher_PublishPost(t *testing.T) {
	t.Run("TC-1: should deliver embed end-to-end", func(t *testing.T) {
		// Arrange
		var gotPayload atomic.Pointer[DiscordWebhookPayload]
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected Content-Type=application/json, got %q", ct)
			}
			body, _ := io.ReadAll(r.Body)
			var payload DiscordWebhookPayload
			if err := json.Unmarshal(body, &payload); err != nil {
				t.Errorf("failed to parse request body: %v", err)
			}
			gotPayload.Store(&payload)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		publisher := NewDiscordPublisher(DiscordConfig{
			Enabled:    true,
			WebhookURL: server.URL,
			Timeout:    10 * time.Second,
		}, newTestClient(t))

		// Act
		err := publisher.PublishPost(context.Background(), testPost(), testCampaign())

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		payload := gotPayload.Load()
		if payload == nil {
			t.Fatal("expected webhook to receive a payload")
		}
		if len(payload.Embeds) != 1 {
			t.Fatalf("expected 1 embed, got %d", len(payload.Embeds))
		}
		if payload.Embeds[0].Footer.Text != "Spring Launch" {
			t.Errorf("expected campaign footer, got %q", payload.Embeds[0].Footer.Text)
		}
	})

	t.Run("TC-2: should surface 429 as rate limit error with JSON retry_after", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message": "You are being rate limited.", "retry_after": 2, "global": false}`))
		}))
		defer server.Close()

		publisher := NewDiscordPublisher(DiscordConfig{
			Enabled:    true,
			WebhookURL: server.URL,
			Timeout:    10 * time.Second,
		}, newTestClient(t))

		// Act
		err := publisher.PublishPost(context.Background(), testPost(), testCampaign())

		// Assert
		var rateLimitErr *resilience.RateLimitError
		if !errors.As(err, &rateLimitErr) {
			t.Fatalf("expected RateLimitError, got %T: %v", err, err)
		}
		if rateLimitErr.RetryAfter != 2*time.Second {
			t.Errorf("expected retry_after=2s from JSON body, got %v", rateLimitErr.RetryAfter)
		}
	})

	t.Run("TC-3: should not retry 4xx client errors", func(t *testing.T) {
		// Arrange
		requestCount := int32(0)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requestCount, 1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		publisher := NewDiscordPublisher(DiscordConfig{
			Enabled:    true,
			WebhookURL: server.URL,
			Timeout:    10 * time.Second,
		}, newTestClient(t))

		// Act
		err := publisher.PublishPost(context.Background(), testPost(), testCampaign())

		// Assert
		var clientErr *ClientError
		if !errors.As(err, &clientErr) {
			t.Fatalf("expected ClientError, got %T: %v", err, err)
		}
		if clientErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected status code=401, got %d", clientErr.StatusCode)
		}
		if atomic.LoadInt32(&requestCount) != 1 {
			t.Errorf("expected 1 request (no retry for 4xx), got %d", requestCount)
		}
	})
}

func TestNewDiscordPublisher(t *testing.T) {
	t.Run("should create Discord publisher with proper configuration", func(t *testing.T) {
		// Arrange
		config := DiscordConfig{
			Enabled:    true,
			WebhookURL: "https://discord.com/api/webhooks/test",
			Timeout:    15 * time.Second,
		}
		client := newTestClient(t)

		// Act
		publisher := NewDiscordPublisher(config, client)

		// Assert
		if publisher == nil {
			t.Fatal("expected non-nil publisher")
		}
		if publisher.client != client {
			t.Error("expected publisher to keep the shared client")
		}
		if publisher.config.WebhookURL != config.WebhookURL {
			t.Errorf("expected webhook URL=%q, got %q", config.WebhookURL, publisher.config.WebhookURL)
		}
	})
}
