package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

/* ──── イベント構築 ──── */

func TestWebhookPublisher_buildEvent(t *testing.T) {
	t.Run("TC-1: should build the post.publish envelope", func(t *testing.T) {
		// Arrange
		publisher := NewWebhookPublisher(WebhookConfig{URL: "https://hooks.example.com/relay"}, newTestClient(t), nil)
		now := time.Date(2025, 3, 10, 8, 59, 30, 0, time.UTC)

		// Act
		event := publisher.buildEvent(testPost(), testCampaign(), now)

		// Assert
		if event.Event != "post.publish" {
			t.Errorf("expected event post.publish, got %q", event.Event)
		}
		if event.SentAt != "2025-03-10T08:59:30Z" {
			t.Errorf("expected RFC3339 sent_at, got %q", event.SentAt)
		}
		if event.Campaign.ID != 7 || event.Campaign.Name != "Spring Launch" || event.Campaign.Objective != "Launch" {
			t.Errorf("unexpected campaign fields: %+v", event.Campaign)
		}
		if event.Post.ID != 42 || event.Post.Headline != "Spring release is out" {
			t.Errorf("unexpected post fields: %+v", event.Post)
		}
		if event.Post.LinkURL != "https://example.com/blog/spring-release" {
			t.Errorf("expected link url, got %q", event.Post.LinkURL)
		}
		if event.Post.ScheduledAt != "2025-03-10T09:00:00Z" {
			t.Errorf("expected RFC3339 scheduled_at, got %q", event.Post.ScheduledAt)
		}
	})

	t.Run("TC-2: should convert sent_at to UTC", func(t *testing.T) {
		// Arrange
		publisher := NewWebhookPublisher(WebhookConfig{URL: "https://hooks.example.com/relay"}, newTestClient(t), nil)
		jst := time.FixedZone("JST", 9*60*60)
		now := time.Date(2025, 3, 10, 18, 0, 0, 0, jst)

		// Act
		event := publisher.buildEvent(testPost(), testCampaign(), now)

		// Assert
		if event.SentAt != "2025-03-10T09:00:00Z" {
			t.Errorf("expected UTC sent_at, got %q", event.SentAt)
		}
	})

	t.Run("TC-3: should omit an empty link url from the JSON", func(t *testing.T) {
		// Arrange
		publisher := NewWebhookPublisher(WebhookConfig{URL: "https://hooks.example.com/relay"}, newTestClient(t), nil)
		post := testPost()
		post.LinkURL = ""

		// Act
		event := publisher.buildEvent(post, testCampaign(), time.Now())
		jsonData, err := json.Marshal(event)

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Contains(string(jsonData), "link_url") {
			t.Errorf("expected link_url omitted, got %s", jsonData)
		}
	})
}

/* ──── PublishPost ──── */

func TestWebhookPublisher_PublishPost(t *testing.T) {
	t.Run("TC-1: should deliver the event without authentication", func(t *testing.T) {
		// Arrange
		var gotAuth atomic.Value
		var gotEvent atomic.Pointer[WebhookEvent]
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth.Store(r.Header.Get("Authorization"))

			body, _ := io.ReadAll(r.Body)
			var event WebhookEvent
			if err := json.Unmarshal(body, &event); err != nil {
				t.Errorf("failed to parse event: %v", err)
			}
			gotEvent.Store(&event)

			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		publisher := NewWebhookPublisher(WebhookConfig{Enabled: true, URL: server.URL}, newTestClient(t), nil)

		// Act
		err := publisher.PublishPost(context.Background(), testPost(), testCampaign())

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if auth := gotAuth.Load(); auth != "" {
			t.Errorf("expected no Authorization header, got %v", auth)
		}

		event := gotEvent.Load()
		if event == nil {
			t.Fatal("expected a delivered event")
		}
		if event.Event != "post.publish" || event.Post.ID != 42 {
			t.Errorf("unexpected event: %+v", event)
		}
	})

	t.Run("TC-2: should attach a bearer token from the token source", func(t *testing.T) {
		// Arrange
		tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token": "tok-webhook", "expires_in": 3600}`)
		}))
		defer tokenServer.Close()

		var gotAuth atomic.Value
		hookServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth.Store(r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusOK)
		}))
		defer hookServer.Close()

		client := newTestClient(t)
		tokens := NewTokenSource(testOAuthConfig(tokenServer.URL), client)
		publisher := NewWebhookPublisher(WebhookConfig{Enabled: true, URL: hookServer.URL}, client, tokens)

		// Act
		err := publisher.PublishPost(context.Background(), testPost(), testCampaign())

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if auth := gotAuth.Load(); auth != "Bearer tok-webhook" {
			t.Errorf("expected bearer token header, got %v", auth)
		}
	})

	t.Run("TC-3: should fail when the token source cannot authenticate", func(t *testing.T) {
		// Arrange
		tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error": "invalid_client"}`)
		}))
		defer tokenServer.Close()

		hookCalls := int32(0)
		hookServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hookCalls, 1)
			w.WriteHeader(http.StatusOK)
		}))
		defer hookServer.Close()

		client := newTestClient(t)
		tokens := NewTokenSource(testOAuthConfig(tokenServer.URL), client)
		publisher := NewWebhookPublisher(WebhookConfig{Enabled: true, URL: hookServer.URL}, client, tokens)

		// Act
		err := publisher.PublishPost(context.Background(), testPost(), testCampaign())

		// Assert
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "obtain access token") {
			t.Errorf("expected token error, got %v", err)
		}
		if got := atomic.LoadInt32(&hookCalls); got != 0 {
			t.Errorf("expected no delivery attempt without a token, got %d", got)
		}
	})

	t.Run("TC-4: should retry the delivery on a server error", func(t *testing.T) {
		// Arrange
		requestCount := int32(0)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&requestCount, 1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		publisher := NewWebhookPublisher(WebhookConfig{Enabled: true, URL: server.URL}, newTestClient(t), nil)

		// Act
		err := publisher.PublishPost(context.Background(), testPost(), testCampaign())

		// Assert
		if err != nil {
			t.Fatalf("expected success after retry, got %v", err)
		}
		if got := atomic.LoadInt32(&requestCount); got != 2 {
			t.Errorf("expected 2 requests, got %d", got)
		}
	})
}

func TestNewWebhookPublisher(t *testing.T) {
	t.Run("should create a new WebhookPublisher instance", func(t *testing.T) {
		// Act
		publisher := NewWebhookPublisher(WebhookConfig{URL: "https://hooks.example.com/relay"}, newTestClient(t), nil)

		// Assert
		if publisher == nil {
			t.Fatal("expected non-nil publisher")
		}
	})
}
