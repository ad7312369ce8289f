package publish

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"campaign-relay/internal/domain/entity"
	"campaign-relay/internal/repository"
	"campaign-relay/pkg/resilience"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const requestIDKey contextKey = "request_id"

// Pipeline tuning constants.
const (
	workerPoolTimeout = 5 * time.Second  // Timeout for acquiring a worker slot
	publishTimeout    = 30 * time.Second // Timeout for delivering one post
	defaultBatchLimit = 50               // Due posts claimed per scan
	maxAttempts       = 5                // Delivery attempts before a post stays failed
)

// Publisher delivers one post to its channel.
// The platform client implementations satisfy this interface; each call is
// already routed through the rate limiter and the channel's circuit breaker.
type Publisher interface {
	PublishPost(ctx context.Context, post *entity.Post, campaign *entity.Campaign) error
}

// Service claims due posts and delivers them through per-channel publishers.
//
// PublishDue is designed to be driven by a cron scheduler: each invocation
// scans for scheduled posts whose delivery time has arrived, claims them
// one by one, and hands them to a bounded worker pool. Failures never stop
// the scan; each post's outcome is recorded independently.
type Service struct {
	Posts      repository.PostRepository
	Campaigns  repository.CampaignRepository
	Publishers map[string]Publisher // keyed by channel name
	BatchLimit int                  // zero means defaultBatchLimit

	workerPool     chan struct{}      // Semaphore for limiting concurrent deliveries
	wg             sync.WaitGroup     // Track in-flight deliveries
	shutdownCtx    context.Context    // Context for signaling shutdown
	shutdownCancel context.CancelFunc // Cancel function for shutdown
}

// NewService creates a publish service with the given publishers and
// concurrency bound.
//
// Parameters:
//   - posts, campaigns: repositories for claiming and bookkeeping
//   - publishers: delivery implementations keyed by channel name
//   - maxConcurrent: maximum concurrent deliveries (recommended: 10-20)
func NewService(
	posts repository.PostRepository,
	campaigns repository.CampaignRepository,
	publishers map[string]Publisher,
	maxConcurrent int,
) *Service {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	return &Service{
		Posts:          posts,
		Campaigns:      campaigns,
		Publishers:     publishers,
		workerPool:     make(chan struct{}, maxConcurrent),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
}

// PublishDue scans for due posts and dispatches them to the worker pool.
// It returns the number of posts claimed in this scan. Claiming uses
// MarkPublishing as a compare-and-set, so overlapping scans never deliver
// the same post twice.
func (s *Service) PublishDue(ctx context.Context) (int, error) {
	limit := s.BatchLimit
	if limit <= 0 {
		limit = defaultBatchLimit
	}

	due, err := s.Posts.ListDue(ctx, time.Now(), limit)
	if err != nil {
		return 0, fmt.Errorf("list due posts: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		requestID = uuid.New().String()
	}

	slog.Info("Dispatching due posts",
		slog.String("request_id", requestID),
		slog.Int("due_count", len(due)))

	claimed := 0
	for _, post := range due {
		got, err := s.Posts.MarkPublishing(ctx, post.ID)
		if err != nil {
			slog.Warn("Failed to claim post",
				slog.String("request_id", requestID),
				slog.Int64("post_id", post.ID),
				slog.Any("error", err))
			continue
		}
		if !got {
			// Another worker claimed it between the scan and the update.
			continue
		}

		claimed++
		RecordClaimed(post.Channel)

		p := post // Capture for goroutine
		s.wg.Add(1)
		go s.publishOne(requestID, p)
	}

	return claimed, nil
}

// publishOne delivers a single claimed post in a goroutine.
func (s *Service) publishOne(requestID string, post *entity.Post) {
	defer s.wg.Done()

	// Track active goroutines
	IncrementActiveGoroutines()
	defer DecrementActiveGoroutines()

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in post delivery",
				slog.String("request_id", requestID),
				slog.Int64("post_id", post.ID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	// Acquire worker slot (with timeout to prevent blocking)
	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }() // Release slot
	case <-time.After(workerPoolTimeout):
		slog.Warn("Delivery deferred: worker pool full",
			slog.String("request_id", requestID),
			slog.Int64("post_id", post.ID),
			slog.String("channel", post.Channel))
		RecordDeferred(post.Channel, "pool_full")
		s.recordFailure(requestID, post)
		return
	}

	publisher, ok := s.Publishers[post.Channel]
	if !ok {
		slog.Error("No publisher configured for channel",
			slog.String("request_id", requestID),
			slog.Int64("post_id", post.ID),
			slog.String("channel", post.Channel))
		RecordDeferred(post.Channel, "no_publisher")
		s.recordFailure(requestID, post)
		return
	}

	// Create context with timeout (use shutdown context instead of Background)
	ctx, cancel := context.WithTimeout(s.shutdownCtx, publishTimeout)
	defer cancel()

	// Add request_id to context for tracing
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	campaign, err := s.Campaigns.Get(ctx, post.CampaignID)
	if err != nil || campaign == nil {
		slog.Error("Failed to load campaign for post",
			slog.String("request_id", requestID),
			slog.Int64("post_id", post.ID),
			slog.Int64("campaign_id", post.CampaignID),
			slog.Any("error", err))
		s.recordFailure(requestID, post)
		return
	}

	startTime := time.Now()
	err = publisher.PublishPost(ctx, post, campaign)
	duration := time.Since(startTime)

	if err != nil {
		s.classifyDeferral(requestID, post, err)
		RecordFailure(post.Channel, duration)
		slog.Warn("Post delivery failed",
			slog.String("request_id", requestID),
			slog.Int64("post_id", post.ID),
			slog.String("channel", post.Channel),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
		s.recordFailure(requestID, post)
		return
	}

	RecordSuccess(post.Channel, duration)
	slog.Info("Post delivered",
		slog.String("request_id", requestID),
		slog.Int64("post_id", post.ID),
		slog.String("channel", post.Channel),
		slog.String("headline", post.Headline),
		slog.Duration("send_duration", duration))

	publishedAt := time.Now()
	if err := s.Posts.MarkPublished(ctx, post.ID, publishedAt); err != nil {
		slog.Error("Failed to mark post published",
			slog.String("request_id", requestID),
			slog.Int64("post_id", post.ID),
			slog.Any("error", err))
		return
	}
	if err := s.Campaigns.TouchPublishedAt(ctx, post.CampaignID, publishedAt); err != nil {
		slog.Warn("Failed to touch campaign published_at",
			slog.String("request_id", requestID),
			slog.Int64("campaign_id", post.CampaignID),
			slog.Any("error", err))
	}
}

// classifyDeferral records the deferral reason for resilience-layer errors.
// These failures never reached the platform API, so they are worth tracking
// separately from genuine delivery failures.
func (s *Service) classifyDeferral(requestID string, post *entity.Post, err error) {
	switch {
	case resilience.IsCircuitOpen(err):
		RecordDeferred(post.Channel, "circuit_open")
	case resilience.IsRateLimit(err), resilience.IsQueueFull(err):
		RecordDeferred(post.Channel, "rate_limited")
	}
}

// recordFailure returns a post to failed state with an incremented attempt
// count. Posts under maxAttempts stay eligible for rescheduling.
func (s *Service) recordFailure(requestID string, post *entity.Post) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	attempts := post.Attempts + 1
	if err := s.Posts.MarkFailed(ctx, post.ID, attempts); err != nil {
		slog.Error("Failed to mark post failed",
			slog.String("request_id", requestID),
			slog.Int64("post_id", post.ID),
			slog.Any("error", err))
		return
	}

	if attempts >= maxAttempts {
		slog.Error("Post exhausted delivery attempts",
			slog.String("request_id", requestID),
			slog.Int64("post_id", post.ID),
			slog.Int("attempts", attempts))
	}
}

// Shutdown gracefully stops the publish service, waiting for in-flight
// deliveries to complete or the context to expire.
func (s *Service) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down publish service")

	// Signal all goroutines to stop
	s.shutdownCancel()

	// Wait for in-flight deliveries with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Publish service shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("Publish service shutdown timeout")
		return ctx.Err()
	}
}
