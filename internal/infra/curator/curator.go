// Package curator fetches inspiration feeds for campaigns.
// It pulls RSS/Atom entries from configured sources and turns them into
// seed snippets that copy generation can draw from. Every fetch goes
// through the shared rate limiter so external feed hosts are paced, and
// through a feed-fetch circuit breaker so a dead host stops being polled.
package curator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"campaign-relay/internal/observability/metrics"
	"campaign-relay/internal/resilience/circuitbreaker"
	"campaign-relay/internal/resilience/retry"
	"campaign-relay/internal/utils/text"
	"campaign-relay/pkg/resilience"
)

// curationErrorType buckets fetch errors into low-cardinality metric labels.
func curationErrorType(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case resilience.IsRateLimit(err):
		return "rate_limited"
	default:
		return "fetch_failed"
	}
}

// Seed is one feed entry usable as copy inspiration.
type Seed struct {
	SourceName  string
	Title       string
	URL         string
	Excerpt     string
	PublishedAt time.Time
}

// Source names one feed to curate from.
type Source struct {
	Name string
	URL  string
}

// Curator fetches and parses inspiration feeds.
// It is safe for concurrent use.
type Curator struct {
	limiter        *resilience.RateLimiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
}

// New creates a Curator that routes fetches through the given rate limiter.
func New(limiter *resilience.RateLimiter, config Config) *Curator {
	config.applyDefaults()

	return &Curator{
		limiter:        limiter,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
		config:         config,
	}
}

// Curate fetches all sources concurrently and returns their seeds merged,
// newest first. A failing source is logged and skipped; Curate only
// returns an error when every source failed.
func (c *Curator) Curate(ctx context.Context, sources []Source) ([]Seed, error) {
	if len(sources) == 0 {
		return nil, nil
	}

	results := make([][]Seed, len(sources))
	errs := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.MaxConcurrent)

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			start := time.Now()
			seeds, err := c.Fetch(gctx, src)
			if err != nil {
				slog.Warn("feed curation failed for source",
					slog.String("source", src.Name),
					slog.String("url", src.URL),
					slog.Any("error", err))
				metrics.RecordSeedCurationError(src.Name, curationErrorType(err))
				errs[i] = err
				return nil // one dead feed must not kill the run
			}
			metrics.RecordSeedCuration(src.Name, time.Since(start))
			results[i] = seeds
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
		}
	}
	if failures == len(sources) {
		return nil, fmt.Errorf("all %d feed sources failed", len(sources))
	}

	var merged []Seed
	for _, seeds := range results {
		merged = append(merged, seeds...)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})
	return merged, nil
}

// Fetch retrieves and parses one feed source.
// It uses circuit breaker and retry logic for improved reliability.
func (c *Curator) Fetch(ctx context.Context, src Source) ([]Seed, error) {
	var seeds []Seed

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doFetch(ctx, src)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("service", "feed-fetch"),
					slog.String("url", src.URL),
					slog.String("state", c.circuitBreaker.State().String()))
				return err
			}
			return err
		}

		seeds = cbResult.([]Seed)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return seeds, nil
}

// doFetch performs the actual feed fetch without retry or circuit breaker.
// The HTTP call goes through the rate limiter so the feed host is paced
// together with every other outbound call to it.
func (c *Curator) doFetch(ctx context.Context, src Source) ([]Seed, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.limiter.Dispatch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", src.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed %s: unexpected status %d", src.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.URL, err)
	}

	return c.toSeeds(src, feed), nil
}

// toSeeds converts parsed feed items into seeds in feed order,
// capped at MaxSeedsPerFeed.
func (c *Curator) toSeeds(src Source, feed *gofeed.Feed) []Seed {
	items := feed.Items
	if len(items) > c.config.MaxSeedsPerFeed {
		items = items[:c.config.MaxSeedsPerFeed]
	}

	seeds := make([]Seed, 0, len(items))
	for _, item := range items {
		excerpt := item.Description
		if excerpt == "" {
			excerpt = item.Content
		}

		published := time.Time{}
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}

		seeds = append(seeds, Seed{
			SourceName:  src.Name,
			Title:       item.Title,
			URL:         item.Link,
			Excerpt:     text.TruncateRunes(excerpt, c.config.ExcerptRunes),
			PublishedAt: published,
		})
	}
	return seeds
}
