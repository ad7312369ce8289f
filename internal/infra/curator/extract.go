package curator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	readability "github.com/go-shiori/go-readability"
	"github.com/sony/gobreaker"

	"campaign-relay/internal/resilience/circuitbreaker"
	"campaign-relay/internal/resilience/retry"
	"campaign-relay/internal/utils/text"
)

// Article is the readable text extracted from one seed URL.
type Article struct {
	Title   string
	Byline  string
	Excerpt string
	Text    string
}

// Extractor pulls readable article text from seed URLs so the full piece,
// not just the feed excerpt, can feed copy generation.
// It is safe for concurrent use.
type Extractor struct {
	curator        *Curator
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewExtractor creates an Extractor sharing the curator's limiter and config.
func NewExtractor(c *Curator) *Extractor {
	return &Extractor{
		curator:        c,
		circuitBreaker: circuitbreaker.New(circuitbreaker.PageScrapeConfig()),
		retryConfig:    retry.PageScrapeConfig(),
	}
}

// Extract fetches the page at rawURL and returns its readable article text.
// It uses circuit breaker and retry logic for improved reliability.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Article, error) {
	var article *Article

	retryErr := retry.WithBackoff(ctx, e.retryConfig, func() error {
		cbResult, err := e.circuitBreaker.Execute(func() (interface{}, error) {
			return e.doExtract(ctx, rawURL)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("page scrape circuit breaker open, request rejected",
					slog.String("service", "page-scrape"),
					slog.String("url", rawURL),
					slog.String("state", e.circuitBreaker.State().String()))
				return err
			}
			return err
		}

		article = cbResult.(*Article)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return article, nil
}

// doExtract performs the fetch and readability pass without retry or
// circuit breaker. The HTTP call goes through the rate limiter.
func (e *Extractor) doExtract(ctx context.Context, rawURL string) (*Article, error) {
	cfg := e.curator.config

	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse article url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build article request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := e.curator.limiter.Dispatch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch article %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch article %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read article body: %w", err)
	}

	parsed, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract article %s: %w", rawURL, err)
	}

	return &Article{
		Title:   parsed.Title,
		Byline:  parsed.Byline,
		Excerpt: text.TruncateRunes(parsed.Excerpt, cfg.ExcerptRunes),
		Text:    parsed.TextContent,
	}, nil
}
