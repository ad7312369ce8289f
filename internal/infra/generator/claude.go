package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"campaign-relay/internal/resilience/circuitbreaker"
	"campaign-relay/internal/resilience/retry"
	"campaign-relay/internal/utils/text"
)

// ClaudeConfig holds configuration parameters for the Claude copy generator.
// Configuration is loaded from environment variables with fallback to defaults.
type ClaudeConfig struct {
	// CharacterLimit is the maximum number of characters allowed in a post body.
	// Loaded from COPY_CHAR_LIMIT environment variable.
	// Valid range: 100-5000 characters. Default: 600.
	CharacterLimit int

	// Language is the target language for post copy.
	// Currently hardcoded to "japanese". Future enhancement: per-campaign languages.
	Language string

	// Model is the Claude API model identifier to use for copy generation.
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Timeout is the maximum duration for a single generation call,
	// including retries.
	Timeout time.Duration
}

// LoadClaudeConfig loads configuration from environment variables.
// It performs validation on the character limit to ensure it's within a valid range (100-5000).
// Invalid values fall back to the default (600) with a warning log.
//
// Environment variables:
//   - COPY_CHAR_LIMIT: Post body character limit (default: 600, range: 100-5000)
//
// Returns ClaudeConfig with validated settings.
func LoadClaudeConfig() ClaudeConfig {
	const defaultCharLimit = 600

	charLimit := defaultCharLimit

	if envLimit := os.Getenv("COPY_CHAR_LIMIT"); envLimit != "" {
		parsed, err := strconv.Atoi(envLimit)
		if err != nil {
			slog.Warn("Invalid COPY_CHAR_LIMIT format, using default",
				slog.String("value", envLimit),
				slog.Int("default", defaultCharLimit),
				slog.String("error", err.Error()))
		} else if err := ValidateCharacterLimit(parsed); err != nil {
			slog.Warn("COPY_CHAR_LIMIT out of valid range, using default",
				slog.Int("value", parsed),
				slog.Int("min", minCharLimit),
				slog.Int("max", maxCharLimit),
				slog.Int("default", defaultCharLimit))
		} else {
			charLimit = parsed
		}
	}

	return ClaudeConfig{
		CharacterLimit: charLimit,
		Language:       "japanese",
		Model:          string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxTokens:      1024,
		Timeout:        60 * time.Second,
	}
}

// Claude generates post copy using Anthropic's Claude API.
// It includes circuit breaker and retry logic for improved reliability,
// and supports configurable character limits with comprehensive observability.
type Claude struct {
	client          anthropic.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          ClaudeConfig
	metricsRecorder CopyMetricsRecorder
}

// NewClaude creates a new Claude generator with the given API key.
// It automatically configures circuit breaker, retry logic, character limit configuration,
// and metrics recording.
func NewClaude(apiKey string) *Claude {
	config := LoadClaudeConfig()

	slog.Info("Initialized Claude generator with configuration",
		slog.Int("character_limit", config.CharacterLimit),
		slog.String("language", config.Language),
		slog.String("model", config.Model))

	return &Claude{
		client:          anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:     retry.AIAPIConfig(),
		config:          config,
		metricsRecorder: NewPrometheusCopyMetrics(),
	}
}

// GenerateCopy writes post copy for the given brief using Claude.
// It uses circuit breaker and retry logic for improved reliability.
func (c *Claude) GenerateCopy(ctx context.Context, brief Brief) (*Draft, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var result *Draft

	// Wrap with retry logic
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		// Execute through circuit breaker
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doGenerate(ctx, brief)
		})

		// Handle circuit breaker open state
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(*Draft)
		return nil
	})

	if retryErr != nil {
		return nil, fmt.Errorf("claude copy generation failed after retries: %w", retryErr)
	}

	return result, nil
}

const (
	// maxBriefRunes bounds the brief text included in a prompt so one oversized
	// campaign brief cannot blow the token budget.
	maxBriefRunes = 10000

	// maxSeeds and maxSeedRunes bound the curated snippets appended to a prompt.
	maxSeeds     = 5
	maxSeedRunes = 300

	// truncationNotice marks prompt text that was cut at maxBriefRunes.
	truncationNotice = "...\n(内容が長いため切り詰めました)"
)

// buildPrompt constructs the generation prompt using configured parameters.
// It instructs the model to write a headline on the first line and the body
// below it, in the target language and within the character limit.
func (c *Claude) buildPrompt(brief Brief) string {
	return buildCopyPrompt(brief, c.config.Language, c.config.CharacterLimit)
}

// buildCopyPrompt is the prompt template shared by all copy generators.
func buildCopyPrompt(brief Brief, language string, charLimit int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "あなたはマーケティングコピーライターです。以下のキャンペーン情報から%s向けの投稿文を%sで%d文字以内で作成してください。\n",
		brief.Channel, language, charLimit)
	b.WriteString("1行目に見出し、2行目以降に本文を書いてください。\n\n")
	fmt.Fprintf(&b, "キャンペーン: %s\n", brief.CampaignName)
	fmt.Fprintf(&b, "目的: %s\n", brief.Objective)
	fmt.Fprintf(&b, "ブリーフ:\n%s\n", brief.Brief)

	if len(brief.Seeds) > 0 {
		b.WriteString("\n参考情報:\n")
		seeds := brief.Seeds
		if len(seeds) > maxSeeds {
			seeds = seeds[:maxSeeds]
		}
		for _, seed := range seeds {
			fmt.Fprintf(&b, "- %s\n", text.TruncateRunes(seed, maxSeedRunes))
		}
	}

	return b.String()
}

// boundBrief truncates an oversized brief text and logs the cut.
func boundBrief(requestID string, brief Brief) Brief {
	if text.CountRunes(brief.Brief) <= maxBriefRunes {
		return brief
	}

	truncated := text.TruncateRunes(brief.Brief, maxBriefRunes) + truncationNotice
	slog.Warn("brief truncated for copy generation",
		slog.String("request_id", requestID),
		slog.Int("original_length", text.CountRunes(brief.Brief)),
		slog.Int("truncated_length", text.CountRunes(truncated)))
	brief.Brief = truncated
	return brief
}

// doGenerate performs the actual API call without retry or circuit breaker.
// It includes comprehensive structured logging and metrics recording for observability.
func (c *Claude) doGenerate(ctx context.Context, brief Brief) (*Draft, error) {
	// Generate unique request ID for tracing
	requestID := uuid.New().String()

	brief = boundBrief(requestID, brief)
	prompt := c.buildPrompt(brief)

	// Log generation start
	slog.InfoContext(ctx, "Starting copy generation",
		slog.String("request_id", requestID),
		slog.String("campaign", brief.CampaignName),
		slog.String("channel", brief.Channel),
		slog.Int("prompt_length", text.CountRunes(prompt)),
		slog.Int("character_limit", c.config.CharacterLimit))

	// Record start time for duration measurement
	start := time.Now()

	// Call Claude API
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Copy generation failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("claude api error: %w", err)
	}

	// Validate response structure
	if len(message.Content) == 0 {
		slog.ErrorContext(ctx, "Claude API returned empty response",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return nil, fmt.Errorf("claude api returned empty response")
	}

	// Extract text from response
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		slog.ErrorContext(ctx, "Claude API returned unexpected response type",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return nil, fmt.Errorf("claude api returned unexpected response type")
	}

	draft, err := parseDraft(textBlock.Text)
	if err != nil {
		slog.ErrorContext(ctx, "Claude API returned unusable copy",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("claude api returned unusable copy: %w", err)
	}

	bodyLength := text.CountRunes(draft.Body)
	withinLimit := bodyLength <= c.config.CharacterLimit

	// Log generation result
	slog.InfoContext(ctx, "Copy generation completed",
		slog.String("request_id", requestID),
		slog.Int("body_length", bodyLength),
		slog.Int("character_limit", c.config.CharacterLimit),
		slog.Bool("within_limit", withinLimit),
		slog.Duration("duration", duration))

	// Log warning if limit exceeded (soft limit, not hard rejection)
	if !withinLimit {
		excess := bodyLength - c.config.CharacterLimit
		slog.WarnContext(ctx, "Post body exceeds character limit",
			slog.String("request_id", requestID),
			slog.Int("body_length", bodyLength),
			slog.Int("limit", c.config.CharacterLimit),
			slog.Int("excess", excess))
	}

	// Record metrics
	c.metricsRecorder.RecordLength(bodyLength)
	c.metricsRecorder.RecordDuration(duration)
	c.metricsRecorder.RecordCompliance(withinLimit)
	if !withinLimit {
		c.metricsRecorder.RecordLimitExceeded()
	}

	return draft, nil
}
