package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"campaign-relay/internal/resilience/circuitbreaker"
	"campaign-relay/internal/resilience/retry"
	"campaign-relay/internal/utils/text"
)

// OpenAIConfig holds configuration parameters for the OpenAI copy generator.
// Configuration is loaded from environment variables with fallback to defaults.
type OpenAIConfig struct {
	// CharacterLimit is the maximum number of characters allowed in a post body.
	// Loaded from COPY_CHAR_LIMIT environment variable.
	// Valid range: 100-5000 characters. Default: 600.
	CharacterLimit int

	// Language is the target language for post copy.
	// Currently hardcoded to "japanese". Future enhancement: per-campaign languages.
	Language string

	// Model is the OpenAI API model identifier to use for copy generation.
	Model string

	// EmbeddingModel is the OpenAI model used for post-body embeddings.
	EmbeddingModel string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Timeout is the maximum duration for a single generation call,
	// including retries.
	Timeout time.Duration
}

// GetCharacterLimit implements GeneratorConfig interface.
// Returns the configured maximum character limit for post bodies.
func (c *OpenAIConfig) GetCharacterLimit() int {
	return c.CharacterLimit
}

// Validate implements GeneratorConfig interface.
// Validates the configuration and returns an error if invalid.
func (c *OpenAIConfig) Validate() error {
	if err := ValidateCharacterLimit(c.CharacterLimit); err != nil {
		return fmt.Errorf("invalid character limit: %w", err)
	}

	if c.Language == "" {
		return fmt.Errorf("language cannot be empty")
	}

	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}

	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding model cannot be empty")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	return nil
}

// LoadOpenAIConfig loads configuration from environment variables.
// It performs validation on the character limit to ensure it's within a valid range (100-5000).
// Returns an error if the configuration is invalid (fail-closed behavior).
//
// Environment variables:
//   - COPY_CHAR_LIMIT: Post body character limit (default: 600, range: 100-5000)
func LoadOpenAIConfig() (*OpenAIConfig, error) {
	const defaultCharLimit = 600

	charLimit := defaultCharLimit

	if envLimit := os.Getenv("COPY_CHAR_LIMIT"); envLimit != "" {
		parsed, err := strconv.Atoi(envLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid COPY_CHAR_LIMIT format: %s: %w", envLimit, err)
		}

		if err := ValidateCharacterLimit(parsed); err != nil {
			return nil, fmt.Errorf("COPY_CHAR_LIMIT out of valid range: %w", err)
		}

		charLimit = parsed
	}

	config := &OpenAIConfig{
		CharacterLimit: charLimit,
		Language:       "japanese",
		Model:          openai.GPT4oMini,
		EmbeddingModel: string(openai.SmallEmbedding3),
		MaxTokens:      1024,
		Timeout:        60 * time.Second,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid OpenAI configuration: %w", err)
	}

	return config, nil
}

// OpenAI generates post copy and post-body embeddings using OpenAI's API.
// It includes circuit breaker and retry logic for improved reliability,
// and supports configurable character limits with comprehensive observability.
type OpenAI struct {
	client          *openai.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          *OpenAIConfig
	metricsRecorder CopyMetricsRecorder
}

// NewOpenAI creates a new OpenAI generator with the given API key.
// It automatically configures circuit breaker, retry logic, character limit configuration,
// and metrics recording.
func NewOpenAI(apiKey string, config *OpenAIConfig) *OpenAI {
	slog.Info("Initialized OpenAI generator with configuration",
		slog.Int("character_limit", config.GetCharacterLimit()),
		slog.String("model", config.Model),
		slog.String("embedding_model", config.EmbeddingModel))

	return &OpenAI{
		client:          openai.NewClient(apiKey),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:     retry.AIAPIConfig(),
		config:          config,
		metricsRecorder: NewPrometheusCopyMetrics(),
	}
}

// GenerateCopy writes post copy for the given brief using OpenAI.
// It uses circuit breaker and retry logic for improved reliability.
func (o *OpenAI) GenerateCopy(ctx context.Context, brief Brief) (*Draft, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var result *Draft

	// Wrap with retry logic
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		// Execute through circuit breaker
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doGenerate(ctx, brief)
		})

		// Handle circuit breaker open state
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(*Draft)
		return nil
	})

	if retryErr != nil {
		return nil, fmt.Errorf("openai copy generation failed after retries: %w", retryErr)
	}

	return result, nil
}

// Embed computes an embedding vector for the given post body.
// The vector feeds the duplicate-copy check before a post is scheduled.
func (o *OpenAI) Embed(ctx context.Context, body string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var vector []float32

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
				Model: openai.EmbeddingModel(o.config.EmbeddingModel),
				Input: []string{body},
			})
			if err != nil {
				return nil, fmt.Errorf("openai embeddings error: %w", err)
			}
			if len(resp.Data) == 0 {
				return nil, fmt.Errorf("openai embeddings returned no vectors")
			}
			return resp.Data[0].Embedding, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}

		vector = cbResult.([]float32)
		return nil
	})

	if retryErr != nil {
		return nil, fmt.Errorf("openai embedding failed after retries: %w", retryErr)
	}

	return vector, nil
}

// buildPrompt constructs the generation prompt using configured parameters.
func (o *OpenAI) buildPrompt(brief Brief) string {
	return buildCopyPrompt(brief, o.config.Language, o.config.CharacterLimit)
}

// doGenerate performs the actual API call without retry or circuit breaker.
// It includes comprehensive structured logging and metrics recording for observability.
func (o *OpenAI) doGenerate(ctx context.Context, brief Brief) (*Draft, error) {
	// Generate unique request ID for tracing
	requestID := uuid.New().String()

	brief = boundBrief(requestID, brief)
	prompt := o.buildPrompt(brief)

	// Log generation start
	slog.InfoContext(ctx, "Starting copy generation",
		slog.String("request_id", requestID),
		slog.String("campaign", brief.CampaignName),
		slog.String("channel", brief.Channel),
		slog.Int("prompt_length", text.CountRunes(prompt)),
		slog.Int("character_limit", o.config.CharacterLimit))

	// Record start time for duration measurement
	start := time.Now()

	// Call OpenAI API
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:    "user",
			Content: prompt,
		}},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Copy generation failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	// Validate response structure (safety check to prevent panic on array access)
	if len(resp.Choices) == 0 {
		slog.ErrorContext(ctx, "OpenAI API returned empty response",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return nil, fmt.Errorf("openai api returned empty response")
	}

	draft, err := parseDraft(resp.Choices[0].Message.Content)
	if err != nil {
		slog.ErrorContext(ctx, "OpenAI API returned unusable copy",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("openai api returned unusable copy: %w", err)
	}

	bodyLength := text.CountRunes(draft.Body)
	withinLimit := bodyLength <= o.config.CharacterLimit

	// Log generation result
	slog.InfoContext(ctx, "Copy generation completed",
		slog.String("request_id", requestID),
		slog.Int("body_length", bodyLength),
		slog.Int("character_limit", o.config.CharacterLimit),
		slog.Bool("within_limit", withinLimit),
		slog.Duration("duration", duration))

	if !withinLimit {
		excess := bodyLength - o.config.CharacterLimit
		slog.WarnContext(ctx, "Post body exceeds character limit",
			slog.String("request_id", requestID),
			slog.Int("body_length", bodyLength),
			slog.Int("limit", o.config.CharacterLimit),
			slog.Int("excess", excess))
	}

	// Record metrics
	o.metricsRecorder.RecordLength(bodyLength)
	o.metricsRecorder.RecordDuration(duration)
	o.metricsRecorder.RecordCompliance(withinLimit)
	if !withinLimit {
		o.metricsRecorder.RecordLimitExceeded()
	}

	return draft, nil
}
