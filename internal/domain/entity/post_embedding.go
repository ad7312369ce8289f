package entity

import (
	"errors"
	"time"
)

// Sentinel errors for embedding validation.
var (
	// ErrInvalidEmbeddingType indicates an unknown embedding type
	ErrInvalidEmbeddingType = errors.New("invalid embedding type")

	// ErrInvalidEmbeddingProvider indicates an unknown embedding provider
	ErrInvalidEmbeddingProvider = errors.New("invalid embedding provider")

	// ErrEmptyEmbedding indicates an embedding with no vector data
	ErrEmptyEmbedding = errors.New("embedding vector is empty")

	// ErrInvalidEmbeddingDimension indicates a dimension that does not match the vector length
	ErrInvalidEmbeddingDimension = errors.New("embedding dimension does not match vector length")
)

// EmbeddingType identifies which part of a post the vector was computed from.
type EmbeddingType string

// Supported embedding types.
const (
	EmbeddingTypeHeadline EmbeddingType = "headline"
	EmbeddingTypeBody     EmbeddingType = "body"
	EmbeddingTypeBrief    EmbeddingType = "brief"
)

// IsValid reports whether the embedding type is supported.
func (t EmbeddingType) IsValid() bool {
	switch t {
	case EmbeddingTypeHeadline, EmbeddingTypeBody, EmbeddingTypeBrief:
		return true
	}
	return false
}

// EmbeddingProvider identifies the external service that produced the vector.
type EmbeddingProvider string

// Supported embedding providers.
const (
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"
	EmbeddingProviderVoyage EmbeddingProvider = "voyage"
)

// IsValid reports whether the embedding provider is supported.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderOpenAI, EmbeddingProviderVoyage:
		return true
	}
	return false
}

// PostEmbedding represents a vector embedding of post copy.
// Embeddings are used to detect near-duplicate copy before a new post is
// scheduled, so a campaign does not repeat itself across publishes.
// The combination of (post_id, embedding_type, provider, model) is unique.
type PostEmbedding struct {
	ID            int64
	PostID        int64
	EmbeddingType EmbeddingType
	Provider      EmbeddingProvider
	Model         string
	Dimension     int32
	Embedding     []float32
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate validates the PostEmbedding entity fields.
// It checks referential and vector consistency before the embedding is persisted.
func (e *PostEmbedding) Validate() error {
	if e.PostID <= 0 {
		return &ValidationError{Field: "PostID", Message: "must be a positive ID"}
	}

	if !e.EmbeddingType.IsValid() {
		return ErrInvalidEmbeddingType
	}

	if !e.Provider.IsValid() {
		return ErrInvalidEmbeddingProvider
	}

	if e.Model == "" {
		return &ValidationError{Field: "Model", Message: "model is required"}
	}

	if len(e.Embedding) == 0 {
		return ErrEmptyEmbedding
	}

	if int(e.Dimension) != len(e.Embedding) {
		return ErrInvalidEmbeddingDimension
	}

	return nil
}
