// Package fixtures provides reusable test data builders for integration tests.
package fixtures

import (
	"time"

	"campaign-relay/internal/domain/entity"
)

// EmbeddingOption customizes a test embedding.
type EmbeddingOption func(*entity.PostEmbedding)

// NewTestEmbedding builds a valid PostEmbedding with sensible defaults:
//
//	embedding := NewTestEmbedding(WithPostID(100))
func NewTestEmbedding(opts ...EmbeddingOption) *entity.PostEmbedding {
	now := time.Now()
	e := &entity.PostEmbedding{
		ID:            1,
		PostID:        1,
		EmbeddingType: entity.EmbeddingTypeBody,
		Provider:      entity.EmbeddingProviderOpenAI,
		Model:         "text-embedding-3-small",
		Dimension:     1536,
		Embedding:     GenerateTestVector(1536, 0.1),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithPostID sets the owning post.
func WithPostID(id int64) EmbeddingOption {
	return func(e *entity.PostEmbedding) { e.PostID = id }
}

// WithEmbedding sets the vector and keeps Dimension consistent with it.
func WithEmbedding(embedding []float32) EmbeddingOption {
	return func(e *entity.PostEmbedding) {
		e.Embedding = embedding
		e.Dimension = int32(len(embedding))
	}
}

// GenerateTestVector builds a deterministic vector: element i is
// seed + i*0.001, so different seeds give distinct but predictable vectors.
func GenerateTestVector(dimension int, seed float32) []float32 {
	vec := make([]float32, dimension)
	for i := range vec {
		vec[i] = seed + float32(i)*0.001
	}
	return vec
}
