package postgres

import (
	"context"
	"fmt"
	"time"

	"campaign-relay/internal/domain/entity"
	"campaign-relay/internal/repository"

	"github.com/pgvector/pgvector-go"
)

// DefaultSearchTimeout is the default timeout for similarity search queries.
const DefaultSearchTimeout = 5 * time.Second

// PostEmbeddingRepo implements the PostEmbeddingRepository interface for PostgreSQL.
type PostEmbeddingRepo struct {
	db DB
}

// NewPostEmbeddingRepo creates a new PostgreSQL-based PostEmbeddingRepository.
func NewPostEmbeddingRepo(db DB) repository.PostEmbeddingRepository {
	return &PostEmbeddingRepo{
		db: db,
	}
}

// Upsert creates a new embedding or updates an existing one.
// Uses INSERT ... ON CONFLICT DO UPDATE to handle unique constraint violations.
func (repo *PostEmbeddingRepo) Upsert(ctx context.Context, embedding *entity.PostEmbedding) error {
	// Check for nil pointer
	if embedding == nil {
		return fmt.Errorf("Upsert: embedding is nil")
	}

	// Validate entity before database operation
	if err := embedding.Validate(); err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}

	// Convert []float32 to pgvector.Vector
	vector := pgvector.NewVector(embedding.Embedding)

	const query = `
INSERT INTO post_embeddings (post_id, embedding_type, provider, model, dimension, embedding, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
ON CONFLICT (post_id, embedding_type, provider, model)
DO UPDATE SET
	dimension = EXCLUDED.dimension,
	embedding = EXCLUDED.embedding,
	updated_at = NOW()
RETURNING id, created_at, updated_at`

	err := repo.db.QueryRowContext(ctx, query,
		embedding.PostID,
		string(embedding.EmbeddingType),
		string(embedding.Provider),
		embedding.Model,
		embedding.Dimension,
		vector,
	).Scan(&embedding.ID, &embedding.CreatedAt, &embedding.UpdatedAt)

	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}

	return nil
}

// FindByPostID retrieves all embeddings for a given post ID.
// Returns an empty slice if no embeddings are found.
func (repo *PostEmbeddingRepo) FindByPostID(ctx context.Context, postID int64) ([]*entity.PostEmbedding, error) {
	const query = `
SELECT id, post_id, embedding_type, provider, model, dimension, embedding, created_at, updated_at
FROM post_embeddings
WHERE post_id = $1
ORDER BY embedding_type, provider, model`

	rows, err := repo.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("FindByPostID: %w", err)
	}
	defer func() { _ = rows.Close() }()

	embeddings := make([]*entity.PostEmbedding, 0)
	for rows.Next() {
		emb := &entity.PostEmbedding{}
		var vector pgvector.Vector
		var embType string
		var provider string

		err := rows.Scan(
			&emb.ID,
			&emb.PostID,
			&embType,
			&provider,
			&emb.Model,
			&emb.Dimension,
			&vector,
			&emb.CreatedAt,
			&emb.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("FindByPostID: Scan: %w", err)
		}

		// Convert pgvector.Vector to []float32
		emb.EmbeddingType = entity.EmbeddingType(embType)
		emb.Provider = entity.EmbeddingProvider(provider)
		emb.Embedding = vector.Slice()

		embeddings = append(embeddings, emb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindByPostID: %w", err)
	}

	return embeddings, nil
}

// DeleteByPostID removes all embeddings associated with a post.
// Returns the number of deleted rows.
func (repo *PostEmbeddingRepo) DeleteByPostID(ctx context.Context, postID int64) (int64, error) {
	const query = `DELETE FROM post_embeddings WHERE post_id = $1`

	result, err := repo.db.ExecContext(ctx, query, postID)
	if err != nil {
		return 0, fmt.Errorf("DeleteByPostID: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteByPostID: RowsAffected: %w", err)
	}

	return count, nil
}

// SearchSimilar finds posts with embeddings similar to the provided vector.
// Uses cosine distance operator (<=>) for similarity comparison.
func (repo *PostEmbeddingRepo) SearchSimilar(ctx context.Context, embedding []float32, embeddingType entity.EmbeddingType, limit int) ([]repository.SimilarPost, error) {
	// Apply timeout to search query
	searchCtx, cancel := context.WithTimeout(ctx, DefaultSearchTimeout)
	defer cancel()

	// Validate and apply limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	// Convert []float32 to pgvector.Vector
	vector := pgvector.NewVector(embedding)

	const query = `
SELECT post_id, 1 - (embedding <=> $1) AS similarity
FROM post_embeddings
WHERE embedding_type = $2
ORDER BY embedding <=> $1
LIMIT $3`

	rows, err := repo.db.QueryContext(searchCtx, query, vector, string(embeddingType), limit)
	if err != nil {
		return nil, fmt.Errorf("SearchSimilar: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]repository.SimilarPost, 0, limit)
	for rows.Next() {
		var result repository.SimilarPost
		err := rows.Scan(&result.PostID, &result.Similarity)
		if err != nil {
			return nil, fmt.Errorf("SearchSimilar: Scan: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SearchSimilar: %w", err)
	}

	return results, nil
}
