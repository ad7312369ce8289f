package post

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"campaign-relay/internal/common/pagination"
	"campaign-relay/internal/domain/entity"
	"campaign-relay/internal/infra/generator"
	"campaign-relay/internal/repository"
	campaignUC "campaign-relay/internal/usecase/campaign"
)

// CopyGenerator is an interface for AI-powered post copy generation.
// Implementations generate a headline and body from a campaign brief.
type CopyGenerator interface {
	GenerateCopy(ctx context.Context, brief generator.Brief) (*generator.Draft, error)
}

// Embedder computes an embedding vector for a post body.
// Used for near-duplicate detection across a campaign's posts.
type Embedder interface {
	Embed(ctx context.Context, body string) ([]float32, error)
}

// duplicateSimilarity is the cosine-similarity threshold above which two
// bodies are treated as the same copy.
const duplicateSimilarity = 0.92

// DraftInput represents the input parameters for drafting a new post.
type DraftInput struct {
	CampaignID int64
	Channel    string
	LinkURL    string
	Seeds      []string
}

// UpdateInput represents the input parameters for updating an existing post.
// Fields with nil values will not be updated.
type UpdateInput struct {
	ID       int64
	Headline *string
	Body     *string
	LinkURL  *string
}

// PaginatedResult represents the result of a paginated query.
// It contains both the data and pagination metadata.
type PaginatedResult struct {
	Data       []repository.PostWithCampaign
	Pagination pagination.Metadata
}

// Service provides post management use cases.
// It drafts copy through a generator, guards against duplicate copy with
// exact and embedding-similarity checks, and delegates persistence to the
// repositories.
type Service struct {
	Posts      repository.PostRepository
	Campaigns  repository.CampaignRepository
	Embeddings repository.PostEmbeddingRepository
	Generator  CopyGenerator
	Embedder   Embedder // nil disables the similarity check
}

// List retrieves all posts from the repository.
func (s *Service) List(ctx context.Context) ([]*entity.Post, error) {
	posts, err := s.Posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListWithCampaignPaginated retrieves posts with pagination support.
// It calculates the appropriate offset, retrieves the data and total count,
// and returns a PaginatedResult with both data and metadata.
func (s *Service) ListWithCampaignPaginated(ctx context.Context, params pagination.Params) (*PaginatedResult, error) {
	total, err := s.Posts.CountPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	posts, err := s.Posts.ListWithCampaignPaginated(ctx, params.Offset(), params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list posts with campaign paginated: %w", err)
	}

	return &PaginatedResult{
		Data:       posts,
		Pagination: pagination.NewMetadata(total, params),
	}, nil
}

// Get retrieves a single post by its ID.
// Returns ErrInvalidPostID if the ID is not positive.
// Returns ErrPostNotFound if the post does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Post, error) {
	if id <= 0 {
		return nil, ErrInvalidPostID
	}

	post, err := s.Posts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// GetWithCampaign retrieves a single post by its ID along with the campaign name.
func (s *Service) GetWithCampaign(ctx context.Context, id int64) (*entity.Post, string, error) {
	if id <= 0 {
		return nil, "", ErrInvalidPostID
	}

	post, campaignName, err := s.Posts.GetWithCampaign(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("get post with campaign: %w", err)
	}
	if post == nil {
		return nil, "", ErrPostNotFound
	}
	return post, campaignName, nil
}

// SearchWithFilters searches posts with multi-keyword support and optional filters.
// Keywords use AND logic (all keywords must match).
func (s *Service) SearchWithFilters(ctx context.Context, keywords []string, filters repository.PostSearchFilters) ([]*entity.Post, error) {
	posts, err := s.Posts.SearchWithFilters(ctx, keywords, filters)
	if err != nil {
		return nil, fmt.Errorf("search posts with filters: %w", err)
	}
	return posts, nil
}

// Draft generates post copy for a campaign and stores it as a draft post.
// The campaign must be active and the channel must be one of the campaign's
// configured channels. Copy that exactly matches an existing post, or whose
// embedding is nearly identical to one, is rejected with ErrDuplicateCopy.
func (s *Service) Draft(ctx context.Context, in DraftInput) (*entity.Post, error) {
	if in.CampaignID <= 0 {
		return nil, &entity.ValidationError{Field: "campaignID", Message: "must be positive"}
	}

	campaign, err := s.Campaigns.Get(ctx, in.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	if campaign == nil {
		return nil, campaignUC.ErrCampaignNotFound
	}
	if !campaign.IsActive() {
		return nil, ErrCampaignNotActive
	}
	if !entity.IsValidChannel(in.Channel) {
		return nil, &entity.ValidationError{Field: "channel", Message: "unknown channel"}
	}

	draft, err := s.Generator.GenerateCopy(ctx, generator.Brief{
		CampaignName: campaign.Name,
		Objective:    campaign.Objective,
		Brief:        campaign.Brief,
		Channel:      in.Channel,
		Seeds:        in.Seeds,
	})
	if err != nil {
		return nil, fmt.Errorf("generate copy: %w", err)
	}

	vector, err := s.checkDuplicate(ctx, campaign.ID, draft.Body)
	if err != nil {
		return nil, err
	}

	post := &entity.Post{
		CampaignID: campaign.ID,
		Channel:    in.Channel,
		Headline:   draft.Headline,
		Body:       draft.Body,
		LinkURL:    in.LinkURL,
		Status:     entity.PostStatusDraft,
		CreatedAt:  time.Now(),
	}

	if err := s.Posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if vector != nil {
		s.storeEmbedding(ctx, post.ID, vector)
	}

	return post, nil
}

// checkDuplicate runs the exact-body and embedding-similarity checks.
// It returns the computed vector (if any) so the caller can store it once
// the post row exists. Embedding failures degrade to the exact check only.
func (s *Service) checkDuplicate(ctx context.Context, campaignID int64, body string) ([]float32, error) {
	exists, err := s.Posts.ExistsByBody(ctx, campaignID, body)
	if err != nil {
		return nil, fmt.Errorf("check duplicate body: %w", err)
	}
	if exists {
		return nil, ErrDuplicateCopy
	}

	if s.Embedder == nil || s.Embeddings == nil {
		return nil, nil
	}

	vector, err := s.Embedder.Embed(ctx, body)
	if err != nil {
		// The embedding provider being down must not block drafting.
		slog.WarnContext(ctx, "embedding unavailable, skipping similarity check",
			slog.Int64("campaign_id", campaignID),
			slog.String("error", err.Error()))
		return nil, nil
	}

	similar, err := s.Embeddings.SearchSimilar(ctx, vector, entity.EmbeddingTypeBody, 5)
	if err != nil {
		slog.WarnContext(ctx, "similarity search failed, skipping similarity check",
			slog.Int64("campaign_id", campaignID),
			slog.String("error", err.Error()))
		return vector, nil
	}

	for _, match := range similar {
		if match.Similarity >= duplicateSimilarity {
			slog.InfoContext(ctx, "near-duplicate copy rejected",
				slog.Int64("campaign_id", campaignID),
				slog.Int64("similar_post_id", match.PostID),
				slog.Float64("similarity", match.Similarity))
			return nil, ErrDuplicateCopy
		}
	}

	return vector, nil
}

// storeEmbedding persists the body embedding for future similarity checks.
// Failures are logged and swallowed; the post itself is already created.
func (s *Service) storeEmbedding(ctx context.Context, postID int64, vector []float32) {
	embedding := &entity.PostEmbedding{
		PostID:        postID,
		EmbeddingType: entity.EmbeddingTypeBody,
		Provider:      entity.EmbeddingProviderOpenAI,
		Model:         "text-embedding-3-small",
		Embedding:     vector,
		Dimension:     int32(len(vector)),
	}

	if err := s.Embeddings.Upsert(ctx, embedding); err != nil {
		slog.WarnContext(ctx, "failed to store post embedding",
			slog.Int64("post_id", postID),
			slog.String("error", err.Error()))
	}
}

// Schedule transitions a draft or failed post to scheduled at the given time.
// Returns ErrNotSchedulable if the post is publishing or already published.
func (s *Service) Schedule(ctx context.Context, id int64, at time.Time) error {
	if id <= 0 {
		return ErrInvalidPostID
	}

	post, err := s.Posts.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return ErrPostNotFound
	}

	switch post.Status {
	case entity.PostStatusDraft, entity.PostStatusFailed:
	default:
		return ErrNotSchedulable
	}

	if at.IsZero() {
		return &entity.ValidationError{Field: "scheduledAt", Message: "is required"}
	}

	post.Status = entity.PostStatusScheduled
	post.ScheduledAt = at

	if err := s.Posts.Update(ctx, post); err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Update modifies an existing post's copy fields.
// Only non-nil fields in the input will be updated.
func (s *Service) Update(ctx context.Context, in UpdateInput) error {
	if in.ID <= 0 {
		return ErrInvalidPostID
	}

	post, err := s.Posts.Get(ctx, in.ID)
	if err != nil {
		return fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return ErrPostNotFound
	}

	if in.Headline != nil {
		if *in.Headline == "" {
			return &entity.ValidationError{Field: "headline", Message: "cannot be empty"}
		}
		post.Headline = *in.Headline
	}
	if in.Body != nil {
		if *in.Body == "" {
			return &entity.ValidationError{Field: "body", Message: "cannot be empty"}
		}
		post.Body = *in.Body
	}
	if in.LinkURL != nil {
		post.LinkURL = *in.LinkURL
	}

	if err := s.Posts.Update(ctx, post); err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post and its stored embeddings by ID.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidPostID
	}

	if err := s.Posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if s.Embeddings != nil {
		if _, err := s.Embeddings.DeleteByPostID(ctx, id); err != nil {
			slog.WarnContext(ctx, "failed to delete post embeddings",
				slog.Int64("post_id", id),
				slog.String("error", err.Error()))
		}
	}
	return nil
}
