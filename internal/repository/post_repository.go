package repository

import (
	"context"
	"time"

	"campaign-relay/internal/domain/entity"
)

// PostWithCampaign represents a post along with its campaign name.
type PostWithCampaign struct {
	Post         *entity.Post
	CampaignName string
}

// PostSearchFilters contains optional filters for post search
type PostSearchFilters struct {
	CampaignID *int64             // Optional: Filter by campaign ID
	Channel    *string            // Optional: Filter by delivery channel
	Status     *entity.PostStatus // Optional: Filter by lifecycle status
	From       *time.Time         // Optional: Filter posts scheduled >= this time
	To         *time.Time         // Optional: Filter posts scheduled <= this time
}

type PostRepository interface {
	List(ctx context.Context) ([]*entity.Post, error)
	// ListWithCampaign retrieves all posts with their campaign names.
	// Returns a slice of PostWithCampaign containing post and campaign name pairs.
	ListWithCampaign(ctx context.Context) ([]PostWithCampaign, error)
	// ListWithCampaignPaginated retrieves paginated posts with their campaign names.
	// Uses LIMIT and OFFSET for efficient pagination.
	// Parameters:
	//   - offset: Number of rows to skip (calculated from page number)
	//   - limit: Maximum number of rows to return
	// Returns posts ordered by scheduled_at DESC.
	ListWithCampaignPaginated(ctx context.Context, offset, limit int) ([]PostWithCampaign, error)
	// CountPosts returns the total number of posts in the database.
	// This is used for calculating pagination metadata (total pages, etc.).
	CountPosts(ctx context.Context) (int64, error)
	// CountPostsByStatus returns post counts keyed by lifecycle status.
	// Statuses with no posts are absent from the map.
	CountPostsByStatus(ctx context.Context) (map[string]int64, error)
	// ListDue returns scheduled posts whose delivery time has arrived,
	// oldest first, capped at limit. The worker claims them one by one
	// through MarkPublishing.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*entity.Post, error)
	Get(ctx context.Context, id int64) (*entity.Post, error)
	// GetWithCampaign retrieves a post by ID and includes the campaign name.
	// Returns the post entity, campaign name, and error.
	// Returns (nil, "", nil) if the post is not found.
	GetWithCampaign(ctx context.Context, id int64) (*entity.Post, string, error)
	Search(ctx context.Context, keyword string) ([]*entity.Post, error)
	// SearchWithFilters searches posts with multi-keyword AND logic and optional filters
	SearchWithFilters(ctx context.Context, keywords []string, filters PostSearchFilters) ([]*entity.Post, error)
	Create(ctx context.Context, post *entity.Post) error
	Update(ctx context.Context, post *entity.Post) error
	Delete(ctx context.Context, id int64) error
	// MarkPublishing transitions a post from scheduled to publishing.
	// Returns false when the post was not in scheduled state, which means
	// another worker already claimed it.
	MarkPublishing(ctx context.Context, id int64) (bool, error)
	// MarkPublished records a successful delivery.
	MarkPublished(ctx context.Context, id int64, publishedAt time.Time) error
	// MarkFailed records a failed delivery attempt and returns the post to
	// failed state with the given attempt count.
	MarkFailed(ctx context.Context, id int64, attempts int) error
	ExistsByBody(ctx context.Context, campaignID int64, body string) (bool, error)
	// ExistsByBodyBatch はバッチで本文の存在チェックを行い、N+1問題を解消する
	ExistsByBodyBatch(ctx context.Context, campaignID int64, bodies []string) (map[string]bool, error)
}
