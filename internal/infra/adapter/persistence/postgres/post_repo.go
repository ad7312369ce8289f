package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"campaign-relay/internal/domain/entity"
	"campaign-relay/internal/pkg/search"
	"campaign-relay/internal/repository"

	"github.com/lib/pq"
)

type PostRepo struct {
	db           DB
	queryBuilder *PostQueryBuilder
}

func NewPostRepo(db DB) repository.PostRepository {
	return &PostRepo{
		db:           db,
		queryBuilder: NewPostQueryBuilder(),
	}
}

// scanPost is a helper function to scan a post row into the entity.
func scanPost(rows *sql.Rows) (*entity.Post, error) {
	var post entity.Post
	var status string
	if err := rows.Scan(&post.ID, &post.CampaignID, &post.Channel, &post.Headline,
		&post.Body, &post.LinkURL, &status, &post.Attempts,
		&post.ScheduledAt, &post.PublishedAt, &post.CreatedAt); err != nil {
		return nil, err
	}
	post.Status = entity.PostStatus(status)
	return &post, nil
}

const postColumns = `id, campaign_id, channel, headline, body, link_url, status, attempts, scheduled_at, published_at, created_at`

func (repo *PostRepo) List(ctx context.Context) ([]*entity.Post, error) {
	const query = `
SELECT ` + postColumns + `
FROM posts
ORDER BY scheduled_at DESC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// パフォーマンス最適化: メモリ再割り当てを削減するため事前割り当て
	posts := make([]*entity.Post, 0, 100)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (repo *PostRepo) ListWithCampaign(ctx context.Context) ([]repository.PostWithCampaign, error) {
	const query = `
SELECT p.id, p.campaign_id, p.channel, p.headline, p.body, p.link_url, p.status, p.attempts, p.scheduled_at, p.published_at, p.created_at, c.name AS campaign_name
FROM posts p
INNER JOIN campaigns c ON p.campaign_id = c.id
ORDER BY p.scheduled_at DESC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListWithCampaign: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// パフォーマンス最適化: メモリ再割り当てを削減するため事前割り当て
	result := make([]repository.PostWithCampaign, 0, 100)
	for rows.Next() {
		var post entity.Post
		var status string
		var campaignName string
		if err := rows.Scan(&post.ID, &post.CampaignID, &post.Channel, &post.Headline,
			&post.Body, &post.LinkURL, &status, &post.Attempts,
			&post.ScheduledAt, &post.PublishedAt, &post.CreatedAt, &campaignName); err != nil {
			return nil, fmt.Errorf("ListWithCampaign: Scan: %w", err)
		}
		post.Status = entity.PostStatus(status)
		result = append(result, repository.PostWithCampaign{
			Post:         &post,
			CampaignName: campaignName,
		})
	}
	return result, rows.Err()
}

// ListWithCampaignPaginated retrieves paginated posts with campaign names.
// Uses LIMIT and OFFSET for efficient pagination.
func (repo *PostRepo) ListWithCampaignPaginated(ctx context.Context, offset, limit int) ([]repository.PostWithCampaign, error) {
	const query = `
SELECT p.id, p.campaign_id, p.channel, p.headline, p.body, p.link_url, p.status, p.attempts, p.scheduled_at, p.published_at, p.created_at, c.name AS campaign_name
FROM posts p
INNER JOIN campaigns c ON p.campaign_id = c.id
ORDER BY p.scheduled_at DESC
LIMIT $1 OFFSET $2`

	rows, err := repo.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListWithCampaignPaginated: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]repository.PostWithCampaign, 0, limit)
	for rows.Next() {
		var post entity.Post
		var status string
		var campaignName string
		if err := rows.Scan(&post.ID, &post.CampaignID, &post.Channel, &post.Headline,
			&post.Body, &post.LinkURL, &status, &post.Attempts,
			&post.ScheduledAt, &post.PublishedAt, &post.CreatedAt, &campaignName); err != nil {
			return nil, fmt.Errorf("ListWithCampaignPaginated: Scan: %w", err)
		}
		post.Status = entity.PostStatus(status)
		result = append(result, repository.PostWithCampaign{
			Post:         &post,
			CampaignName: campaignName,
		})
	}
	return result, rows.Err()
}

// CountPosts returns the total number of posts in the database.
func (repo *PostRepo) CountPosts(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM posts`
	var count int64
	err := repo.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("CountPosts: %w", err)
	}
	return count, nil
}

// CountPostsByStatus returns post counts keyed by lifecycle status.
func (repo *PostRepo) CountPostsByStatus(ctx context.Context) (map[string]int64, error) {
	const query = `SELECT status, COUNT(*) FROM posts GROUP BY status`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("CountPostsByStatus: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("CountPostsByStatus: Scan: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// ListDue returns scheduled posts whose delivery time has arrived, oldest first.
func (repo *PostRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*entity.Post, error) {
	const query = `
SELECT ` + postColumns + `
FROM posts
WHERE status = 'scheduled'
  AND scheduled_at <= $1
ORDER BY scheduled_at ASC
LIMIT $2`
	rows, err := repo.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("ListDue: %w", err)
	}
	defer func() { _ = rows.Close() }()

	posts := make([]*entity.Post, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("ListDue: Scan: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (repo *PostRepo) Get(ctx context.Context, id int64) (*entity.Post, error) {
	const query = `
SELECT ` + postColumns + `
FROM posts
WHERE id = $1
LIMIT 1`
	var post entity.Post
	var status string
	err := repo.db.QueryRowContext(ctx, query, id).
		Scan(&post.ID, &post.CampaignID, &post.Channel, &post.Headline,
			&post.Body, &post.LinkURL, &status, &post.Attempts,
			&post.ScheduledAt, &post.PublishedAt, &post.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	post.Status = entity.PostStatus(status)
	return &post, nil
}

func (repo *PostRepo) GetWithCampaign(ctx context.Context, id int64) (*entity.Post, string, error) {
	const query = `
SELECT p.id, p.campaign_id, p.channel, p.headline, p.body, p.link_url, p.status, p.attempts, p.scheduled_at, p.published_at, p.created_at, c.name AS campaign_name
FROM posts p
INNER JOIN campaigns c ON p.campaign_id = c.id
WHERE p.id = $1
LIMIT 1`
	var post entity.Post
	var status string
	var campaignName string
	err := repo.db.QueryRowContext(ctx, query, id).
		Scan(&post.ID, &post.CampaignID, &post.Channel, &post.Headline,
			&post.Body, &post.LinkURL, &status, &post.Attempts,
			&post.ScheduledAt, &post.PublishedAt, &post.CreatedAt, &campaignName)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("GetWithCampaign: %w", err)
	}
	post.Status = entity.PostStatus(status)
	return &post, campaignName, nil
}

func (repo *PostRepo) Search(ctx context.Context, keyword string) ([]*entity.Post, error) {
	const query = `
SELECT ` + postColumns + `
FROM posts
WHERE headline ILIKE $1
   OR body     ILIKE $1
ORDER BY scheduled_at DESC`
	param := "%" + keyword + "%"
	rows, err := repo.db.QueryContext(ctx, query, param)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// パフォーマンス最適化: メモリ再割り当てを削減するため事前割り当て
	posts := make([]*entity.Post, 0, 100)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("Search: Scan: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (repo *PostRepo) SearchWithFilters(ctx context.Context, keywords []string, filters repository.PostSearchFilters) ([]*entity.Post, error) {
	// Check if there are any search criteria (keywords or filters)
	hasKeywords := len(keywords) > 0
	hasFilters := filters.CampaignID != nil || filters.Channel != nil ||
		filters.Status != nil || filters.From != nil || filters.To != nil

	// No keywords and no filters -> return empty result
	if !hasKeywords && !hasFilters {
		return []*entity.Post{}, nil
	}

	// Apply search timeout to prevent long-running queries
	ctx, cancel := context.WithTimeout(ctx, search.DefaultSearchTimeout)
	defer cancel()

	// Build WHERE clause using QueryBuilder
	whereClause, args := repo.queryBuilder.BuildWhereClause(keywords, filters, "")

	// Construct final query
	query := fmt.Sprintf(`
SELECT `+postColumns+`
FROM posts
%s
ORDER BY scheduled_at DESC`, whereClause)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SearchWithFilters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// パフォーマンス最適化: メモリ再割り当てを削減するため事前割り当て
	posts := make([]*entity.Post, 0, 100)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("SearchWithFilters: Scan: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// CountPostsWithFilters returns the total number of posts matching the search criteria.
// Uses the same filters as SearchWithFilters for consistency.
func (repo *PostRepo) CountPostsWithFilters(ctx context.Context, keywords []string, filters repository.PostSearchFilters) (int64, error) {
	hasKeywords := len(keywords) > 0
	hasFilters := filters.CampaignID != nil || filters.Channel != nil ||
		filters.Status != nil || filters.From != nil || filters.To != nil

	if !hasKeywords && !hasFilters {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, search.DefaultSearchTimeout)
	defer cancel()

	whereClause, args := repo.queryBuilder.BuildWhereClause(keywords, filters, "")

	query := "SELECT COUNT(*) FROM posts " + whereClause

	var count int64
	err := repo.db.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("CountPostsWithFilters: %w", err)
	}

	return count, nil
}

// SearchWithFiltersPaginated searches posts with pagination support.
// Includes campaign_name from JOIN with campaigns table.
func (repo *PostRepo) SearchWithFiltersPaginated(ctx context.Context, keywords []string, filters repository.PostSearchFilters, offset, limit int) ([]repository.PostWithCampaign, error) {
	hasKeywords := len(keywords) > 0
	hasFilters := filters.CampaignID != nil || filters.Channel != nil ||
		filters.Status != nil || filters.From != nil || filters.To != nil

	if !hasKeywords && !hasFilters {
		return []repository.PostWithCampaign{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, search.DefaultSearchTimeout)
	defer cancel()

	// Build WHERE clause using QueryBuilder with table alias 'p'
	whereClause, args := repo.queryBuilder.BuildWhereClause(keywords, filters, "p")

	// Calculate parameter index for LIMIT and OFFSET
	paramIndex := len(args) + 1

	args = append(args, limit, offset)

	query := fmt.Sprintf(`
SELECT p.id, p.campaign_id, p.channel, p.headline, p.body, p.link_url, p.status, p.attempts, p.scheduled_at, p.published_at, p.created_at, c.name AS campaign_name
FROM posts p
INNER JOIN campaigns c ON p.campaign_id = c.id
%s
ORDER BY p.scheduled_at DESC
LIMIT $%d OFFSET $%d`, whereClause, paramIndex, paramIndex+1)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SearchWithFiltersPaginated: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]repository.PostWithCampaign, 0, limit)
	for rows.Next() {
		var post entity.Post
		var status string
		var campaignName string
		if err := rows.Scan(&post.ID, &post.CampaignID, &post.Channel, &post.Headline,
			&post.Body, &post.LinkURL, &status, &post.Attempts,
			&post.ScheduledAt, &post.PublishedAt, &post.CreatedAt, &campaignName); err != nil {
			return nil, fmt.Errorf("SearchWithFiltersPaginated: Scan: %w", err)
		}
		post.Status = entity.PostStatus(status)
		result = append(result, repository.PostWithCampaign{
			Post:         &post,
			CampaignName: campaignName,
		})
	}

	return result, rows.Err()
}

func (repo *PostRepo) Create(ctx context.Context, post *entity.Post) error {
	if post.Status == "" {
		post.Status = entity.PostStatusDraft
	}

	const query = `
INSERT INTO posts
	   (campaign_id, channel, headline, body, link_url, status, attempts, scheduled_at, published_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.ExecContext(ctx, query,
		post.CampaignID, post.Channel, post.Headline, post.Body, post.LinkURL,
		string(post.Status), post.Attempts, post.ScheduledAt, post.PublishedAt, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *PostRepo) Update(ctx context.Context, post *entity.Post) error {
	const query = `
UPDATE posts SET
       campaign_id  = $1,
       channel      = $2,
       headline     = $3,
       body         = $4,
       link_url     = $5,
       status       = $6,
       attempts     = $7,
       scheduled_at = $8,
       published_at = $9
WHERE id = $10`
	res, err := repo.db.ExecContext(ctx, query,
		post.CampaignID, post.Channel, post.Headline, post.Body, post.LinkURL,
		string(post.Status), post.Attempts, post.ScheduledAt, post.PublishedAt, post.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *PostRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM posts WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}

// MarkPublishing claims a scheduled post for delivery.
// The status predicate makes the claim atomic: when two workers race,
// only one sees a row transition.
func (repo *PostRepo) MarkPublishing(ctx context.Context, id int64) (bool, error) {
	const query = `
UPDATE posts SET status = 'publishing'
WHERE id = $1 AND status = 'scheduled'`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("MarkPublishing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("MarkPublishing: RowsAffected: %w", err)
	}
	return n > 0, nil
}

func (repo *PostRepo) MarkPublished(ctx context.Context, id int64, publishedAt time.Time) error {
	const query = `
UPDATE posts SET
       status       = 'published',
       attempts     = attempts + 1,
       published_at = $1
WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, publishedAt, id)
	if err != nil {
		return fmt.Errorf("MarkPublished: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("MarkPublished: no rows affected")
	}
	return nil
}

func (repo *PostRepo) MarkFailed(ctx context.Context, id int64, attempts int) error {
	const query = `
UPDATE posts SET
       status   = 'failed',
       attempts = $1
WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, attempts, id)
	if err != nil {
		return fmt.Errorf("MarkFailed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("MarkFailed: no rows affected")
	}
	return nil
}

func (repo *PostRepo) ExistsByBody(ctx context.Context, campaignID int64, body string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM posts WHERE campaign_id = $1 AND body = $2)`
	var existsFlag bool
	err := repo.db.QueryRowContext(ctx, query, campaignID, body).Scan(&existsFlag)
	if err != nil {
		return false, fmt.Errorf("ExistsByBody: %w", err)
	}
	return existsFlag, nil
}

// ExistsByBodyBatch はバッチで本文の存在チェックを行い、N+1問題を解消する
func (repo *PostRepo) ExistsByBodyBatch(ctx context.Context, campaignID int64, bodies []string) (map[string]bool, error) {
	if len(bodies) == 0 {
		return make(map[string]bool), nil
	}

	const query = `SELECT body FROM posts WHERE campaign_id = $1 AND body = ANY($2)`
	rows, err := repo.db.QueryContext(ctx, query, campaignID, pq.Array(bodies))
	if err != nil {
		return nil, fmt.Errorf("ExistsByBodyBatch: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("ExistsByBodyBatch: Scan: %w", err)
		}
		result[body] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsByBodyBatch: rows.Err: %w", err)
	}

	return result, nil
}
