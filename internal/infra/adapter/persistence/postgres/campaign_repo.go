package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"campaign-relay/internal/domain/entity"
	"campaign-relay/internal/repository"
)

type CampaignRepo struct{ db DB }

func NewCampaignRepo(db DB) repository.CampaignRepository {
	return &CampaignRepo{db: db}
}

// scanCampaign is a helper function to scan a campaign row including channels and copy_config
func scanCampaign(rows *sql.Rows) (*entity.Campaign, error) {
	var campaign entity.Campaign
	var channelsJSON, copyConfigJSON []byte
	if err := rows.Scan(
		&campaign.ID, &campaign.Name, &campaign.Brief, &campaign.Objective, &campaign.Status,
		&channelsJSON, &copyConfigJSON, &campaign.LastPublishedAt,
		&campaign.CreatedAt, &campaign.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := decodeCampaignJSON(&campaign, channelsJSON, copyConfigJSON); err != nil {
		return nil, err
	}

	return &campaign, nil
}

// decodeCampaignJSON unmarshals the JSONB columns into the entity.
func decodeCampaignJSON(campaign *entity.Campaign, channelsJSON, copyConfigJSON []byte) error {
	if len(channelsJSON) > 0 {
		if err := json.Unmarshal(channelsJSON, &campaign.Channels); err != nil {
			return fmt.Errorf("unmarshal channels: %w", err)
		}
	}
	if len(copyConfigJSON) > 0 {
		var config entity.CopyConfig
		if err := json.Unmarshal(copyConfigJSON, &config); err != nil {
			return fmt.Errorf("unmarshal copy_config: %w", err)
		}
		campaign.CopyConfig = &config
	}
	return nil
}

// encodeCampaignJSON marshals the JSONB columns from the entity.
func encodeCampaignJSON(campaign *entity.Campaign) (channelsJSON, copyConfigJSON []byte, err error) {
	channelsJSON, err = json.Marshal(campaign.Channels)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal channels: %w", err)
	}
	if campaign.CopyConfig != nil {
		copyConfigJSON, err = json.Marshal(campaign.CopyConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal copy_config: %w", err)
		}
	}
	return channelsJSON, copyConfigJSON, nil
}

func (repo *CampaignRepo) Get(ctx context.Context, id int64) (*entity.Campaign, error) {
	const query = `
SELECT id, name, brief, objective, status, channels, copy_config, last_published_at, created_at, updated_at
FROM campaigns
WHERE id = $1
LIMIT 1`
	var campaign entity.Campaign
	var channelsJSON, copyConfigJSON []byte
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&campaign.ID, &campaign.Name, &campaign.Brief, &campaign.Objective, &campaign.Status,
		&channelsJSON, &copyConfigJSON, &campaign.LastPublishedAt,
		&campaign.CreatedAt, &campaign.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	if err := decodeCampaignJSON(&campaign, channelsJSON, copyConfigJSON); err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	return &campaign, nil
}

func (repo *CampaignRepo) List(ctx context.Context) ([]*entity.Campaign, error) {
	const query = `
SELECT id, name, brief, objective, status, channels, copy_config, last_published_at, created_at, updated_at
FROM campaigns
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// パフォーマンス最適化: メモリ再割り当てを削減するため事前割り当て
	campaigns := make([]*entity.Campaign, 0, 50)
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}
	return campaigns, rows.Err()
}

func (repo *CampaignRepo) ListActive(ctx context.Context) ([]*entity.Campaign, error) {
	const query = `
SELECT id, name, brief, objective, status, channels, copy_config, last_published_at, created_at, updated_at
FROM campaigns
WHERE status = 'active'
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// パフォーマンス最適化: メモリ再割り当てを削減するため事前割り当て
	activeCampaigns := make([]*entity.Campaign, 0, 50)
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActive: %w", err)
		}
		activeCampaigns = append(activeCampaigns, campaign)
	}
	return activeCampaigns, rows.Err()
}

func (repo *CampaignRepo) Search(ctx context.Context, kw string) ([]*entity.Campaign, error) {
	const query = `
SELECT id, name, brief, objective, status, channels, copy_config, last_published_at, created_at, updated_at
FROM campaigns
WHERE name  ILIKE $1
OR    brief ILIKE $1
ORDER BY id ASC`
	param := "%" + kw + "%"
	rows, err := repo.db.QueryContext(ctx, query, param)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// パフォーマンス最適化: メモリ再割り当てを削減するため事前割り当て
	campaigns := make([]*entity.Campaign, 0, 50)
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("Search: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}
	return campaigns, rows.Err()
}

func (repo *CampaignRepo) Create(ctx context.Context, campaign *entity.Campaign) error {
	// Default to draft if status is empty
	if campaign.Status == "" {
		campaign.Status = entity.CampaignStatusDraft
	}

	channelsJSON, copyConfigJSON, err := encodeCampaignJSON(campaign)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	const query = `
INSERT INTO campaigns (name, brief, objective, status, channels, copy_config, last_published_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = repo.db.ExecContext(ctx, query,
		campaign.Name, campaign.Brief, campaign.Objective, campaign.Status,
		channelsJSON, copyConfigJSON, campaign.LastPublishedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *CampaignRepo) Update(ctx context.Context, campaign *entity.Campaign) error {
	if campaign.Status == "" {
		campaign.Status = entity.CampaignStatusDraft
	}

	channelsJSON, copyConfigJSON, err := encodeCampaignJSON(campaign)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}

	const query = `
UPDATE campaigns SET
       name              = $1,
       brief             = $2,
       objective         = $3,
       status            = $4,
       channels          = $5,
       copy_config       = $6,
       last_published_at = $7,
       updated_at        = NOW()
WHERE id = $8`
	res, err := repo.db.ExecContext(ctx, query,
		campaign.Name, campaign.Brief, campaign.Objective, campaign.Status,
		channelsJSON, copyConfigJSON, campaign.LastPublishedAt, campaign.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *CampaignRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM campaigns WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}

func (repo *CampaignRepo) TouchPublishedAt(ctx context.Context, id int64, time time.Time) error {
	const query = `UPDATE campaigns SET last_published_at = $1 WHERE id = $2`
	_, err := repo.db.ExecContext(ctx, query, time, id)
	return err
}
