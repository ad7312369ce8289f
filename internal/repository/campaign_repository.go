package repository

import (
	"context"
	"time"

	"campaign-relay/internal/domain/entity"
)

type CampaignRepository interface {
	Get(ctx context.Context, id int64) (*entity.Campaign, error)
	List(ctx context.Context) ([]*entity.Campaign, error)
	ListActive(ctx context.Context) ([]*entity.Campaign, error)
	Search(ctx context.Context, keyword string) ([]*entity.Campaign, error)
	Create(ctx context.Context, campaign *entity.Campaign) error
	Update(ctx context.Context, campaign *entity.Campaign) error
	Delete(ctx context.Context, id int64) error
	TouchPublishedAt(ctx context.Context, id int64, t time.Time) error
}
