package campaign

import (
	"context"
	"fmt"
	"time"

	"campaign-relay/internal/domain/entity"
	"campaign-relay/internal/repository"
)

// CreateInput represents the input parameters for creating a new campaign.
type CreateInput struct {
	Name       string
	Brief      string
	Objective  string
	Channels   []string
	CopyConfig *entity.CopyConfig
}

// UpdateInput represents the input parameters for updating an existing campaign.
// Fields with nil values will not be updated.
type UpdateInput struct {
	ID         int64
	Name       *string
	Brief      *string
	Objective  *string
	Status     *string
	Channels   []string
	CopyConfig *entity.CopyConfig
}

// Service provides campaign management use cases.
// It handles business logic for campaign operations and delegates persistence to the repository.
type Service struct {
	Repo repository.CampaignRepository
}

// List retrieves all campaigns from the repository.
// Returns an error if the repository operation fails.
func (s *Service) List(ctx context.Context) ([]*entity.Campaign, error) {
	campaigns, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}

// ListActive retrieves campaigns eligible for scheduling and publishing.
func (s *Service) ListActive(ctx context.Context) ([]*entity.Campaign, error) {
	campaigns, err := s.Repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active campaigns: %w", err)
	}
	return campaigns, nil
}

// Get retrieves a single campaign by its ID.
// Returns ErrInvalidCampaignID if the ID is not positive.
// Returns ErrCampaignNotFound if the campaign does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Campaign, error) {
	if id <= 0 {
		return nil, ErrInvalidCampaignID
	}

	campaign, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	return campaign, nil
}

// Search finds campaigns matching the given keyword.
// The search is performed against campaign names and briefs.
// Returns an error if the repository operation fails.
func (s *Service) Search(ctx context.Context, keyword string) ([]*entity.Campaign, error) {
	campaigns, err := s.Repo.Search(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("search campaigns: %w", err)
	}
	return campaigns, nil
}

// Create creates a new campaign with the provided input.
// New campaigns start in draft status; activation is an explicit update.
// Returns a ValidationError if any input field is invalid.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Campaign, error) {
	now := time.Now()
	campaign := &entity.Campaign{
		Name:       in.Name,
		Brief:      in.Brief,
		Objective:  in.Objective,
		Status:     entity.CampaignStatusDraft,
		Channels:   in.Channels,
		CopyConfig: in.CopyConfig,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := campaign.Validate(); err != nil {
		return nil, fmt.Errorf("validate campaign: %w", err)
	}

	if err := s.Repo.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return campaign, nil
}

// Update modifies an existing campaign with the provided input.
// Only non-nil fields in the input will be updated.
// Returns ErrInvalidCampaignID if the ID is not positive.
// Returns ErrCampaignNotFound if the campaign does not exist.
// Returns a ValidationError if the updated campaign is invalid.
func (s *Service) Update(ctx context.Context, in UpdateInput) error {
	if in.ID <= 0 {
		return ErrInvalidCampaignID
	}

	campaign, err := s.Repo.Get(ctx, in.ID)
	if err != nil {
		return fmt.Errorf("get campaign: %w", err)
	}
	if campaign == nil {
		return ErrCampaignNotFound
	}

	if in.Name != nil {
		campaign.Name = *in.Name
	}
	if in.Brief != nil {
		campaign.Brief = *in.Brief
	}
	if in.Objective != nil {
		campaign.Objective = *in.Objective
	}
	if in.Status != nil {
		campaign.Status = *in.Status
	}
	if in.Channels != nil {
		campaign.Channels = in.Channels
	}
	if in.CopyConfig != nil {
		campaign.CopyConfig = in.CopyConfig
	}
	campaign.UpdatedAt = time.Now()

	if err := campaign.Validate(); err != nil {
		return fmt.Errorf("validate campaign: %w", err)
	}

	if err := s.Repo.Update(ctx, campaign); err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return nil
}

// Delete removes a campaign by its ID.
// Returns ErrInvalidCampaignID if the ID is not positive.
// Returns an error if the repository operation fails.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidCampaignID
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return nil
}
