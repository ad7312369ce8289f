// Package post provides HTTP handlers for post-related endpoints.
// It includes handlers for drafting, scheduling, listing, searching,
// updating, and deleting posts.
package post

import (
	"time"

	"campaign-relay/internal/domain/entity"
)

// DTO represents the JSON structure for post data transfer.
type DTO struct {
	ID           int64      `json:"id" example:"1"`
	CampaignID   int64      `json:"campaign_id" example:"1"`
	CampaignName string     `json:"campaign_name,omitempty" example:"Spring Launch"`
	Channel      string     `json:"channel" example:"slack"`
	Headline     string     `json:"headline" example:"新料金プランの提供を開始しました"`
	Body         string     `json:"body" example:"本日より新しい料金プランをご利用いただけます。"`
	LinkURL      string     `json:"link_url,omitempty" example:"https://example.com/pricing"`
	Status       string     `json:"status" example:"draft"`
	Attempts     int        `json:"attempts" example:"0"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at" example:"2025-10-26T12:00:00Z"`
}

func toDTO(p *entity.Post, campaignName string) DTO {
	dto := DTO{
		ID:           p.ID,
		CampaignID:   p.CampaignID,
		CampaignName: campaignName,
		Channel:      p.Channel,
		Headline:     p.Headline,
		Body:         p.Body,
		LinkURL:      p.LinkURL,
		Status:       string(p.Status),
		Attempts:     p.Attempts,
		PublishedAt:  p.PublishedAt,
		CreatedAt:    p.CreatedAt,
	}
	if !p.ScheduledAt.IsZero() {
		at := p.ScheduledAt
		dto.ScheduledAt = &at
	}
	return dto
}
