package campaign

import (
	"time"

	"campaign-relay/internal/domain/entity"
)

type DTO struct {
	ID              int64              `json:"id"`
	Name            string             `json:"name"`
	Brief           string             `json:"brief,omitempty"`
	Objective       string             `json:"objective"`
	Status          string             `json:"status"`
	Channels        []string           `json:"channels"`
	CopyConfig      *entity.CopyConfig `json:"copy_config,omitempty"`
	LastPublishedAt *time.Time         `json:"last_published_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func toDTO(c *entity.Campaign) DTO {
	return DTO{
		ID:              c.ID,
		Name:            c.Name,
		Brief:           c.Brief,
		Objective:       c.Objective,
		Status:          c.Status,
		Channels:        c.Channels,
		CopyConfig:      c.CopyConfig,
		LastPublishedAt: c.LastPublishedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
