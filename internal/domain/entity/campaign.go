package entity

import (
	"errors"
	"fmt"
	"time"
)

// Campaign represents a marketing campaign in the system.
// It groups the scheduled posts for one initiative and carries the brief
// and copy configuration used when post copy is generated.
type Campaign struct {
	ID              int64
	Name            string
	Brief           string
	Objective       string      `json:"objective"`   // Awareness, Launch, Nurture, Winback
	Status          string      `json:"status"`      // draft, active, archived
	Channels        []string    `json:"channels"`    // Delivery channels for generated posts
	CopyConfig      *CopyConfig `json:"copy_config"` // Configuration for copy generation
	LastPublishedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Campaign status values.
const (
	CampaignStatusDraft    = "draft"
	CampaignStatusActive   = "active"
	CampaignStatusArchived = "archived"
)

// CopyConfig holds per-campaign configuration for copy generation.
// Different fields matter depending on the campaign objective:
// - Awareness: Tone, Language, Hashtags
// - Launch / Nurture / Winback: additionally CTALabel and LandingURL
type CopyConfig struct {
	// Voice
	Tone     string `json:"tone,omitempty"`     // e.g. "playful", "matter-of-fact"
	Language string `json:"language,omitempty"` // BCP 47 tag, empty means "en"

	// Call to action
	CTALabel   string `json:"cta_label,omitempty"`
	LandingURL string `json:"landing_url,omitempty"`

	// Common
	MaxLength int      `json:"max_length,omitempty"` // Upper bound on generated copy runes
	Hashtags  []string `json:"hashtags,omitempty"`
}

// Validate validates the Campaign entity fields.
// It checks that the objective and status are valid, that at least one
// known channel is configured, and that objectives which render a call
// to action carry a copy configuration.
func (c *Campaign) Validate() error {
	// Objectiveが空の場合はAwarenessとみなす（後方互換性）
	if c.Objective == "" {
		c.Objective = "Awareness"
	}

	// Objectiveの妥当性チェック
	validObjectives := map[string]bool{
		"Awareness": true,
		"Launch":    true,
		"Nurture":   true,
		"Winback":   true,
	}
	if !validObjectives[c.Objective] {
		return fmt.Errorf("invalid objective: %s (must be Awareness, Launch, Nurture, or Winback)", c.Objective)
	}

	if c.Status == "" {
		c.Status = CampaignStatusDraft
	}
	switch c.Status {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusArchived:
	default:
		return fmt.Errorf("invalid status: %s (must be draft, active, or archived)", c.Status)
	}

	if c.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}

	if len(c.Channels) == 0 {
		return errors.New("at least one channel is required")
	}
	for _, ch := range c.Channels {
		if !IsValidChannel(ch) {
			return fmt.Errorf("invalid channel: %s (must be slack, discord, or webhook)", ch)
		}
	}

	// CTAを含むObjectiveにはCopyConfigが必須
	if c.Objective != "Awareness" && c.CopyConfig == nil {
		return errors.New("copy_config is required for non-Awareness objectives")
	}
	if c.CopyConfig != nil && c.CopyConfig.MaxLength < 0 {
		return &ValidationError{Field: "copy_config.max_length", Message: "must not be negative"}
	}

	return nil
}

// IsActive reports whether the campaign is eligible for scheduling and publishing.
func (c *Campaign) IsActive() bool {
	return c.Status == CampaignStatusActive
}
