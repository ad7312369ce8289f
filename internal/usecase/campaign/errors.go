// Package campaign provides use cases for managing marketing campaigns.
// It implements business logic for creating, updating, archiving, and querying
// campaigns, including validation and interaction with the campaign repository.
package campaign

import "errors"

// Sentinel errors for campaign use case operations.
var (
	// ErrCampaignNotFound indicates that the requested campaign was not found.
	// This error is typically returned when attempting to retrieve or update
	// a campaign that does not exist in the repository.
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrInvalidCampaignID indicates that the provided campaign ID is invalid.
	// Campaign IDs must be positive integers.
	ErrInvalidCampaignID = errors.New("invalid campaign ID")

	// ErrCampaignArchived indicates an operation that requires a live campaign
	// was attempted against an archived one.
	ErrCampaignArchived = errors.New("campaign is archived")
)
