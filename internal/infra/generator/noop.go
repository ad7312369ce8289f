package generator

import (
	"context"
	"fmt"

	"campaign-relay/internal/utils/text"
)

// NoOp is a generator that assembles copy directly from the brief without
// calling any AI provider. Useful for testing, development, and dry runs.
type NoOp struct{}

// NewNoOp creates a new NoOp generator.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// GenerateCopy returns a deterministic draft built from the brief text.
// The body is truncated to 500 characters to match the expected copy shape.
func (n *NoOp) GenerateCopy(_ context.Context, brief Brief) (*Draft, error) {
	const maxLength = 500

	headline := brief.CampaignName
	if headline == "" {
		return nil, fmt.Errorf("brief carries no campaign name")
	}

	body := brief.Brief
	if body == "" {
		body = brief.Objective
	}
	if body == "" {
		return nil, fmt.Errorf("brief carries no body text")
	}

	return &Draft{
		Headline: headline,
		Body:     text.TruncateRunes(body, maxLength),
	}, nil
}
