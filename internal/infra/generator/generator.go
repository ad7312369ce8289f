// Package generator provides AI-powered post copy generation implementations.
// It includes adapters for Claude (Anthropic) and OpenAI APIs with reliability patterns.
// This package supports configurable character limits for post bodies with comprehensive
// observability through structured logging and Prometheus metrics.
package generator

import (
	"fmt"
	"strings"
)

// Brief carries the campaign context a generator writes copy from.
type Brief struct {
	// CampaignName is the campaign the copy belongs to
	CampaignName string

	// Objective is the campaign's stated goal (launch, nurture, reactivation...)
	Objective string

	// Brief is the long-form positioning text the copy is grounded in
	Brief string

	// Channel is the target channel; tone and length follow from it
	Channel string

	// Seeds are optional curated snippets the copy may draw from
	Seeds []string
}

// Draft is one generated piece of post copy.
type Draft struct {
	// Headline is the first line of the completion
	Headline string

	// Body is everything after the headline line
	Body string
}

// parseDraft splits a model completion into headline and body.
// The prompts ask for the headline on the first line and the body below it;
// stray markdown markers and quote brackets around the headline are stripped.
func parseDraft(raw string) (*Draft, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("empty completion")
	}

	headline, body, found := strings.Cut(trimmed, "\n")
	if !found {
		return nil, fmt.Errorf("completion carries no body line")
	}

	headline = strings.Trim(strings.TrimSpace(headline), "「」\"#* ")
	body = strings.TrimSpace(body)
	if headline == "" {
		return nil, fmt.Errorf("completion carries an empty headline")
	}
	if body == "" {
		return nil, fmt.Errorf("completion carries an empty body")
	}

	return &Draft{Headline: headline, Body: body}, nil
}
