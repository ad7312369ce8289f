package generator

import "fmt"

// GeneratorConfig is implemented by the per-provider configurations
// (Claude, OpenAI) so the drafting service can validate any of them the
// same way.
type GeneratorConfig interface {
	// GetCharacterLimit returns the maximum number of characters allowed
	// in a generated post body.
	GetCharacterLimit() int

	// Validate checks all configuration fields.
	Validate() error
}

// Bounds for the post body character limit. The floor keeps copy long
// enough to be useful; the ceiling stays under every platform's hard cap.
const (
	minCharLimit = 100
	maxCharLimit = 5000
)

// ValidateCharacterLimit checks that limit lies within [100, 5000].
func ValidateCharacterLimit(limit int) error {
	if limit < minCharLimit {
		return fmt.Errorf("character limit %d is below minimum %d", limit, minCharLimit)
	}
	if limit > maxCharLimit {
		return fmt.Errorf("character limit %d exceeds maximum %d", limit, maxCharLimit)
	}
	return nil
}
