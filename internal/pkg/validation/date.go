// Package validation provides parsing helpers for user-supplied request
// parameters.
package validation

import (
	"fmt"
	"time"
)

// ParseDateISO8601 parses a date or timestamp in ISO 8601 form.
// It accepts a full RFC 3339 timestamp or a bare date (2006-01-02), which is
// interpreted as midnight UTC. Returns a pointer so callers can assign the
// result directly to optional filter fields.
func ParseDateISO8601(value string) (*time.Time, error) {
	if value == "" {
		return nil, fmt.Errorf("date is empty")
	}

	layouts := []string{time.RFC3339, "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("invalid date format %q (expected ISO 8601)", value)
}
