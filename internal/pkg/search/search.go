// Package search provides keyword parsing and escaping helpers shared by
// the search handlers and the persistence adapters.
package search

import (
	"fmt"
	"strings"
	"time"
)

// Limits applied to user-supplied search input.
const (
	// DefaultMaxKeywordCount is the maximum number of keywords per search.
	DefaultMaxKeywordCount = 5

	// DefaultMaxKeywordLength is the maximum length of a single keyword in runes.
	DefaultMaxKeywordLength = 100

	// DefaultSearchTimeout bounds search queries so a slow ILIKE scan
	// cannot hold a connection indefinitely.
	DefaultSearchTimeout = 5 * time.Second
)

// ParseKeywords splits raw input into search keywords.
// Keywords are separated by whitespace and combined with AND logic by the
// caller. It enforces the count and per-keyword length limits and rejects
// input that parses to no keywords at all.
func ParseKeywords(raw string, maxCount, maxLength int) ([]string, error) {
	keywords := strings.Fields(raw)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("no keywords provided")
	}
	if len(keywords) > maxCount {
		return nil, fmt.Errorf("too many keywords: %d (max %d)", len(keywords), maxCount)
	}
	for _, kw := range keywords {
		if length := len([]rune(kw)); length > maxLength {
			return nil, fmt.Errorf("keyword too long: %d characters (max %d)", length, maxLength)
		}
	}
	return keywords, nil
}

// EscapeILIKE escapes LIKE metacharacters in a keyword and wraps it in
// wildcards, producing a pattern suitable for a contains-style ILIKE match.
func EscapeILIKE(keyword string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`%`, `\%`,
		`_`, `\_`,
	)
	return "%" + replacer.Replace(keyword) + "%"
}
