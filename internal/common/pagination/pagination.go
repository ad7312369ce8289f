// Package pagination provides page/limit query parsing and offset math
// shared by the list endpoints.
package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// Defaults applied when a request carries no pagination parameters.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params represents pagination query parameters from an HTTP request.
type Params struct {
	Page  int // 1-based page number
	Limit int // Items per page
}

// Metadata contains pagination metadata included in API responses.
type Metadata struct {
	Total      int64 `json:"total"`       // Total number of items across all pages
	Page       int   `json:"page"`        // Current page number (1-based)
	Limit      int   `json:"limit"`       // Items per page
	TotalPages int   `json:"total_pages"` // Calculated total number of pages
}

// ParseQueryParams parses page and limit from the request query string.
// Missing parameters fall back to the defaults; present-but-invalid
// parameters are an error so that a typo never silently returns page 1.
func ParseQueryParams(r *http.Request) (Params, error) {
	params := Params{
		Page:  DefaultPage,
		Limit: DefaultLimit,
	}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return params, fmt.Errorf("invalid query parameter: page must be a positive integer")
		}
		params.Page = page
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > MaxLimit {
			return params, fmt.Errorf("invalid query parameter: limit must be between 1 and %d", MaxLimit)
		}
		params.Limit = limit
	}

	return params, nil
}

// Offset converts the 1-based page number into a database OFFSET.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewMetadata assembles response metadata for a total row count.
// An empty result set still reports one page.
func NewMetadata(total int64, params Params) Metadata {
	totalPages := 1
	if total > 0 {
		totalPages = int((total + int64(params.Limit) - 1) / int64(params.Limit))
	}
	return Metadata{
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
	}
}
