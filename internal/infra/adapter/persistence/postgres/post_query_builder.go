// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"fmt"
	"strings"

	"campaign-relay/internal/pkg/search"
	"campaign-relay/internal/repository"
)

// PostQueryBuilder builds WHERE clauses for post search in PostgreSQL.
// This builder is shared between COUNT and SELECT queries to eliminate duplication.
// It uses PostgreSQL-specific features like ILIKE and numbered placeholders ($1, $2, etc.).
type PostQueryBuilder struct{}

// NewPostQueryBuilder creates a new query builder instance.
func NewPostQueryBuilder() *PostQueryBuilder {
	return &PostQueryBuilder{}
}

// BuildWhereClause builds WHERE clause and arguments for post search.
// It supports multi-keyword AND logic and optional filters (campaign_id,
// channel, status, scheduled window).
// Returns empty string if no conditions are provided.
// PostgreSQL-specific: Uses ILIKE for case-insensitive search and $N placeholders.
func (qb *PostQueryBuilder) BuildWhereClause(keywords []string, filters repository.PostSearchFilters, tableAlias string) (clause string, args []interface{}) {
	var conditions []string
	paramIndex := 1

	col := func(name string) string {
		if tableAlias != "" {
			return tableAlias + "." + name
		}
		return name
	}

	// Add keyword conditions (multi-keyword AND logic)
	// Each keyword searches in both headline and body using ILIKE (case-insensitive)
	for _, keyword := range keywords {
		// Escape special characters for ILIKE
		escapedKeyword := search.EscapeILIKE(keyword)

		conditions = append(conditions, fmt.Sprintf("(%s ILIKE $%d OR %s ILIKE $%d)",
			col("headline"), paramIndex, col("body"), paramIndex))
		args = append(args, escapedKeyword)
		paramIndex++
	}

	// Add campaign ID filter
	if filters.CampaignID != nil {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", col("campaign_id"), paramIndex))
		args = append(args, *filters.CampaignID)
		paramIndex++
	}

	// Add channel filter
	if filters.Channel != nil {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", col("channel"), paramIndex))
		args = append(args, *filters.Channel)
		paramIndex++
	}

	// Add status filter
	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", col("status"), paramIndex))
		args = append(args, string(*filters.Status))
		paramIndex++
	}

	// Add scheduled window filters
	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("%s >= $%d", col("scheduled_at"), paramIndex))
		args = append(args, *filters.From)
		paramIndex++
	}
	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("%s <= $%d", col("scheduled_at"), paramIndex))
		args = append(args, *filters.To)
	}

	// Return empty if no conditions
	if len(conditions) == 0 {
		return "", args
	}

	// Join all conditions with AND
	return "WHERE " + strings.Join(conditions, " AND "), args
}
