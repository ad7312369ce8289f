package metrics

import (
	"time"
)

// RecordPostDrafted records the result of a post drafting attempt.
// Result should be one of "created", "duplicate", or "error".
func RecordPostDrafted(channel, result string) {
	PostsDraftedTotal.WithLabelValues(channel, result).Inc()
}

// RecordSeedCuration records the duration of one inspiration-feed curation pass.
func RecordSeedCuration(sourceName string, duration time.Duration) {
	SeedCurationDuration.WithLabelValues(sourceName).Observe(duration.Seconds())
}

// RecordSeedCurationError records an error while curating an inspiration feed.
func RecordSeedCurationError(sourceName, errorType string) {
	SeedCurationErrors.WithLabelValues(sourceName, errorType).Inc()
}

// UpdateCampaignsTotal updates the total count of campaigns in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateCampaignsTotal(count int) {
	CampaignsTotal.Set(float64(count))
}

// UpdatePostsTotal updates the total count of posts in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdatePostsTotal(count int) {
	PostsTotal.Set(float64(count))
}

// RecordLinkPreviewSuccess records a successful link metadata lookup.
func RecordLinkPreviewSuccess(duration time.Duration) {
	LinkPreviewAttemptsTotal.WithLabelValues("success").Inc()
	LinkPreviewDuration.Observe(duration.Seconds())
}

// RecordLinkPreviewFailed records a failed link metadata lookup.
func RecordLinkPreviewFailed(duration time.Duration) {
	LinkPreviewAttemptsTotal.WithLabelValues("failure").Inc()
	LinkPreviewDuration.Observe(duration.Seconds())
}

// RecordLinkPreviewSkipped records a lookup skipped because the post carries
// no link.
func RecordLinkPreviewSkipped() {
	LinkPreviewAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_posts", "insert_post").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
