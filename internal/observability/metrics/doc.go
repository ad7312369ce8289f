// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Business metrics (campaigns, posts, seed curation, link previews)
//   - Database query metrics
//   - Application performance metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "campaign-relay/internal/observability/metrics"
//
//	func curateSource(source string) {
//	    start := time.Now()
//	    // ... fetch and parse the feed ...
//
//	    metrics.RecordSeedCuration(source, time.Since(start))
//	}
package metrics
