// Package resilience provides reliability patterns for the application's hard
// dependencies: the database, the LLM providers that write post copy, and the
// feed and page hosts the curator pulls inspiration from.
//
// The package supports:
//   - Circuit breakers for external API calls (Claude, OpenAI, feeds, pages)
//   - Retry logic with exponential backoff and jitter
//
// Outbound delivery to publishing platforms is not guarded here; that traffic
// goes through pkg/resilience, which owns per-host rate limit state and the
// per-service breaker registry.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.ClaudeAPIConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callProvider()
//	})
//
//	retryConfig := retry.AIAPIConfig()
//	err := retry.WithBackoff(ctx, retryConfig, func() error {
//	    return performOperation()
//	})
package resilience
