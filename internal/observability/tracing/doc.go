// Package tracing provides OpenTelemetry tracing integration.
//
// The HTTP middleware creates a server span per request, extracting any
// incoming W3C trace context so spans join the caller's trace.
//
// Example usage:
//
//	import "campaign-relay/internal/observability/tracing"
//
//	mux := http.NewServeMux()
//	handler := tracing.Middleware(mux)
//
//	func processRequest(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "process-request")
//	    defer span.End()
//	    // ... process request ...
//	}
package tracing
