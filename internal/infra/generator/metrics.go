package generator

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CopyMetricsRecorder defines the interface for recording copy-generation metrics.
// This interface abstracts the metrics recording implementation, enabling:
//   - Mocking in unit tests (inject mock recorder instead of Prometheus)
//   - Swapping metrics systems (DataDog, New Relic, OpenTelemetry, etc.)
//   - Reusability across different AI providers (Claude, OpenAI, Gemini)
type CopyMetricsRecorder interface {
	// RecordLength records the length of a generated post body in characters.
	RecordLength(length int)

	// RecordLimitExceeded increments the counter when a body exceeds the configured character limit.
	RecordLimitExceeded()

	// RecordCompliance records whether a body is within the configured character limit.
	// This is used to calculate the compliance ratio gauge.
	RecordCompliance(withinLimit bool)

	// RecordDuration records the time taken to generate one draft.
	RecordDuration(duration time.Duration)
}

// PrometheusCopyMetrics implements CopyMetricsRecorder using Prometheus metrics.
// This is the production implementation that records metrics to Prometheus.
type PrometheusCopyMetrics struct {
	lengthHistogram   prometheus.Histogram
	exceededCounter   prometheus.Counter
	complianceGauge   prometheus.Gauge
	durationHistogram prometheus.Histogram
}

var (
	prometheusMetricsInstance *PrometheusCopyMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreateHistogram gets an existing histogram or creates a new one if it doesn't exist
func getOrCreateHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Histogram)
		}
		// If it's not an AlreadyRegisteredError, use promauto which handles this gracefully
		return promauto.NewHistogram(opts)
	}
	return h
}

// getOrCreateCounter gets an existing counter or creates a new one if it doesn't exist
func getOrCreateCounter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Counter)
		}
		return promauto.NewCounter(opts)
	}
	return c
}

// getOrCreateGauge gets an existing gauge or creates a new one if it doesn't exist
func getOrCreateGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	g := prometheus.NewGauge(opts)
	if err := prometheus.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Gauge)
		}
		return promauto.NewGauge(opts)
	}
	return g
}

// NewPrometheusCopyMetrics creates a new Prometheus-based metrics recorder.
// It initializes and registers all required Prometheus metrics.
// Uses singleton pattern to avoid duplicate metric registration in tests.
func NewPrometheusCopyMetrics() *PrometheusCopyMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusCopyMetrics{
			lengthHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "post_copy_length_characters",
				Help:    "Distribution of generated post body lengths in characters (Unicode runes)",
				Buckets: []float64{100, 200, 400, 600, 800, 1200, 2000, 5000},
			}),
			exceededCounter: getOrCreateCounter(prometheus.CounterOpts{
				Name: "post_copy_limit_exceeded_total",
				Help: "Total number of generated bodies exceeding the configured character limit",
			}),
			complianceGauge: getOrCreateGauge(prometheus.GaugeOpts{
				Name: "post_copy_limit_compliance_ratio",
				Help: "Ratio of generated bodies within character limit (0.0-1.0, target: ≥0.95)",
			}),
			durationHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "post_copy_generation_duration_seconds",
				Help:    "Time taken to generate one draft via AI API",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			}),
		}
	})
	return prometheusMetricsInstance
}

// RecordLength implements CopyMetricsRecorder.RecordLength
func (p *PrometheusCopyMetrics) RecordLength(length int) {
	p.lengthHistogram.Observe(float64(length))
}

// RecordLimitExceeded implements CopyMetricsRecorder.RecordLimitExceeded
func (p *PrometheusCopyMetrics) RecordLimitExceeded() {
	p.exceededCounter.Inc()
}

// RecordCompliance implements CopyMetricsRecorder.RecordCompliance
func (p *PrometheusCopyMetrics) RecordCompliance(withinLimit bool) {
	if withinLimit {
		p.complianceGauge.Set(1.0)
	} else {
		p.complianceGauge.Set(0.0)
	}
}

// RecordDuration implements CopyMetricsRecorder.RecordDuration
func (p *PrometheusCopyMetrics) RecordDuration(duration time.Duration) {
	p.durationHistogram.Observe(duration.Seconds())
}

// NoOpMetrics is a CopyMetricsRecorder that discards all measurements.
// Useful for tests and for the NoOp generator.
type NoOpMetrics struct{}

// RecordLength implements CopyMetricsRecorder.RecordLength
func (NoOpMetrics) RecordLength(int) {}

// RecordLimitExceeded implements CopyMetricsRecorder.RecordLimitExceeded
func (NoOpMetrics) RecordLimitExceeded() {}

// RecordCompliance implements CopyMetricsRecorder.RecordCompliance
func (NoOpMetrics) RecordCompliance(bool) {}

// RecordDuration implements CopyMetricsRecorder.RecordDuration
func (NoOpMetrics) RecordDuration(time.Duration) {}
