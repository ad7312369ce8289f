package slo

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestUpdateGauges(t *testing.T) {
	UpdateAvailability(0.9995)
	UpdateLatencyP95(0.150)
	UpdateLatencyP99(0.420)
	UpdateErrorRate(0.0005)

	if got := testutil.ToFloat64(SLOAvailability); got != 0.9995 {
		t.Errorf("availability = %v, want 0.9995", got)
	}
	if got := testutil.ToFloat64(SLOLatencyP95); got != 0.150 {
		t.Errorf("p95 = %v, want 0.150", got)
	}
	if got := testutil.ToFloat64(SLOLatencyP99); got != 0.420 {
		t.Errorf("p99 = %v, want 0.420", got)
	}
	if got := testutil.ToFloat64(SLOErrorRate); got != 0.0005 {
		t.Errorf("error rate = %v, want 0.0005", got)
	}
}

func TestUpdatePublishSuccess(t *testing.T) {
	tests := []struct {
		name      string
		published int64
		failed    int64
		want      float64
	}{
		{"all delivered", 100, 0, 1.0},
		{"one percent failed", 99, 1, 0.99},
		{"half failed", 5, 5, 0.5},
		{"no terminal posts defaults to healthy", 0, 0, 1.0},
		{"all failed", 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			UpdatePublishSuccess(tt.published, tt.failed)
			if got := testutil.ToFloat64(SLOPublishSuccess); got != tt.want {
				t.Errorf("publish success = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTargetsAreInternallyConsistent(t *testing.T) {
	// p95 must be tighter than p99, and the availability target must leave
	// room for the error rate budget.
	if LatencyP95SLO >= LatencyP99SLO {
		t.Errorf("p95 target %v not below p99 target %v", LatencyP95SLO, LatencyP99SLO)
	}
	if AvailabilitySLO/100+ErrorRateSLO > 1 {
		t.Errorf("availability %v%% plus error budget %v exceeds 1", AvailabilitySLO, ErrorRateSLO)
	}
	if PublishSuccessSLO <= 0 || PublishSuccessSLO > 1 {
		t.Errorf("publish success target %v out of range", PublishSuccessSLO)
	}
}
