package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(announcements.WithLabelValues(KindPlatform))
	Announced(KindPlatform)
	if got := testutil.ToFloat64(announcements.WithLabelValues(KindPlatform)); got != before+1 {
		t.Fatalf("announcements: want %v got %v", before+1, got)
	}

	beforeDrop := testutil.ToFloat64(dropped.WithLabelValues("unspecified"))
	Dropped("")
	if got := testutil.ToFloat64(dropped.WithLabelValues("unspecified")); got != beforeDrop+1 {
		t.Fatalf("dropped: want %v got %v", beforeDrop+1, got)
	}
}

func TestActivationLabelsResult(t *testing.T) {
	Activation("metrics_test", true, 5*time.Millisecond)
	Activation("metrics_test", false, time.Millisecond)
	if got := testutil.ToFloat64(activations.WithLabelValues("metrics_test", "ok")); got != 1 {
		t.Fatalf("ok activations: got %v", got)
	}
	if got := testutil.ToFloat64(activations.WithLabelValues("metrics_test", "failed")); got != 1 {
		t.Fatalf("failed activations: got %v", got)
	}
}
