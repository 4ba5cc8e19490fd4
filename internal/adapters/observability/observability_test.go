package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func TestCountersAndGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(zap.NewNop(), reg)

	obs.IncCounter("eventsender_batches_delivered_total", 1)
	obs.IncCounter("eventsender_batches_delivered_total", 2)
	obs.SetGauge("eventsender_buffer_length", 42)

	if got := testutil.ToFloat64(obs.counters["eventsender_batches_delivered_total"]); got != 3 {
		t.Fatalf("expected counter 3, got %v", got)
	}
	if got := testutil.ToFloat64(obs.gauges["eventsender_buffer_length"]); got != 42 {
		t.Fatalf("expected gauge 42, got %v", got)
	}
}

func TestUnknownNamesAreIgnored(t *testing.T) {
	obs := NewNop()
	// Must not panic.
	obs.IncCounter("no_such_counter", 1)
	obs.SetGauge("no_such_gauge", 1)
	obs.ObserveLatency("no_such_histogram", 0.1)
}
