// Package observability backs the Observability port with zap logs and
// Prometheus metrics about the run itself. Nothing in the generation or
// delivery path reads what is recorded here.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/yozlet/event-sender/internal/ports"
)

type Obs struct {
	log      *zap.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// New registers the run metrics on the given registry and logs through
// the given zap logger. Pass prometheus.NewRegistry() in tests to avoid
// default-registry collisions.
func New(log *zap.Logger, reg prometheus.Registerer) *Obs {
	if log == nil {
		log = zap.NewNop()
	}

	generated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eventsender_samples_generated_total",
		Help: "Samples produced by all generators.",
	})
	delivered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eventsender_batches_delivered_total",
		Help: "Batches accepted by the sink.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eventsender_batches_failed_total",
		Help: "Batches dropped after permanent failure or retry exhaustion.",
	})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eventsender_events_rejected_total",
		Help: "Individual events rejected by the sink inside accepted batches.",
	})
	bufLen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "eventsender_buffer_length",
		Help: "Samples currently buffered awaiting export.",
	})
	ticks := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "eventsender_ticks_completed",
		Help: "Simulation ticks completed in the current walk.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "eventsender_export_latency_seconds",
		Help:    "Wall-clock latency of one batch delivery attempt.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})

	if reg != nil {
		reg.MustRegister(generated, delivered, failed, rejected, bufLen, ticks, latency)
	}

	return &Obs{
		log: log,
		counters: map[string]prometheus.Counter{
			"eventsender_samples_generated_total": generated,
			"eventsender_batches_delivered_total": delivered,
			"eventsender_batches_failed_total":    failed,
			"eventsender_events_rejected_total":   rejected,
		},
		gauges: map[string]prometheus.Gauge{
			"eventsender_buffer_length":   bufLen,
			"eventsender_ticks_completed": ticks,
		},
		histos: map[string]prometheus.Observer{
			"eventsender_export_latency_seconds": latency,
		},
	}
}

// NewNop returns an adapter that registers nothing and logs nowhere.
func NewNop() *Obs {
	return New(zap.NewNop(), nil)
}

func (o *Obs) LogInfo(msg string, fields ...ports.Field) {
	o.log.Info(msg, zapFields(fields)...)
}

func (o *Obs) LogError(msg string, err error, fields ...ports.Field) {
	o.log.Error(msg, append(zapFields(fields), zap.Error(err))...)
}

func (o *Obs) LogCritical(msg string, err error, fields ...ports.Field) {
	o.log.Error(msg, append(zapFields(fields), zap.Error(err), zap.Bool("critical", true))...)
}

func (o *Obs) IncCounter(name string, v float64) {
	if c, ok := o.counters[name]; ok {
		c.Add(v)
	}
}

func (o *Obs) SetGauge(name string, v float64) {
	if g, ok := o.gauges[name]; ok {
		g.Set(v)
	}
}

func (o *Obs) ObserveLatency(name string, seconds float64) {
	if h, ok := o.histos[name]; ok {
		h.Observe(seconds)
	}
}

func zapFields(fields []ports.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

var _ ports.Observability = (*Obs)(nil)
