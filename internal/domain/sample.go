package domain

import "time"

// MetricKind determines downstream aggregation semantics at the sink.
// Generators always emit raw per-tick values regardless of kind.
type MetricKind string

const (
	KindCounter   MetricKind = "counter"
	KindHistogram MetricKind = "histogram"
	KindGauge     MetricKind = "gauge"
)

// Dimensions selects the categorical labels attached to one sample.
// Fields not meaningful for a metric family are left empty.
type Dimensions struct {
	Service     string `json:"service,omitempty"`
	Endpoint    string `json:"endpoint,omitempty"`
	Method      string `json:"method,omitempty"`
	Region      string `json:"region,omitempty"`
	StatusClass string `json:"status_class,omitempty"`
	StatusCode  int    `json:"status_code,omitempty"`
	QueryType   string `json:"query_type,omitempty"`
	Table       string `json:"table,omitempty"`
	ClientClass string `json:"client_class,omitempty"`
}

// MetricSample is the canonical unit of synthetic telemetry. It is
// immutable once created; Timestamp is the simulated instant, never the
// wall-clock generation time.
type MetricSample struct {
	Name       string     `json:"name"`
	Kind       MetricKind `json:"kind"`
	Value      float64    `json:"value"`
	Timestamp  time.Time  `json:"ts"`
	Dimensions Dimensions `json:"dimensions"`
}
