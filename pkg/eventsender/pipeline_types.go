package eventsender

import (
	"github.com/yozlet/event-sender/internal/app/pipeline"
	"github.com/yozlet/event-sender/internal/catalog"
	"github.com/yozlet/event-sender/internal/domain"
	"github.com/yozlet/event-sender/internal/ports"
)

// MetricSample is the data structure that flows through the
// generate→buffer→export pipeline. It mirrors internal/domain so custom
// generators and sinks can reference it.
type MetricSample = domain.MetricSample

// Dimensions carries the labels attached to a sample.
type Dimensions = domain.Dimensions

// MetricKind distinguishes counters, histograms, and gauges.
type MetricKind = domain.MetricKind

const (
	KindCounter   = domain.KindCounter
	KindHistogram = domain.KindHistogram
	KindGauge     = domain.KindGauge
)

// Generator produces samples for one metric family each tick.
type Generator = ports.Generator

// SampleBuffer is the in-memory staging area between generation and export.
type SampleBuffer = ports.SampleBuffer

// Sink consumes batches of samples and delivers them downstream.
type Sink = ports.Sink

// Observability emits logs and metrics about the run.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// Report summarizes a finished run.
type Report = pipeline.Report

// Catalog describes the simulated application: services, endpoints,
// regions, and their weights.
type Catalog = catalog.Catalog

// Service is one simulated service in the catalog.
type Service = catalog.Service

// Endpoint is one HTTP route of a simulated service.
type Endpoint = catalog.Endpoint

// DefaultCatalog returns the built-in five-service web application.
func DefaultCatalog() *Catalog {
	return catalog.Default()
}
