package eventsender

import (
	"math/rand"

	base "github.com/yozlet/event-sender/pkg/eventsender"
)

// Re-exported errors for convenience.
var (
	ErrPublisherClosed   = base.ErrPublisherClosed
	ErrChannelSinkClosed = base.ErrChannelSinkClosed
)

// Type aliases so consumers can import github.com/yozlet/event-sender directly.
type (
	Config          = base.Config
	Policy          = base.Policy
	RunConfig       = base.RunConfig
	SinkConfig      = base.SinkConfig
	HoneycombConfig = base.HoneycombConfig
	TimescaleConfig = base.TimescaleConfig
	MetricsConfig   = base.MetricsConfig
	Flow            = base.Flow
	FlowOption      = base.FlowOption
	StreamInOption  = base.StreamInOption
	StreamOutOption = base.StreamOutOption
	Runtime         = base.Runtime
	RuntimeOption   = base.RuntimeOption
	Report          = base.Report
	MetricSample    = base.MetricSample
	Dimensions      = base.Dimensions
	MetricKind      = base.MetricKind
	SampleBatchSink = base.SampleBatchSink
	Generator       = base.Generator
	Sink            = base.Sink
	SampleBuffer    = base.SampleBuffer
	Observability   = base.Observability
	Field           = base.Field
	Catalog         = base.Catalog
	Service         = base.Service
	Endpoint        = base.Endpoint
	Publisher       = base.Publisher
	PublisherConfig = base.PublisherConfig
)

// Metric kinds.
const (
	KindCounter   = base.KindCounter
	KindHistogram = base.KindHistogram
	KindGauge     = base.KindGauge
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func DefaultConfig() *Config {
	return base.DefaultConfig()
}

func DefaultCatalog() *Catalog {
	return base.DefaultCatalog()
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...RuntimeOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

func StreamInCatalog(cat *Catalog) StreamInOption {
	return base.StreamInCatalog(cat)
}

func StreamInGenerators(gens ...Generator) StreamInOption {
	return base.StreamInGenerators(gens...)
}

func StreamInObservability(obs Observability) StreamInOption {
	return base.StreamInObservability(obs)
}

func StreamOutSink(s Sink) StreamOutOption {
	return base.StreamOutSink(s)
}

func StreamOutObservability(obs Observability) StreamOutOption {
	return base.StreamOutObservability(obs)
}

func StreamOutCallback(name string, fn SampleBatchSink) StreamOutOption {
	return base.StreamOutCallback(name, fn)
}

// Runtime and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithCatalog(cat *Catalog) RuntimeOption {
	return base.WithCatalog(cat)
}

func WithGenerators(gens ...Generator) RuntimeOption {
	return base.WithGenerators(gens...)
}

func WithSink(s Sink) RuntimeOption {
	return base.WithSink(s)
}

func WithBuffer(buf SampleBuffer) RuntimeOption {
	return base.WithBuffer(buf)
}

func WithRand(rng *rand.Rand) RuntimeOption {
	return base.WithRand(rng)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

// Sink adapters.
func NewCallbackSink(name string, fn SampleBatchSink) Sink {
	return base.NewCallbackSink(name, fn)
}

func NewChannelSink(name string, bufferSize int) (Sink, <-chan []*MetricSample, func()) {
	return base.NewChannelSink(name, bufferSize)
}

// Buffered publisher for external producers.
func NewPublisher(cfg *PublisherConfig, snk Sink, opts ...RuntimeOption) (*Publisher, error) {
	return base.NewPublisher(cfg, snk, opts...)
}
