package eventsender

import (
	"github.com/yozlet/event-sender/internal/app/config"
	"github.com/yozlet/event-sender/internal/ports"
)

// Config re-exports the root configuration struct so downstream projects
// can construct or modify it programmatically.
type Config = config.Config

type (
	// Policy bounds batching, flush cadence, and delivery retries.
	Policy = ports.Policy
	// RunConfig selects the walk mode and generation parameters.
	RunConfig = config.RunConfig
	// SinkConfig selects and configures the delivery backend.
	SinkConfig = config.SinkConfig
	// HoneycombConfig configures the events API sink.
	HoneycombConfig = config.HoneycombConfig
	// TimescaleConfig configures the archive sink.
	TimescaleConfig = config.TimescaleConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns a configuration with every default applied.
// Sink credentials still have to be filled in before it validates.
func DefaultConfig() *Config {
	return config.Default()
}
