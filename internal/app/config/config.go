// Package config loads and validates the YAML runtime configuration.
// Every constraint is checked here, before any sample is generated.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yozlet/event-sender/internal/ports"
)

const (
	ModeHistorical = "historical"
	ModeRealtime   = "realtime"

	SinkHoneycomb = "honeycomb"
	SinkTimescale = "timescaledb"

	apiKeyEnv = "HONEYCOMB_API_KEY"
)

type Config struct {
	Run     RunConfig     `yaml:"run"`
	Export  ports.Policy  `yaml:"export"`
	Sink    SinkConfig    `yaml:"sink"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type RunConfig struct {
	Mode      string        `yaml:"mode"`
	Days      int           `yaml:"days"`
	Duration  time.Duration `yaml:"duration"`
	Step      time.Duration `yaml:"step"`
	Seed      int64         `yaml:"seed"`
	RateScale float64       `yaml:"rate_scale"`
	BaseUsers int           `yaml:"base_users"`
	MinFanOut int           `yaml:"min_fan_out"`
	MaxFanOut int           `yaml:"max_fan_out"`
}

type SinkConfig struct {
	Type      string          `yaml:"type"`
	Honeycomb HoneycombConfig `yaml:"honeycomb"`
	Timescale TimescaleConfig `yaml:"timescale"`
}

type HoneycombConfig struct {
	APIURL  string `yaml:"api_url"`
	Dataset string `yaml:"dataset"`
	APIKey  string `yaml:"api_key"`
}

type TimescaleConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Run.Mode == "" {
		c.Run.Mode = ModeHistorical
	}
	if c.Run.Days == 0 {
		c.Run.Days = 1
	}
	if c.Run.Step == 0 {
		c.Run.Step = time.Minute
	}
	if c.Run.RateScale == 0 {
		c.Run.RateScale = 1.0
	}
	if c.Run.BaseUsers == 0 {
		c.Run.BaseUsers = 5000
	}
	if c.Run.MinFanOut == 0 {
		c.Run.MinFanOut = 1
	}
	if c.Run.MaxFanOut == 0 {
		c.Run.MaxFanOut = 3
	}

	if c.Export.BatchSize == 0 {
		c.Export.BatchSize = 100
	}
	if c.Export.FlushEveryTicks == 0 {
		c.Export.FlushEveryTicks = 100
	}
	if c.Export.SoftCap == 0 {
		c.Export.SoftCap = 10_000
	}
	if c.Export.MaxAttempts == 0 {
		c.Export.MaxAttempts = 5
	}
	if c.Export.InitialBackoff == 0 {
		c.Export.InitialBackoff = 500 * time.Millisecond
	}
	if c.Export.MaxBackoff == 0 {
		c.Export.MaxBackoff = 30 * time.Second
	}

	if c.Sink.Type == "" {
		c.Sink.Type = SinkHoneycomb
	}
	if c.Sink.Honeycomb.APIKey == "" {
		c.Sink.Honeycomb.APIKey = os.Getenv(apiKeyEnv)
	}
	if c.Sink.Timescale.Table == "" {
		c.Sink.Timescale.Table = "metric_samples"
	}

	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
}

func (c *Config) Validate() error {
	switch c.Run.Mode {
	case ModeHistorical:
		if c.Run.Days <= 0 {
			return fmt.Errorf("run.days must be positive, got %d", c.Run.Days)
		}
	case ModeRealtime:
		if c.Run.Duration < 0 {
			return fmt.Errorf("run.duration must not be negative, got %s", c.Run.Duration)
		}
	default:
		return fmt.Errorf("run.mode must be %q or %q, got %q", ModeHistorical, ModeRealtime, c.Run.Mode)
	}
	if c.Run.Step <= 0 {
		return fmt.Errorf("run.step must be positive, got %s", c.Run.Step)
	}
	if c.Run.RateScale <= 0 {
		return fmt.Errorf("run.rate_scale must be positive, got %g", c.Run.RateScale)
	}
	if c.Run.BaseUsers <= 0 {
		return fmt.Errorf("run.base_users must be positive, got %d", c.Run.BaseUsers)
	}
	if c.Run.MinFanOut < 1 || c.Run.MaxFanOut < c.Run.MinFanOut {
		return fmt.Errorf("run fan-out bounds invalid: min %d, max %d", c.Run.MinFanOut, c.Run.MaxFanOut)
	}

	if c.Export.BatchSize <= 0 || c.Export.BatchSize > 100 {
		return fmt.Errorf("export.batch_size must be in 1..100, got %d", c.Export.BatchSize)
	}
	if c.Export.FlushEveryTicks <= 0 {
		return fmt.Errorf("export.flush_every_ticks must be positive, got %d", c.Export.FlushEveryTicks)
	}
	if c.Export.SoftCap < c.Export.BatchSize {
		return fmt.Errorf("export.soft_cap %d is below export.batch_size %d", c.Export.SoftCap, c.Export.BatchSize)
	}
	if c.Export.MaxAttempts <= 0 {
		return fmt.Errorf("export.max_attempts must be positive, got %d", c.Export.MaxAttempts)
	}
	if c.Export.InitialBackoff <= 0 || c.Export.MaxBackoff < c.Export.InitialBackoff {
		return fmt.Errorf("export backoff bounds invalid: initial %s, max %s", c.Export.InitialBackoff, c.Export.MaxBackoff)
	}

	switch c.Sink.Type {
	case SinkHoneycomb:
		if c.Sink.Honeycomb.Dataset == "" {
			return fmt.Errorf("sink.honeycomb.dataset is required")
		}
		if c.Sink.Honeycomb.APIKey == "" {
			return fmt.Errorf("sink.honeycomb.api_key is required (or set %s)", apiKeyEnv)
		}
	case SinkTimescale:
		if c.Sink.Timescale.ConnString == "" {
			return fmt.Errorf("sink.timescale.conn_string is required")
		}
	default:
		return fmt.Errorf("sink.type must be %q or %q, got %q", SinkHoneycomb, SinkTimescale, c.Sink.Type)
	}

	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	return nil
}

// Default returns a ready-to-run configuration without reading a file.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}
