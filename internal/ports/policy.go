package ports

import "time"

// Policy bounds the memory and delivery behaviour of a run.
type Policy struct {
	// BatchSize is the maximum samples per delivered batch.
	BatchSize int `yaml:"batch_size"`
	// FlushEveryTicks is the scheduled flush (and progress) cadence.
	FlushEveryTicks int `yaml:"flush_every_ticks"`
	// SoftCap forces an out-of-schedule flush whenever the buffer would
	// exceed it. This is the memory-safety bound for arbitrarily long walks.
	SoftCap int `yaml:"soft_cap"`

	// Delivery retry bounds for transient failures.
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}
