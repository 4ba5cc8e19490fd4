package eventsender

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yozlet/event-sender/internal/adapters/observability"
	"github.com/yozlet/event-sender/internal/buffer"
	"github.com/yozlet/event-sender/internal/export"
	"github.com/yozlet/event-sender/internal/ports"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("eventsender: publisher closed")

// SampleBatchSink is invoked with ordered batches drained from the buffer.
type SampleBatchSink func([]*MetricSample) error

// PublisherConfig configures the buffered publisher.
type PublisherConfig struct {
	// Policy bounds batch size, the soft cap, and delivery retries.
	Policy Policy
	// FlushInterval is the scheduled drain cadence of the background loop.
	FlushInterval time.Duration
}

func (c *PublisherConfig) applyDefaults() {
	if c.Policy.BatchSize == 0 {
		c.Policy.BatchSize = 100
	}
	if c.Policy.SoftCap == 0 {
		c.Policy.SoftCap = 10_000
	}
	if c.Policy.MaxAttempts == 0 {
		c.Policy.MaxAttempts = 5
	}
	if c.Policy.InitialBackoff == 0 {
		c.Policy.InitialBackoff = 500 * time.Millisecond
	}
	if c.Policy.MaxBackoff == 0 {
		c.Policy.MaxBackoff = 30 * time.Second
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = time.Second
	}
}

func (c *PublisherConfig) validate() error {
	if c.Policy.BatchSize <= 0 || c.Policy.BatchSize > 100 {
		return fmt.Errorf("policy.batch_size must be in 1..100")
	}
	if c.Policy.SoftCap < c.Policy.BatchSize {
		return fmt.Errorf("policy.soft_cap must be >= policy.batch_size")
	}
	return nil
}

// Publisher lets external producers push their own samples through the
// buffer → batch → sink machinery without running a walker. Samples are
// drained on a fixed interval, or immediately once the buffer passes
// its soft cap.
type Publisher struct {
	buf ports.SampleBuffer
	exp *export.Exporter
	obs ports.Observability

	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewPublisher wires a buffer and exporter around the given sink and
// starts the background flush loop.
func NewPublisher(cfg *PublisherConfig, snk Sink, opts ...RuntimeOption) (*Publisher, error) {
	if cfg == nil {
		cfg = &PublisherConfig{}
	}
	if snk == nil {
		return nil, fmt.Errorf("sink is required")
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}
	obs := overrides.observability
	if obs == nil {
		obs = observability.NewNop()
	}

	buf := buffer.NewMemBuffer(cfg.Policy.SoftCap)
	pub := &Publisher{
		buf:      buf,
		exp:      export.New(buf, snk, cfg.Policy, obs),
		obs:      obs,
		interval: cfg.FlushInterval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	go pub.flushLoop()
	return pub, nil
}

// Publish buffers one sample. It never blocks on delivery; a buffer
// past its soft cap is drained by the background loop.
func (p *Publisher) Publish(s *MetricSample) error {
	select {
	case <-p.stopCh:
		return ErrPublisherClosed
	default:
	}
	if s == nil {
		return fmt.Errorf("sample is nil")
	}
	p.buf.Append(s)
	return nil
}

// Len reports the number of currently buffered samples.
func (p *Publisher) Len() int { return p.buf.Len() }

// Close stops the flush loop and drains whatever is still buffered,
// respecting the provided context.
func (p *Publisher) Close(ctx context.Context) error {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})

	select {
	case <-p.doneCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	return p.exp.Flush(ctx)
}

func (p *Publisher) flushLoop() {
	defer close(p.doneCh)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), p.interval)
			if err := p.exp.Flush(ctx); err != nil {
				p.obs.LogError("publisher_flush_failed", err)
			}
			cancel()
		}
	}
}
