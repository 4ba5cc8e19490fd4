// Package export drains the point buffer in bounded batches, converts
// them to the sink's representation, and performs best-effort delivery
// with bounded retry. Delivery is synchronous from the walker's
// perspective: a flush blocks tick progression until every drained
// chunk is accepted or retry-exhausted, which is what bounds memory.
package export

import (
	"context"
	"time"

	"github.com/yozlet/event-sender/internal/domain"
	"github.com/yozlet/event-sender/internal/ports"
)

// Stats accumulates delivery accounting across a run. Partial success
// is reported, never treated as an error.
type Stats struct {
	BatchesDelivered int
	BatchesFailed    int
	SamplesDelivered int
}

// Exporter ships buffered samples to a sink.
type Exporter struct {
	buf  ports.SampleBuffer
	sink ports.Sink
	pol  ports.Policy
	obs  ports.Observability

	// pending holds a batch that was drained but whose delivery was
	// interrupted by context cancellation. The next Flush delivers it
	// first, so a cancelled run's final flush does not lose it.
	pending []*domain.MetricSample

	stats Stats
}

func New(buf ports.SampleBuffer, sink ports.Sink, pol ports.Policy, obs ports.Observability) *Exporter {
	return &Exporter{buf: buf, sink: sink, pol: pol, obs: obs}
}

// MaybeFlush forces an out-of-schedule flush once the buffer reaches
// the soft cap. Called after every append; the buffer never holds more
// than SoftCap samples at any point a flush could observe, which is
// the memory-safety bound for arbitrarily long walks.
func (e *Exporter) MaybeFlush(ctx context.Context) error {
	if e.buf.Len() < e.pol.SoftCap {
		return nil
	}
	return e.Flush(ctx)
}

// Flush drains the buffer to empty in chunks of at most BatchSize and
// delivers each chunk as one batch. Batches are delivered in generation
// order; only the final batch of a flush may be smaller than BatchSize.
func (e *Exporter) Flush(ctx context.Context) error {
	if batch := e.pending; batch != nil {
		e.pending = nil
		if err := e.deliver(ctx, batch); err != nil {
			return err
		}
	}
	for {
		batch := e.buf.Drain(e.pol.BatchSize)
		if len(batch) == 0 {
			return nil
		}
		if err := e.deliver(ctx, batch); err != nil {
			// Context gone; anything still buffered is the caller's
			// final-flush problem.
			return err
		}
	}
}

// deliver attempts one batch with bounded exponential backoff. A
// retry-exhausted or permanently rejected batch is counted as failed
// and dropped; only context cancellation surfaces as an error.
func (e *Exporter) deliver(ctx context.Context, batch []*domain.MetricSample) error {
	backoff := e.pol.InitialBackoff

	for attempt := 1; ; attempt++ {
		start := time.Now()
		err := e.sink.WriteBatch(ctx, batch)
		if err == nil {
			e.stats.BatchesDelivered++
			e.stats.SamplesDelivered += len(batch)
			e.obs.IncCounter("eventsender_batches_delivered_total", 1)
			e.obs.ObserveLatency("eventsender_export_latency_seconds", time.Since(start).Seconds())
			return nil
		}

		if !IsTransient(err) {
			e.dropBatch("batch_rejected", err, batch)
			return nil
		}
		if attempt >= e.pol.MaxAttempts {
			e.dropBatch("batch_retries_exhausted", err, batch)
			return nil
		}

		e.obs.LogError("batch_delivery_retry", err,
			ports.Field{Key: "attempt", Value: attempt},
			ports.Field{Key: "backoff", Value: backoff.String()},
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			// Keep the drained batch for the next Flush rather than
			// letting cancellation silently discard it.
			e.pending = batch
			return ctx.Err()
		}
		if backoff *= 2; backoff > e.pol.MaxBackoff {
			backoff = e.pol.MaxBackoff
		}
	}
}

func (e *Exporter) dropBatch(msg string, err error, batch []*domain.MetricSample) {
	e.stats.BatchesFailed++
	e.obs.IncCounter("eventsender_batches_failed_total", 1)
	e.obs.LogError(msg, err, ports.Field{Key: "samples", Value: len(batch)})
}

// Stats returns the delivery accounting so far.
func (e *Exporter) Stats() Stats { return e.stats }
