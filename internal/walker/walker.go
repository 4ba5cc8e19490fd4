// Package walker drives the simulation along its time axis. A single
// goroutine owns the walk: each tick it computes the traffic intensity,
// invokes every generator in a fixed order, appends their samples to
// the buffer, and hands flush decisions to the exporter.
package walker

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/yozlet/event-sender/internal/ports"
	"github.com/yozlet/event-sender/internal/traffic"
)

// Flusher is the exporter-facing half of the walk. MaybeFlush is called
// after every appended sample and must enforce the buffer soft cap;
// Flush is the scheduled end-of-cadence drain.
type Flusher interface {
	Flush(ctx context.Context) error
	MaybeFlush(ctx context.Context) error
}

// InvariantError reports a violated generation invariant. It indicates
// a logic bug rather than an environmental condition and always aborts
// the walk.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "generation invariant violated: " + e.Msg
}

// Stats summarizes one completed (or interrupted) walk.
type Stats struct {
	Ticks   int
	Samples int
}

// Walker advances simulated time at a fixed step.
type Walker struct {
	step       time.Duration
	progressAt int

	generators []ports.Generator
	buf        ports.SampleBuffer
	flusher    Flusher
	obs        ports.Observability
	rng        *rand.Rand

	started time.Time
	lastTS  time.Time
	hasLast bool
}

func New(step time.Duration, progressEveryTicks int, gens []ports.Generator, buf ports.SampleBuffer, flusher Flusher, obs ports.Observability, rng *rand.Rand) *Walker {
	if progressEveryTicks <= 0 {
		progressEveryTicks = 100
	}
	return &Walker{
		step:       step,
		progressAt: progressEveryTicks,
		generators: gens,
		buf:        buf,
		flusher:    flusher,
		obs:        obs,
		rng:        rng,
	}
}

// WalkRange walks the half-open interval [start, end): one day at a
// one-minute step is exactly 1440 ticks. Cancellation stops the walk
// between ticks and returns the context error; samples already buffered
// stay buffered for the caller's final flush.
func (w *Walker) WalkRange(ctx context.Context, start, end time.Time) (Stats, error) {
	if !end.After(start) {
		return Stats{}, fmt.Errorf("walker: end %s must be after start %s", end, start)
	}

	w.started = time.Now()
	var stats Stats
	for ts := start.UTC(); ts.Before(end); ts = ts.Add(w.step) {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := w.tick(ctx, ts, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// WalkRealtime ticks at the configured step against the wall clock,
// sleeping between ticks. A zero or negative runFor means walk until
// the context is cancelled. The inter-tick wait is the walk's only
// suspension point and honors cancellation.
func (w *Walker) WalkRealtime(ctx context.Context, runFor time.Duration) (Stats, error) {
	w.started = time.Now()
	var deadline time.Time
	if runFor > 0 {
		deadline = w.started.Add(runFor)
	}

	var stats Stats
	for {
		if err := w.tick(ctx, time.Now().UTC(), &stats); err != nil {
			return stats, err
		}
		if !deadline.IsZero() && !time.Now().Add(w.step).Before(deadline) {
			return stats, nil
		}
		select {
		case <-time.After(w.step):
		case <-ctx.Done():
			return stats, ctx.Err()
		}
	}
}

func (w *Walker) tick(ctx context.Context, ts time.Time, stats *Stats) error {
	if w.hasLast && !ts.After(w.lastTS) {
		return &InvariantError{Msg: fmt.Sprintf("timestamp %s not after %s", ts, w.lastTS)}
	}
	w.lastTS = ts
	w.hasLast = true

	intensity := traffic.Intensity(ts)
	if intensity <= 0 || intensity > 1 {
		return &InvariantError{Msg: fmt.Sprintf("intensity %v outside (0, 1]", intensity)}
	}

	var emitted int
	for _, gen := range w.generators {
		for _, s := range gen.Emit(ts, intensity, w.rng) {
			w.buf.Append(s)
			emitted++
			// Memory bound: the exporter force-flushes when the buffer
			// reaches its soft cap, independent of the scheduled cadence
			// below. Checked per append so a heavy tick cannot push the
			// buffer past the cap.
			if err := w.flusher.MaybeFlush(ctx); err != nil {
				w.obs.LogError("flush_failed", err)
			}
		}
	}
	stats.Ticks++
	stats.Samples += emitted
	w.obs.IncCounter("eventsender_samples_generated_total", float64(emitted))

	if stats.Ticks%w.progressAt == 0 {
		if err := w.flusher.Flush(ctx); err != nil {
			w.obs.LogError("flush_failed", err)
		}
		w.reportProgress(stats)
	}
	return nil
}

// reportProgress is purely an observability side effect; it must not
// block or alter generation.
func (w *Walker) reportProgress(stats *Stats) {
	w.obs.SetGauge("eventsender_ticks_completed", float64(stats.Ticks))
	w.obs.SetGauge("eventsender_buffer_length", float64(w.buf.Len()))
	w.obs.LogInfo("progress",
		ports.Field{Key: "ticks", Value: stats.Ticks},
		ports.Field{Key: "elapsed", Value: time.Since(w.started).Round(time.Millisecond).String()},
		ports.Field{Key: "buffered", Value: w.buf.Len()},
	)
}
