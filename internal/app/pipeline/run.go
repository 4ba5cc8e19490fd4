// Package pipeline assembles the configured generators, buffer,
// exporter, and walker into a single run.
package pipeline

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/yozlet/event-sender/internal/app/config"
	"github.com/yozlet/event-sender/internal/buffer"
	"github.com/yozlet/event-sender/internal/catalog"
	"github.com/yozlet/event-sender/internal/export"
	"github.com/yozlet/event-sender/internal/generate"
	"github.com/yozlet/event-sender/internal/ports"
	"github.com/yozlet/event-sender/internal/walker"
)

// shutdownFlushTimeout bounds the final drain after the walk stops,
// including stops caused by cancellation.
const shutdownFlushTimeout = 30 * time.Second

// Report summarizes a finished run.
type Report struct {
	Ticks            int
	SamplesGenerated int
	BatchesDelivered int
	BatchesFailed    int
	SamplesDelivered int
	EventsRejected   int
}

// rejectionCounter is implemented by sinks that track per-event
// rejections inside accepted batches.
type rejectionCounter interface {
	RejectedEvents() int
}

// Option overrides one assembled dependency of a run.
type Option func(*settings)

type settings struct {
	buf ports.SampleBuffer
	rng *rand.Rand
}

// WithBuffer swaps the in-memory point buffer.
func WithBuffer(buf ports.SampleBuffer) Option {
	return func(s *settings) { s.buf = buf }
}

// WithRand injects the random source, overriding the configured seed.
func WithRand(rng *rand.Rand) Option {
	return func(s *settings) { s.rng = rng }
}

// Generators builds the four sample generators in their fixed
// emission order.
func Generators(cat *catalog.Catalog, run config.RunConfig) []ports.Generator {
	return []ports.Generator{
		generate.NewRequestGenerator(cat, run.RateScale),
		generate.NewDatabaseGenerator(cat, run.RateScale, run.MinFanOut, run.MaxFanOut),
		generate.NewSystemGenerator(cat),
		generate.NewUsersGenerator(cat, float64(run.BaseUsers)),
	}
}

// Run executes one full walk against the given sink and returns its
// report. Cancellation is a clean stop: the walk ends between ticks and
// buffered samples are still flushed. An InvariantError is fatal and is
// returned after the final flush attempt.
func Run(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, snk ports.Sink, obs ports.Observability) (*Report, error) {
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return RunWith(ctx, cfg, Generators(cat, cfg.Run), snk, obs)
}

// RunWith is Run with caller-supplied generators. The walk window comes
// from the configured mode: realtime against the wall clock, otherwise
// the last run.days ending now.
func RunWith(ctx context.Context, cfg *config.Config, gens []ports.Generator, snk ports.Sink, obs ports.Observability, opts ...Option) (*Report, error) {
	return execute(ctx, cfg, gens, snk, obs, opts, func(ctx context.Context, w *walker.Walker) (walker.Stats, error) {
		if cfg.Run.Mode == config.ModeRealtime {
			return w.WalkRealtime(ctx, cfg.Run.Duration)
		}
		end := time.Now().UTC().Truncate(cfg.Run.Step)
		start := end.Add(-time.Duration(cfg.Run.Days) * 24 * time.Hour)
		return w.WalkRange(ctx, start, end)
	})
}

// RunRange walks the explicit half-open interval [start, end) at the
// configured step, ignoring the run mode.
func RunRange(ctx context.Context, cfg *config.Config, gens []ports.Generator, snk ports.Sink, obs ports.Observability, start, end time.Time, opts ...Option) (*Report, error) {
	return execute(ctx, cfg, gens, snk, obs, opts, func(ctx context.Context, w *walker.Walker) (walker.Stats, error) {
		return w.WalkRange(ctx, start, end)
	})
}

func execute(ctx context.Context, cfg *config.Config, gens []ports.Generator, snk ports.Sink, obs ports.Observability, opts []Option, walk func(context.Context, *walker.Walker) (walker.Stats, error)) (*Report, error) {
	var s settings
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	seed := cfg.Run.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(seed))
	}
	if s.buf == nil {
		s.buf = buffer.NewMemBuffer(cfg.Export.SoftCap)
	}

	exp := export.New(s.buf, snk, cfg.Export, obs)
	w := walker.New(cfg.Run.Step, cfg.Export.FlushEveryTicks, gens, s.buf, exp, obs, s.rng)

	obs.LogInfo("run_starting",
		ports.Field{Key: "mode", Value: cfg.Run.Mode},
		ports.Field{Key: "sink", Value: snk.Name()},
		ports.Field{Key: "step", Value: cfg.Run.Step.String()},
		ports.Field{Key: "seed", Value: seed},
	)

	stats, walkErr := walk(ctx, w)

	// The final flush runs on its own context so a cancelled run still
	// drains what it generated.
	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
	defer cancel()
	if err := exp.Flush(flushCtx); err != nil {
		obs.LogError("final_flush_failed", err)
	}

	rep := &Report{
		Ticks:            stats.Ticks,
		SamplesGenerated: stats.Samples,
		BatchesDelivered: exp.Stats().BatchesDelivered,
		BatchesFailed:    exp.Stats().BatchesFailed,
		SamplesDelivered: exp.Stats().SamplesDelivered,
	}
	if rc, ok := snk.(rejectionCounter); ok {
		rep.EventsRejected = rc.RejectedEvents()
	}

	if walkErr != nil && !errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, context.DeadlineExceeded) {
		return rep, walkErr
	}

	obs.LogInfo("run_finished",
		ports.Field{Key: "ticks", Value: rep.Ticks},
		ports.Field{Key: "samples", Value: rep.SamplesGenerated},
		ports.Field{Key: "batches_delivered", Value: rep.BatchesDelivered},
		ports.Field{Key: "batches_failed", Value: rep.BatchesFailed},
	)
	return rep, nil
}
