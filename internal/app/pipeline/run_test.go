package pipeline

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yozlet/event-sender/internal/adapters/observability"
	"github.com/yozlet/event-sender/internal/app/config"
	"github.com/yozlet/event-sender/internal/buffer"
	"github.com/yozlet/event-sender/internal/catalog"
	"github.com/yozlet/event-sender/internal/domain"
	"github.com/yozlet/event-sender/internal/export"
	"github.com/yozlet/event-sender/internal/ports"
)

type captureSink struct {
	batches [][]*domain.MetricSample
}

func (c *captureSink) Name() string { return "capture" }

func (c *captureSink) WriteBatch(_ context.Context, samples []*domain.MetricSample) error {
	copied := make([]*domain.MetricSample, len(samples))
	copy(copied, samples)
	c.batches = append(c.batches, copied)
	return nil
}

// floodGenerator emits a fixed burst of samples per tick, far more
// than a small soft cap can hold.
type floodGenerator struct {
	perTick int
}

func (g *floodGenerator) Name() string { return "flood" }

func (g *floodGenerator) Emit(ts time.Time, _ float64, _ *rand.Rand) []*domain.MetricSample {
	out := make([]*domain.MetricSample, g.perTick)
	for i := range out {
		out[i] = &domain.MetricSample{
			Name:      "http_requests_total",
			Kind:      domain.KindCounter,
			Value:     1,
			Timestamp: ts,
		}
	}
	return out
}

// watermarkBuffer records the largest length the buffer ever reached.
type watermarkBuffer struct {
	ports.SampleBuffer
	maxLen int
}

func (b *watermarkBuffer) Append(s *domain.MetricSample) {
	b.SampleBuffer.Append(s)
	if n := b.SampleBuffer.Len(); n > b.maxLen {
		b.maxLen = n
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Run.Seed = 42
	cfg.Sink.Honeycomb.Dataset = "test"
	cfg.Sink.Honeycomb.APIKey = "test"
	return cfg
}

func TestRunHistoricalDayDeliversEverything(t *testing.T) {
	cfg := testConfig()
	snk := &captureSink{}

	rep, err := Run(context.Background(), cfg, catalog.Default(), snk, observability.NewNop())
	require.NoError(t, err)

	// One day at a one-minute step is exactly 1440 ticks.
	assert.Equal(t, 1440, rep.Ticks)
	assert.Positive(t, rep.SamplesGenerated)
	assert.Zero(t, rep.BatchesFailed)
	assert.Equal(t, rep.SamplesGenerated, rep.SamplesDelivered)

	delivered := 0
	short := 0
	for _, b := range snk.batches {
		require.LessOrEqual(t, len(b), cfg.Export.BatchSize)
		if len(b) < cfg.Export.BatchSize {
			short++
		}
		delivered += len(b)
	}
	assert.Equal(t, rep.SamplesGenerated, delivered)

	// Soft-cap flushes drain exactly SoftCap samples, a multiple of the
	// batch size, so only a scheduled or final flush may leave a short
	// batch: 14 scheduled flushes over 1440 ticks, plus the final one.
	assert.LessOrEqual(t, short, 15)
}

func TestRunRangeBatchesAreFullExceptLast(t *testing.T) {
	cfg := testConfig()
	snk := &captureSink{}
	gens := Generators(catalog.Default(), cfg.Run)

	// One hour is fewer ticks than the scheduled flush cadence, so every
	// mid-run flush is soft-cap driven and drains only full batches.
	start := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	rep, err := RunRange(context.Background(), cfg, gens, snk, observability.NewNop(), start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 60, rep.Ticks)

	require.NotEmpty(t, snk.batches)
	for i, b := range snk.batches[:len(snk.batches)-1] {
		require.Len(t, b, cfg.Export.BatchSize, "batch %d must be full", i)
	}
	last := snk.batches[len(snk.batches)-1]
	assert.Positive(t, len(last))
	assert.LessOrEqual(t, len(last), cfg.Export.BatchSize)
}

func TestRunBufferStaysWithinSoftCap(t *testing.T) {
	cfg := testConfig()
	cfg.Export.SoftCap = 200
	snk := &captureSink{}
	buf := &watermarkBuffer{SampleBuffer: buffer.NewMemBuffer(cfg.Export.SoftCap)}

	// Each tick emits nearly a whole cap's worth of samples; the cap
	// must hold mid-tick, not just at tick boundaries.
	start := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	rep, err := RunRange(context.Background(), cfg, []ports.Generator{&floodGenerator{perTick: 150}}, snk, observability.NewNop(), start, start.Add(20*time.Minute), WithBuffer(buf))
	require.NoError(t, err)

	assert.Equal(t, 20*150, rep.SamplesGenerated)
	assert.Equal(t, rep.SamplesGenerated, rep.SamplesDelivered)
	assert.LessOrEqual(t, buf.maxLen, cfg.Export.SoftCap)
}

// cancellingSink fails its first write and cancels the run's context,
// simulating shutdown while a batch sits in retry backoff.
type cancellingSink struct {
	captureSink
	cancel context.CancelFunc
	calls  int
}

func (c *cancellingSink) WriteBatch(ctx context.Context, samples []*domain.MetricSample) error {
	c.calls++
	if c.calls == 1 {
		c.cancel()
		return &export.TransientError{Status: 503, Err: errors.New("unavailable")}
	}
	return c.captureSink.WriteBatch(ctx, samples)
}

func TestRunInterruptedRetryLosesNothing(t *testing.T) {
	cfg := testConfig()
	cfg.Export.SoftCap = 200
	cfg.Export.InitialBackoff = time.Hour // cancellation interrupts the wait

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	snk := &cancellingSink{cancel: cancel}

	start := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	rep, err := RunRange(ctx, cfg, []ports.Generator{&floodGenerator{perTick: 150}}, snk, observability.NewNop(), start, start.Add(20*time.Minute))
	require.NoError(t, err)

	// The batch in flight when the context died must reach the sink via
	// a later flush, not vanish uncounted.
	assert.Positive(t, rep.SamplesGenerated)
	assert.Zero(t, rep.BatchesFailed)
	assert.Equal(t, rep.SamplesGenerated, rep.SamplesDelivered)

	delivered := 0
	for _, b := range snk.batches {
		delivered += len(b)
	}
	assert.Equal(t, rep.SamplesGenerated, delivered)
}

func TestRunSeedIsDeterministic(t *testing.T) {
	run := func() *Report {
		cfg := testConfig()
		cfg.Run.Days = 1
		rep, err := Run(context.Background(), cfg, catalog.Default(), &captureSink{}, observability.NewNop())
		require.NoError(t, err)
		return rep
	}

	first := run()
	second := run()
	assert.Equal(t, first.SamplesGenerated, second.SamplesGenerated)
}

func TestRunDeliveredSamplesKeepOrder(t *testing.T) {
	cfg := testConfig()
	snk := &captureSink{}

	_, err := Run(context.Background(), cfg, catalog.Default(), snk, observability.NewNop())
	require.NoError(t, err)

	var last time.Time
	for _, b := range snk.batches {
		for _, s := range b {
			require.False(t, s.Timestamp.Before(last), "timestamps regressed across batches")
			last = s.Timestamp
		}
	}
}

func TestRunCancelledContextStopsCleanly(t *testing.T) {
	cfg := testConfig()
	snk := &captureSink{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := Run(ctx, cfg, catalog.Default(), snk, observability.NewNop())
	require.NoError(t, err)
	assert.Zero(t, rep.Ticks)
}

func TestRunRealtimeTicksAgainstWallClock(t *testing.T) {
	cfg := testConfig()
	cfg.Run.Mode = config.ModeRealtime
	cfg.Run.Step = 10 * time.Millisecond
	cfg.Run.Duration = 35 * time.Millisecond
	snk := &captureSink{}

	rep, err := Run(context.Background(), cfg, catalog.Default(), snk, observability.NewNop())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rep.Ticks, 2)
	assert.Equal(t, rep.SamplesGenerated, rep.SamplesDelivered)
}

func TestRunRejectsInvalidCatalog(t *testing.T) {
	cfg := testConfig()
	bad := catalog.Default()
	bad.Services = nil

	_, err := Run(context.Background(), cfg, bad, &captureSink{}, observability.NewNop())
	require.Error(t, err)
}

func TestGeneratorsFixedOrder(t *testing.T) {
	gens := Generators(catalog.Default(), testConfig().Run)
	require.Len(t, gens, 4)
	assert.Equal(t, "requests", gens[0].Name())
	assert.Equal(t, "database", gens[1].Name())
	assert.Equal(t, "system", gens[2].Name())
	assert.Equal(t, "users", gens[3].Name())
}
