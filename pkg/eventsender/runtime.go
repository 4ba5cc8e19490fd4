package eventsender

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yozlet/event-sender/internal/adapters/observability"
	"github.com/yozlet/event-sender/internal/adapters/sink"
	"github.com/yozlet/event-sender/internal/app/config"
	"github.com/yozlet/event-sender/internal/app/pipeline"
)

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	catalog       *Catalog
	generators    []Generator
	sink          Sink
	buffer        SampleBuffer
	rng           *rand.Rand
	observability Observability
}

// WithCatalog swaps the built-in application catalog for a custom one.
func WithCatalog(cat *Catalog) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.catalog = cat
	}
}

// WithGenerators replaces the four default generators entirely. The
// walker invokes them in slice order every tick.
func WithGenerators(gens ...Generator) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.generators = gens
	}
}

// WithSink injects a custom sink so samples can be sent anywhere.
func WithSink(s Sink) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.sink = s
	}
}

// WithBuffer swaps the in-memory point buffer.
func WithBuffer(buf SampleBuffer) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.buffer = buf
	}
}

// WithRand injects the random source, overriding the configured seed.
func WithRand(rng *rand.Rand) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.rng = rng
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// Runtime wires the generate → buffer → export pipeline and exposes a
// blocking Run for embedding the generator inside any Go service.
type Runtime struct {
	cfg        *Config
	generators []Generator
	snk        Sink
	obs        Observability
	pipeOpts   []pipeline.Option
	registry   *prometheus.Registry
	db         *sql.DB
	metricsSrv *http.Server
}

// NewRuntime bootstraps the default adapters (built-in catalog,
// Honeycomb or Timescale sink per config, zap + Prometheus
// observability). RuntimeOption values override any dependency.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	rt := &Runtime{cfg: cfg}

	rt.obs = overrides.observability
	if rt.obs == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			return nil, err
		}
		rt.registry = prometheus.NewRegistry()
		rt.obs = observability.New(logger, rt.registry)
	}

	rt.snk = overrides.sink
	if rt.snk == nil {
		var err error
		rt.snk, err = rt.buildSink()
		if err != nil {
			return nil, err
		}
	}

	if len(overrides.generators) > 0 {
		rt.generators = overrides.generators
	} else {
		cat := overrides.catalog
		if cat == nil {
			cat = DefaultCatalog()
		}
		if err := cat.Validate(); err != nil {
			return nil, err
		}
		rt.generators = pipeline.Generators(cat, cfg.Run)
	}
	if len(rt.generators) == 0 {
		return nil, fmt.Errorf("at least one generator is required")
	}

	if overrides.buffer != nil {
		rt.pipeOpts = append(rt.pipeOpts, pipeline.WithBuffer(overrides.buffer))
	}
	if overrides.rng != nil {
		rt.pipeOpts = append(rt.pipeOpts, pipeline.WithRand(overrides.rng))
	}

	return rt, nil
}

func (r *Runtime) buildSink() (Sink, error) {
	switch r.cfg.Sink.Type {
	case config.SinkTimescale:
		db, err := sql.Open("postgres", r.cfg.Sink.Timescale.ConnString)
		if err != nil {
			return nil, err
		}
		r.db = db
		return sink.NewTimescaleSink(db, r.cfg.Sink.Timescale.Table), nil
	default:
		return sink.NewHoneycombSink(nil,
			r.cfg.Sink.Honeycomb.APIURL,
			r.cfg.Sink.Honeycomb.Dataset,
			r.cfg.Sink.Honeycomb.APIKey,
			r.obs), nil
	}
}

// Run starts the metrics server, executes the configured walk, and
// shuts everything down afterwards. It blocks until the walk finishes
// or the context is cancelled; either way buffered samples are flushed
// before it returns.
func (r *Runtime) Run(ctx context.Context) (*Report, error) {
	r.startMetrics()

	rep, runErr := pipeline.RunWith(ctx, r.cfg, r.generators, r.snk, r.obs, r.pipeOpts...)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return rep, runErr
}

// GenerateRange walks the explicit half-open interval [start, end) at
// the configured step, regardless of the configured run mode. The same
// flush and shutdown guarantees as Run apply.
func (r *Runtime) GenerateRange(ctx context.Context, start, end time.Time) (*Report, error) {
	r.startMetrics()

	rep, runErr := pipeline.RunRange(ctx, r.cfg, r.generators, r.snk, r.obs, start, end, r.pipeOpts...)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return rep, runErr
}

// Shutdown stops the metrics server and closes the database connection
// if the runtime opened one.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
		r.metricsSrv = nil
	}

	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, err)
		}
		r.db = nil
	}

	return errors.Join(errs...)
}

func (r *Runtime) startMetrics() {
	if r.cfg.Metrics.Addr == "" || r.registry == nil {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{
		Addr:    r.cfg.Metrics.Addr,
		Handler: mux,
	}

	srv := r.metricsSrv
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server exited: %v", err)
		}
	}()
}
