package generate

import (
	"math/rand"
	"time"

	"github.com/yozlet/event-sender/internal/catalog"
	"github.com/yozlet/event-sender/internal/domain"
	"github.com/yozlet/event-sender/internal/ports"
)

const (
	// How strongly memory reverts toward the service baseline per tick.
	memReversion = 0.1
	// Per-tick noise as a fraction of the baseline.
	memNoise = 0.02
)

// SystemGenerator emits one memory-usage gauge per service per tick.
// Memory follows a slow mean-reverting random walk around each
// service's baseline: steady resource consumption is modelled as
// independent of traffic load. The walk state lives in the generator
// value; the walker owns the generator, so no locking is needed.
type SystemGenerator struct {
	cat     *catalog.Catalog
	current map[string]float64
}

func NewSystemGenerator(cat *catalog.Catalog) *SystemGenerator {
	return &SystemGenerator{cat: cat, current: make(map[string]float64, len(cat.Services))}
}

func (g *SystemGenerator) Name() string { return "system" }

func (g *SystemGenerator) Emit(ts time.Time, _ float64, rng *rand.Rand) []*domain.MetricSample {
	out := make([]*domain.MetricSample, 0, len(g.cat.Services))
	for i := range g.cat.Services {
		svc := &g.cat.Services[i]

		v, ok := g.current[svc.Name]
		if !ok {
			v = svc.BaseMemoryBytes * jitter(rng, 0.1)
		}
		v += memReversion*(svc.BaseMemoryBytes-v) + svc.BaseMemoryBytes*memNoise*(2*rng.Float64()-1)
		if v < 0 {
			v = 0
		}
		g.current[svc.Name] = v

		out = append(out, &domain.MetricSample{
			Name:       MetricMemoryUsage,
			Kind:       domain.KindGauge,
			Value:      v,
			Timestamp:  ts,
			Dimensions: domain.Dimensions{Service: svc.Name},
		})
	}
	return out
}

var _ ports.Generator = (*SystemGenerator)(nil)
