package generate

import (
	"math/rand"
	"time"

	"github.com/yozlet/event-sender/internal/catalog"
	"github.com/yozlet/event-sender/internal/domain"
	"github.com/yozlet/event-sender/internal/ports"
)

// Query durations per type. Updates and deletes carry the widest sigma,
// giving the right tail a heavier reach than HTTP response times.
var queryParams = map[string]struct{ mu, sigma float64 }{
	"SELECT": {mu: -2.0, sigma: 0.6},
	"INSERT": {mu: -1.5, sigma: 0.4},
	"UPDATE": {mu: -1.0, sigma: 0.9},
	"DELETE": {mu: -1.0, sigma: 0.9},
}

// DatabaseGenerator emits query-duration histogram samples for the
// backend services. Each simulated backend request fans out into
// between minFanOut and maxFanOut queries.
type DatabaseGenerator struct {
	cat       *catalog.Catalog
	rateScale float64
	minFanOut int
	maxFanOut int
}

func NewDatabaseGenerator(cat *catalog.Catalog, rateScale float64, minFanOut, maxFanOut int) *DatabaseGenerator {
	if rateScale <= 0 {
		rateScale = 1.0
	}
	if minFanOut < 1 {
		minFanOut = 1
	}
	if maxFanOut < minFanOut {
		maxFanOut = minFanOut
	}
	return &DatabaseGenerator{cat: cat, rateScale: rateScale, minFanOut: minFanOut, maxFanOut: maxFanOut}
}

func (g *DatabaseGenerator) Name() string { return "database" }

func (g *DatabaseGenerator) Emit(ts time.Time, intensity float64, rng *rand.Rand) []*domain.MetricSample {
	var out []*domain.MetricSample
	for i := range g.cat.Services {
		svc := &g.cat.Services[i]
		if !svc.Backend {
			continue
		}

		requests := int(svc.BaseRequestsPerTick * g.rateScale * intensity * jitter(rng, 0.1))
		if requests < 1 {
			requests = 1
		}

		for r := 0; r < requests; r++ {
			fanOut := g.minFanOut + rng.Intn(g.maxFanOut-g.minFanOut+1)
			for q := 0; q < fanOut; q++ {
				out = append(out, g.emitQuery(ts, svc.Name, rng))
			}
		}
	}
	return out
}

func (g *DatabaseGenerator) emitQuery(ts time.Time, service string, rng *rand.Rand) *domain.MetricSample {
	queryType := catalog.Choose(rng, g.cat.QueryTypes).Name
	params := queryParams[queryType]

	return &domain.MetricSample{
		Name:      MetricQueryDuration,
		Kind:      domain.KindHistogram,
		Value:     logNormal(rng, params.mu, params.sigma, 0.001, 10.0),
		Timestamp: ts,
		Dimensions: domain.Dimensions{
			Service:   service,
			QueryType: queryType,
			Table:     g.cat.Tables[rng.Intn(len(g.cat.Tables))],
		},
	}
}

var _ ports.Generator = (*DatabaseGenerator)(nil)
