package generate

import (
	"math/rand"
	"time"

	"github.com/yozlet/event-sender/internal/catalog"
	"github.com/yozlet/event-sender/internal/domain"
	"github.com/yozlet/event-sender/internal/ports"
)

// Response-time log-normal parameters per endpoint weight class.
var durationParams = map[catalog.WeightClass]struct{ mu, sigma float64 }{
	catalog.ClassLight:  {mu: -1.0, sigma: 0.5},
	catalog.ClassMedium: {mu: 0.0, sigma: 0.7},
	catalog.ClassHeavy:  {mu: 0.5, sigma: 0.8},
}

// Server errors are served off the slow path regardless of endpoint.
var errorDurationParams = struct{ mu, sigma float64 }{mu: 1.5, sigma: 0.8}

// RequestGenerator emits HTTP traffic samples: a duration histogram
// point and a request counter increment per simulated request, plus an
// error counter increment for statuses >= 400.
type RequestGenerator struct {
	cat       *catalog.Catalog
	rateScale float64
}

func NewRequestGenerator(cat *catalog.Catalog, rateScale float64) *RequestGenerator {
	if rateScale <= 0 {
		rateScale = 1.0
	}
	return &RequestGenerator{cat: cat, rateScale: rateScale}
}

func (g *RequestGenerator) Name() string { return "requests" }

func (g *RequestGenerator) Emit(ts time.Time, intensity float64, rng *rand.Rand) []*domain.MetricSample {
	var out []*domain.MetricSample
	for i := range g.cat.Services {
		svc := &g.cat.Services[i]
		for r := 0; r < g.requestCount(svc, intensity, rng); r++ {
			out = append(out, g.emitRequest(ts, svc, intensity, rng)...)
		}
	}
	return out
}

// requestCount is the Poisson-like per-tick request volume for one
// service. The floor of one keeps a baseline trickle flowing even at
// the intensity floor.
func (g *RequestGenerator) requestCount(svc *catalog.Service, intensity float64, rng *rand.Rand) int {
	n := int(svc.BaseRequestsPerTick * g.rateScale * intensity * jitter(rng, 0.2))
	if n < 1 {
		n = 1
	}
	return n
}

func (g *RequestGenerator) emitRequest(ts time.Time, svc *catalog.Service, intensity float64, rng *rand.Rand) []*domain.MetricSample {
	ep := svc.Endpoints[rng.Intn(len(svc.Endpoints))]
	status := g.drawStatus(intensity, rng)

	dims := domain.Dimensions{
		Service:     svc.Name,
		Endpoint:    ep.Path,
		Method:      catalog.Choose(rng, g.cat.Methods).Name,
		Region:      catalog.Choose(rng, g.cat.Regions).Name,
		StatusCode:  status,
		StatusClass: catalog.StatusClass(status),
		ClientClass: catalog.Choose(rng, g.cat.ClientClasses).Name,
	}

	params := durationParams[ep.Class]
	if status >= 500 {
		params = errorDurationParams
	}
	duration := logNormal(rng, params.mu, params.sigma, 0.001, 30.0)

	samples := []*domain.MetricSample{
		{Name: MetricRequestDuration, Kind: domain.KindHistogram, Value: duration, Timestamp: ts, Dimensions: dims},
		{Name: MetricRequestsTotal, Kind: domain.KindCounter, Value: 1, Timestamp: ts, Dimensions: dims},
	}
	if status >= 400 {
		samples = append(samples, &domain.MetricSample{
			Name: MetricErrorsTotal, Kind: domain.KindCounter, Value: 1, Timestamp: ts, Dimensions: dims,
		})
	}
	return samples
}

// drawStatus picks a status code from the weighted table, scaling error
// weights by the inverse of intensity. Errors are proportionally rarer
// at peak load, modelling the capacity headroom a production fleet is
// sized for. This is intentional; do not replace it with a flat table.
func (g *RequestGenerator) drawStatus(intensity float64, rng *rand.Rand) int {
	errorScale := 1.0 / intensity

	var total float64
	for _, st := range g.cat.Statuses {
		total += g.effectiveWeight(st, errorScale)
	}

	r := rng.Float64() * total
	for _, st := range g.cat.Statuses {
		r -= g.effectiveWeight(st, errorScale)
		if r < 0 {
			return st.Code
		}
	}
	return g.cat.Statuses[len(g.cat.Statuses)-1].Code
}

func (g *RequestGenerator) effectiveWeight(st catalog.StatusCode, errorScale float64) float64 {
	if st.Code >= 400 {
		return st.Weight * errorScale
	}
	return st.Weight
}

var _ ports.Generator = (*RequestGenerator)(nil)
