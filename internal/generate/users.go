package generate

import (
	"math"
	"math/rand"
	"time"

	"github.com/yozlet/event-sender/internal/catalog"
	"github.com/yozlet/event-sender/internal/domain"
	"github.com/yozlet/event-sender/internal/ports"
)

// UsersGenerator emits one active-users gauge per region per tick,
// proportional to intensity times the region weight plus small
// independent per-region noise.
type UsersGenerator struct {
	cat       *catalog.Catalog
	baseUsers float64
}

func NewUsersGenerator(cat *catalog.Catalog, baseUsers float64) *UsersGenerator {
	if baseUsers <= 0 {
		baseUsers = 5000
	}
	return &UsersGenerator{cat: cat, baseUsers: baseUsers}
}

func (g *UsersGenerator) Name() string { return "users" }

func (g *UsersGenerator) Emit(ts time.Time, intensity float64, rng *rand.Rand) []*domain.MetricSample {
	total := g.baseUsers * intensity * jitter(rng, 0.1)

	out := make([]*domain.MetricSample, 0, len(g.cat.Regions))
	for _, region := range g.cat.Regions {
		users := math.Round(total * region.Weight * jitter(rng, 0.03))
		if users < 1 {
			users = 1
		}
		out = append(out, &domain.MetricSample{
			Name:       MetricActiveUsers,
			Kind:       domain.KindGauge,
			Value:      users,
			Timestamp:  ts,
			Dimensions: domain.Dimensions{Region: region.Name},
		})
	}
	return out
}

var _ ports.Generator = (*UsersGenerator)(nil)
