package ports

import (
	"math/rand"
	"time"

	"github.com/yozlet/event-sender/internal/domain"
)

// Generator emits the samples of one metric family for a single tick.
// Implementations may keep private evolution state (e.g. a random walk)
// but are owned by a single walker goroutine and never called
// concurrently.
type Generator interface {
	Name() string
	Emit(ts time.Time, intensity float64, rng *rand.Rand) []*domain.MetricSample
}
