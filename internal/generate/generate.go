// Package generate holds the per-family sample generators. Each
// generator produces the points of one metric family for a single tick,
// given the tick's timestamp and traffic intensity. Generators never
// look at the wall clock: the simulated timestamp is attached verbatim.
package generate

import (
	"math"
	"math/rand"
)

// Metric names shared with the sink wire format.
const (
	MetricRequestDuration = "http_request_duration_seconds"
	MetricRequestsTotal   = "http_requests_total"
	MetricErrorsTotal     = "http_errors_total"
	MetricQueryDuration   = "db_query_duration_seconds"
	MetricMemoryUsage     = "memory_usage_bytes"
	MetricActiveUsers     = "active_users"
)

// logNormal draws exp(mu + sigma*N(0,1)) clamped to [min, max].
func logNormal(rng *rand.Rand, mu, sigma, min, max float64) float64 {
	v := math.Exp(mu + sigma*rng.NormFloat64())
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// jitter returns a multiplicative fuzz factor centered on 1.0, drawn
// uniformly from [1-spread, 1+spread].
func jitter(rng *rand.Rand, spread float64) float64 {
	return 1 - spread + 2*spread*rng.Float64()
}
