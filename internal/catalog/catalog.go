// Package catalog holds the closed, weighted enumerations that samples
// draw their dimensions from. Catalogs are built once at startup and
// validated once; draws never re-check weights.
package catalog

import (
	"fmt"
	"math"
	"math/rand"
)

// WeightClass buckets endpoints by how expensive they are to serve.
// It selects the log-normal parameters used for response times.
type WeightClass string

const (
	ClassLight  WeightClass = "light"
	ClassMedium WeightClass = "medium"
	ClassHeavy  WeightClass = "heavy"
)

// Endpoint is one route of a service.
type Endpoint struct {
	Path  string
	Class WeightClass
}

// Service is one synthetic application component.
type Service struct {
	Name string
	// BaseRequestsPerTick is the request rate at full traffic intensity.
	BaseRequestsPerTick float64
	// BaseMemoryBytes anchors the mean-reverting memory walk.
	BaseMemoryBytes float64
	// Backend marks services that issue database queries.
	Backend   bool
	Endpoints []Endpoint
}

// Weighted is a generic weighted choice entry.
type Weighted struct {
	Name   string
	Weight float64
}

// StatusCode is one HTTP status with its base draw weight. Error-code
// weights are scaled by the request generator at draw time.
type StatusCode struct {
	Code   int
	Weight float64
}

// Catalog is the full immutable dimension configuration for a run.
type Catalog struct {
	Services      []Service
	Regions       []Weighted
	Statuses      []StatusCode
	Methods       []Weighted
	QueryTypes    []Weighted
	Tables        []string
	ClientClasses []Weighted
}

// weightSumTolerance allows for float accumulation error when checking
// that normalized weight tables sum to 1.
const weightSumTolerance = 1e-9

// Default returns the built-in web-application catalog.
func Default() *Catalog {
	return &Catalog{
		Services: []Service{
			{
				Name:                "web-frontend",
				BaseRequestsPerTick: 400,
				BaseMemoryBytes:     512 << 20,
				Endpoints: []Endpoint{
					{Path: "/", Class: ClassLight},
					{Path: "/login", Class: ClassMedium},
					{Path: "/signup", Class: ClassMedium},
					{Path: "/dashboard", Class: ClassHeavy},
					{Path: "/profile", Class: ClassMedium},
					{Path: "/search", Class: ClassHeavy},
				},
			},
			{
				Name:                "api-gateway",
				BaseRequestsPerTick: 250,
				BaseMemoryBytes:     256 << 20,
				Backend:             true,
				Endpoints: []Endpoint{
					{Path: "/api/v1/health", Class: ClassLight},
					{Path: "/api/v1/auth", Class: ClassMedium},
					{Path: "/api/v1/users", Class: ClassMedium},
					{Path: "/api/v1/orders", Class: ClassHeavy},
				},
			},
			{
				Name:                "user-service",
				BaseRequestsPerTick: 150,
				BaseMemoryBytes:     384 << 20,
				Backend:             true,
				Endpoints: []Endpoint{
					{Path: "/users", Class: ClassMedium},
					{Path: "/users/profile", Class: ClassMedium},
					{Path: "/users/preferences", Class: ClassLight},
					{Path: "/auth/login", Class: ClassMedium},
				},
			},
			{
				Name:                "order-service",
				BaseRequestsPerTick: 120,
				BaseMemoryBytes:     512 << 20,
				Backend:             true,
				Endpoints: []Endpoint{
					{Path: "/orders", Class: ClassMedium},
					{Path: "/orders/history", Class: ClassHeavy},
					{Path: "/orders/create", Class: ClassHeavy},
					{Path: "/orders/cancel", Class: ClassMedium},
				},
			},
			{
				Name:                "payment-service",
				BaseRequestsPerTick: 80,
				BaseMemoryBytes:     256 << 20,
				Backend:             true,
				Endpoints: []Endpoint{
					{Path: "/payments", Class: ClassMedium},
					{Path: "/payments/process", Class: ClassHeavy},
					{Path: "/payments/refund", Class: ClassHeavy},
				},
			},
		},
		Regions: []Weighted{
			{Name: "us-east-1", Weight: 0.4},
			{Name: "us-west-2", Weight: 0.3},
			{Name: "ca-central-1", Weight: 0.2},
			{Name: "sa-east-1", Weight: 0.1},
		},
		Statuses: []StatusCode{
			{Code: 200, Weight: 80},
			{Code: 201, Weight: 5},
			{Code: 400, Weight: 3},
			{Code: 401, Weight: 2},
			{Code: 403, Weight: 1},
			{Code: 404, Weight: 4},
			{Code: 500, Weight: 2},
			{Code: 502, Weight: 1},
			{Code: 503, Weight: 2},
		},
		Methods: []Weighted{
			{Name: "GET", Weight: 70},
			{Name: "POST", Weight: 20},
			{Name: "PUT", Weight: 8},
			{Name: "DELETE", Weight: 2},
		},
		QueryTypes: []Weighted{
			{Name: "SELECT", Weight: 70},
			{Name: "INSERT", Weight: 15},
			{Name: "UPDATE", Weight: 10},
			{Name: "DELETE", Weight: 5},
		},
		Tables: []string{"users", "orders", "products", "sessions", "analytics"},
		ClientClasses: []Weighted{
			{Name: "desktop", Weight: 50},
			{Name: "mobile", Weight: 40},
			{Name: "other", Weight: 10},
		},
	}
}

// Validate checks the catalog invariants once at startup. A failure here
// is a configuration error and must abort before any generation starts.
func (c *Catalog) Validate() error {
	if len(c.Services) == 0 {
		return fmt.Errorf("catalog: at least one service is required")
	}
	for _, svc := range c.Services {
		if svc.Name == "" {
			return fmt.Errorf("catalog: service name is required")
		}
		if svc.BaseRequestsPerTick <= 0 {
			return fmt.Errorf("catalog: service %s: base request rate must be > 0", svc.Name)
		}
		if svc.BaseMemoryBytes <= 0 {
			return fmt.Errorf("catalog: service %s: base memory must be > 0", svc.Name)
		}
		if len(svc.Endpoints) == 0 {
			return fmt.Errorf("catalog: service %s: at least one endpoint is required", svc.Name)
		}
		for _, ep := range svc.Endpoints {
			switch ep.Class {
			case ClassLight, ClassMedium, ClassHeavy:
			default:
				return fmt.Errorf("catalog: service %s: endpoint %s: unknown weight class %q", svc.Name, ep.Path, ep.Class)
			}
		}
	}

	if err := validateNormalized("regions", c.Regions); err != nil {
		return err
	}
	for _, table := range [][]Weighted{c.Methods, c.QueryTypes, c.ClientClasses} {
		for _, w := range table {
			if w.Weight <= 0 {
				return fmt.Errorf("catalog: weight for %s must be > 0", w.Name)
			}
		}
	}
	if len(c.Statuses) == 0 {
		return fmt.Errorf("catalog: at least one status code is required")
	}
	for _, st := range c.Statuses {
		if st.Weight <= 0 {
			return fmt.Errorf("catalog: status %d: weight must be > 0", st.Code)
		}
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("catalog: at least one table is required")
	}
	return nil
}

// validateNormalized enforces that a weight table sums to 1.0.
func validateNormalized(name string, items []Weighted) error {
	if len(items) == 0 {
		return fmt.Errorf("catalog: %s: at least one entry is required", name)
	}
	var sum float64
	for _, w := range items {
		if w.Weight <= 0 {
			return fmt.Errorf("catalog: %s: weight for %s must be > 0", name, w.Name)
		}
		sum += w.Weight
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("catalog: %s: weights sum to %v, want 1.0", name, sum)
	}
	return nil
}

// Choose draws one entry from a weighted table. Weights need not be
// normalized; the table must be non-empty and validated.
func Choose(rng *rand.Rand, items []Weighted) Weighted {
	var total float64
	for _, w := range items {
		total += w.Weight
	}
	r := rng.Float64() * total
	for _, w := range items {
		r -= w.Weight
		if r < 0 {
			return w
		}
	}
	return items[len(items)-1]
}

// StatusClass collapses a status code into its class label ("2xx" ...).
func StatusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
