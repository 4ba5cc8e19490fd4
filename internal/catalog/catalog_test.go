package catalog

import (
	"math/rand"
	"testing"
)

func TestDefaultCatalogValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default catalog should validate: %v", err)
	}
}

func TestValidateRejectsUnnormalizedRegions(t *testing.T) {
	c := Default()
	c.Regions[0].Weight = 0.5 // sum is now 1.1
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for region weights not summing to 1")
	}
}

func TestValidateRejectsEmptyServices(t *testing.T) {
	c := Default()
	c.Services = nil
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for empty service list")
	}
}

func TestValidateRejectsUnknownWeightClass(t *testing.T) {
	c := Default()
	c.Services[0].Endpoints[0].Class = "enormous"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for unknown endpoint weight class")
	}
}

func TestChooseRespectsWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	items := []Weighted{
		{Name: "a", Weight: 0.9},
		{Name: "b", Weight: 0.1},
	}

	counts := map[string]int{}
	for i := 0; i < 10000; i++ {
		counts[Choose(rng, items).Name]++
	}

	if counts["a"] < 8500 || counts["a"] > 9500 {
		t.Fatalf("expected ~9000 draws of a, got %d", counts["a"])
	}
	if counts["b"] == 0 {
		t.Fatalf("expected b to be drawn at least once")
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{200: "2xx", 201: "2xx", 404: "4xx", 429: "4xx", 503: "5xx"}
	for code, want := range cases {
		if got := StatusClass(code); got != want {
			t.Fatalf("StatusClass(%d) = %s, want %s", code, got, want)
		}
	}
}
