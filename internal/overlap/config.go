package overlap

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/facility-atlas/internal/model"
)

// Config holds all analysis tunables. Every threshold the analysis uses is
// passed in here so the analyzer stays a pure, reusable function.
type Config struct {
	// ServiceRadiusMiles is the maximum distance at which two facilities are
	// considered to serve overlapping populations (inclusive).
	ServiceRadiusMiles float64 `json:"service_radius_miles" yaml:"service_radius_miles" mapstructure:"service_radius_miles"`

	// ConsolidationRadiusFraction scales the service radius down for cluster
	// membership. 0.5 gives the 10-mile consolidation radius at the default
	// 20-mile service radius.
	ConsolidationRadiusFraction float64 `json:"consolidation_radius_fraction" yaml:"consolidation_radius_fraction" mapstructure:"consolidation_radius_fraction"`

	// SeedNeighborThreshold is the minimum neighbor count for a facility to
	// seed a consolidation cluster.
	SeedNeighborThreshold int `json:"seed_neighbor_threshold" yaml:"seed_neighbor_threshold" mapstructure:"seed_neighbor_threshold"`

	// MinClusterSize discards clusters smaller than this after the greedy scan.
	MinClusterSize int `json:"min_cluster_size" yaml:"min_cluster_size" mapstructure:"min_cluster_size"`

	// RedundantNeighborThreshold marks a facility "redundant" for the cost
	// estimate when its neighbor count is strictly greater than this.
	RedundantNeighborThreshold int `json:"redundant_neighbor_threshold" yaml:"redundant_neighbor_threshold" mapstructure:"redundant_neighbor_threshold"`

	// TopK caps the highest-redundancy facility list.
	TopK int `json:"top_k" yaml:"top_k" mapstructure:"top_k"`

	// TopCities caps the city grouping list.
	TopCities int `json:"top_cities" yaml:"top_cities" mapstructure:"top_cities"`

	// CategoryCosts assigns an average annual operating cost (USD) per
	// category. Categories without an entry are excluded from the estimate.
	CategoryCosts map[model.Category]float64 `json:"category_costs" yaml:"category_costs" mapstructure:"category_costs"`

	// SavingsFraction is the share of a redundant facility's operating cost
	// assumed recoverable through consolidation.
	SavingsFraction float64 `json:"savings_fraction" yaml:"savings_fraction" mapstructure:"savings_fraction"`
}

// DefaultConfig returns the analysis defaults: a 20-mile service radius
// (≈30-minute rural drive time), 10-mile consolidation radius, and the
// original cost assumptions ($2M/yr per RHC, $5M/yr per FQHC, 30% savings).
func DefaultConfig() Config {
	return Config{
		ServiceRadiusMiles:          20,
		ConsolidationRadiusFraction: 0.5,
		SeedNeighborThreshold:       5,
		MinClusterSize:              3,
		RedundantNeighborThreshold:  3,
		TopK:                        15,
		TopCities:                   10,
		CategoryCosts: map[model.Category]float64{
			model.CategoryRHC:  2_000_000,
			model.CategoryFQHC: 5_000_000,
		},
		SavingsFraction: 0.3,
	}
}

// ValidateConfig checks that a Config is internally consistent.
func ValidateConfig(c Config) error {
	var errs []string

	if c.ServiceRadiusMiles <= 0 {
		errs = append(errs, "service_radius_miles must be > 0")
	}
	if c.ConsolidationRadiusFraction <= 0 || c.ConsolidationRadiusFraction > 1 {
		errs = append(errs, "consolidation_radius_fraction must be in (0, 1]")
	}
	if c.SeedNeighborThreshold < 1 {
		errs = append(errs, "seed_neighbor_threshold must be >= 1")
	}
	if c.MinClusterSize < 2 {
		errs = append(errs, "min_cluster_size must be >= 2")
	}
	if c.RedundantNeighborThreshold < 0 {
		errs = append(errs, "redundant_neighbor_threshold must be >= 0")
	}
	if c.TopK < 1 {
		errs = append(errs, "top_k must be >= 1")
	}
	if c.SavingsFraction < 0 || c.SavingsFraction > 1 {
		errs = append(errs, "savings_fraction must be in [0, 1]")
	}
	for cat, cost := range c.CategoryCosts {
		if cost < 0 {
			errs = append(errs, fmt.Sprintf("category cost for %s must be >= 0", cat))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("overlap: invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
