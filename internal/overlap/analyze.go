package overlap

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/facility-atlas/internal/model"
)

// CostNote accompanies every inefficiency figure the analyzer emits. The
// estimate is illustrative only, not a financial model.
const CostNote = "Illustrative estimate only: assumes a flat average operating cost per category and a fixed savings fraction for facilities with redundant service areas."

// OverlapResult holds the per-facility neighbor counts within the service
// radius. Immutable once computed.
type OverlapResult struct {
	FacilityID        string                 `json:"facility_id"`
	Name              string                 `json:"name"`
	Category          model.Category         `json:"category"`
	City              string                 `json:"city"`
	NeighborCount     int                    `json:"neighbor_count"`
	NeighborBreakdown map[model.Category]int `json:"neighbor_breakdown,omitempty"`
}

// CategoryStats aggregates neighbor counts for facilities of one category.
type CategoryStats struct {
	Category       model.Category `json:"category"`
	Count          int            `json:"count"`
	MeanNeighbors  float64        `json:"mean_neighbors"`
	MaxNeighbors   int            `json:"max_neighbors"`
	PctWithOverlap float64        `json:"pct_with_overlap"`
}

// ConsolidationCluster is a greedily formed group of mutually proximate
// high-redundancy facilities flagged as candidates for merging services.
type ConsolidationCluster struct {
	MemberIDs      []string               `json:"member_ids"`
	DominantCity   string                 `json:"dominant_city"`
	CategoryCounts map[model.Category]int `json:"category_counts"`
}

// CityGroup counts facilities sharing a city label.
type CityGroup struct {
	City           string                 `json:"city"`
	Total          int                    `json:"total"`
	CategoryCounts map[model.Category]int `json:"category_counts"`
}

// Summary is the headline numbers of a redundancy analysis.
type Summary struct {
	TotalFacilities          int                    `json:"total_facilities"`
	CategoryCounts           map[model.Category]int `json:"category_counts"`
	RedundancyScore          float64                `json:"redundancy_score"`
	IsolatedCount            int                    `json:"isolated_facilities"`
	ClusterCount             int                    `json:"consolidation_clusters"`
	EstimatedInefficiencyUSD float64                `json:"estimated_inefficiency_usd"`
	CostNote                 string                 `json:"cost_note"`
}

// Result is the full machine-readable report of one analysis run. Everything
// is recomputed from the facility snapshot on each invocation; nothing here
// feeds back into later runs.
type Result struct {
	Summary       Summary                `json:"summary"`
	CategoryStats []CategoryStats        `json:"category_stats"`
	Overlaps      []OverlapResult        `json:"overlaps"`
	TopRedundant  []OverlapResult        `json:"top_redundant"`
	Isolated      []OverlapResult        `json:"isolated"`
	Clusters      []ConsolidationCluster `json:"clusters"`
	TopCities     []CityGroup            `json:"top_cities"`
}

// Analyze runs the full redundancy analysis over a facility snapshot. The
// input must already be filtered to facilities with valid coordinates;
// Analyze rejects non-finite, out-of-range, or (0,0) locations rather than
// silently computing nonsense distances.
//
// Fewer than two facilities is not an error: every count is trivially zero.
func Analyze(facilities []model.Facility, cfg Config) (*Result, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	for _, f := range facilities {
		if !f.HasCoordinates() {
			return nil, eris.Errorf("overlap: facility %s (%s) has invalid coordinates (%v, %v)",
				f.ID, f.Name, f.Latitude, f.Longitude)
		}
	}

	n := len(facilities)
	matrix := DistanceMatrix(facilities)
	overlaps := countNeighbors(facilities, matrix, cfg.ServiceRadiusMiles)

	ranked := rankByRedundancy(overlaps)
	topK := cfg.TopK
	if topK > len(ranked) {
		topK = len(ranked)
	}

	var isolated []OverlapResult
	for _, o := range overlaps {
		if o.NeighborCount == 0 {
			isolated = append(isolated, o)
		}
	}

	clusters := cluster(facilities, matrix, ranked, cfg)

	// Each adjacency is counted from both endpoints, hence the halving.
	var totalNeighbors int
	for _, o := range overlaps {
		totalNeighbors += o.NeighborCount
	}
	var score float64
	if n > 0 {
		score = float64(totalNeighbors) / 2 / float64(n)
	}

	categoryCounts := make(map[model.Category]int)
	for _, f := range facilities {
		categoryCounts[f.Category]++
	}

	savings := estimateSavings(facilities, overlaps, cfg)

	res := &Result{
		Summary: Summary{
			TotalFacilities:          n,
			CategoryCounts:           categoryCounts,
			RedundancyScore:          score,
			IsolatedCount:            len(isolated),
			ClusterCount:             len(clusters),
			EstimatedInefficiencyUSD: savings,
			CostNote:                 CostNote,
		},
		CategoryStats: categoryStats(facilities, overlaps),
		Overlaps:      overlaps,
		TopRedundant:  ranked[:topK],
		Isolated:      isolated,
		Clusters:      clusters,
		TopCities:     topCities(facilities, cfg.TopCities),
	}

	zap.L().Info("overlap: analysis complete",
		zap.Int("facilities", n),
		zap.Float64("service_radius_miles", cfg.ServiceRadiusMiles),
		zap.Float64("redundancy_score", score),
		zap.Int("isolated", len(isolated)),
		zap.Int("clusters", len(clusters)),
		zap.Float64("estimated_inefficiency_usd", savings),
	)

	return res, nil
}

// countNeighbors computes, for every facility, the count of other facilities
// within the service radius (inclusive) and the per-category breakdown.
func countNeighbors(facilities []model.Facility, m Matrix, radius float64) []OverlapResult {
	out := make([]OverlapResult, len(facilities))
	for i, f := range facilities {
		o := OverlapResult{
			FacilityID: f.ID,
			Name:       f.Name,
			Category:   f.Category,
			City:       f.City,
		}
		for j := range facilities {
			if j == i || m[i][j] > radius {
				continue
			}
			o.NeighborCount++
			if o.NeighborBreakdown == nil {
				o.NeighborBreakdown = make(map[model.Category]int)
			}
			o.NeighborBreakdown[facilities[j].Category]++
		}
		out[i] = o
	}
	return out
}

// rankByRedundancy orders facilities by descending neighbor count. The sort is
// stable so ties keep their original input order.
func rankByRedundancy(overlaps []OverlapResult) []OverlapResult {
	ranked := make([]OverlapResult, len(overlaps))
	copy(ranked, overlaps)
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].NeighborCount > ranked[b].NeighborCount
	})
	return ranked
}

// cluster greedily partitions high-redundancy facilities into consolidation
// candidates. Seeds are taken in ranked order; members join when within the
// tighter consolidation radius of the seed and are marked visited immediately,
// so no facility belongs to more than one cluster. This is a first-found
// greedy partition, not connected components: membership depends on seed
// order. That order dependence is part of the contract: changing it would
// change reported cluster counts.
func cluster(facilities []model.Facility, m Matrix, ranked []OverlapResult, cfg Config) []ConsolidationCluster {
	idx := make(map[string]int, len(facilities))
	for i, f := range facilities {
		idx[f.ID] = i
	}

	radius := cfg.ServiceRadiusMiles * cfg.ConsolidationRadiusFraction
	visited := make(map[int]bool, len(facilities))
	var clusters []ConsolidationCluster

	for _, seed := range ranked {
		if seed.NeighborCount < cfg.SeedNeighborThreshold {
			break // ranked is sorted descending; nothing later qualifies
		}
		i := idx[seed.FacilityID]
		if visited[i] {
			continue
		}
		members := []int{i}
		visited[i] = true

		for j := range facilities {
			if j == i || visited[j] || m[i][j] > radius {
				continue
			}
			members = append(members, j)
			visited[j] = true
		}

		if len(members) < cfg.MinClusterSize {
			continue
		}
		clusters = append(clusters, newCluster(facilities, members))
	}
	return clusters
}

// newCluster builds a ConsolidationCluster from member indexes. The dominant
// city is the mode of member city labels; ties go to the city encountered
// first in member order.
func newCluster(facilities []model.Facility, members []int) ConsolidationCluster {
	c := ConsolidationCluster{
		MemberIDs:      make([]string, 0, len(members)),
		CategoryCounts: make(map[model.Category]int),
	}
	cityCount := make(map[string]int)
	var cityOrder []string
	for _, i := range members {
		f := facilities[i]
		c.MemberIDs = append(c.MemberIDs, f.ID)
		c.CategoryCounts[f.Category]++
		if cityCount[f.City] == 0 {
			cityOrder = append(cityOrder, f.City)
		}
		cityCount[f.City]++
	}
	best := -1
	for _, city := range cityOrder {
		if cityCount[city] > best {
			best = cityCount[city]
			c.DominantCity = city
		}
	}
	return c
}

// categoryStats aggregates neighbor counts grouped by each facility's own
// category, in reporting order.
func categoryStats(facilities []model.Facility, overlaps []OverlapResult) []CategoryStats {
	byCat := make(map[model.Category]*CategoryStats)
	var order []model.Category
	for i, f := range facilities {
		s, ok := byCat[f.Category]
		if !ok {
			s = &CategoryStats{Category: f.Category}
			byCat[f.Category] = s
			order = append(order, f.Category)
		}
		s.Count++
		nc := overlaps[i].NeighborCount
		s.MeanNeighbors += float64(nc) // running sum; divided below
		if nc > s.MaxNeighbors {
			s.MaxNeighbors = nc
		}
		if nc > 0 {
			s.PctWithOverlap++ // running count; converted below
		}
	}

	// Keep the canonical category order first, then anything unexpected.
	sort.SliceStable(order, func(a, b int) bool {
		return catRank(order[a]) < catRank(order[b])
	})

	out := make([]CategoryStats, 0, len(order))
	for _, cat := range order {
		s := byCat[cat]
		s.MeanNeighbors /= float64(s.Count)
		s.PctWithOverlap = s.PctWithOverlap / float64(s.Count) * 100
		out = append(out, *s)
	}
	return out
}

func catRank(c model.Category) int {
	for i, known := range model.Categories() {
		if c == known {
			return i
		}
	}
	return len(model.Categories())
}

// topCities groups facilities by city label and returns the most served
// cities with per-category breakdowns. Empty city labels are skipped.
func topCities(facilities []model.Facility, limit int) []CityGroup {
	byCity := make(map[string]*CityGroup)
	var order []string
	for _, f := range facilities {
		if f.City == "" {
			continue
		}
		g, ok := byCity[f.City]
		if !ok {
			g = &CityGroup{City: f.City, CategoryCounts: make(map[model.Category]int)}
			byCity[f.City] = g
			order = append(order, f.City)
		}
		g.Total++
		g.CategoryCounts[f.Category]++
	}

	sort.SliceStable(order, func(a, b int) bool {
		return byCity[order[a]].Total > byCity[order[b]].Total
	})
	if limit > 0 && limit < len(order) {
		order = order[:limit]
	}

	out := make([]CityGroup, 0, len(order))
	for _, city := range order {
		out = append(out, *byCity[city])
	}
	return out
}

// estimateSavings sums the illustrative consolidation savings: facilities
// whose neighbor count exceeds the redundant threshold, in categories with an
// assigned operating cost, at the configured savings fraction.
func estimateSavings(facilities []model.Facility, overlaps []OverlapResult, cfg Config) float64 {
	var total float64
	for i, f := range facilities {
		cost, ok := cfg.CategoryCosts[f.Category]
		if !ok {
			continue
		}
		if overlaps[i].NeighborCount > cfg.RedundantNeighborThreshold {
			total += cost * cfg.SavingsFraction
		}
	}
	return total
}
