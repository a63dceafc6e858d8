package overlap

import "github.com/sells-group/facility-atlas/internal/model"

// Matrix is a symmetric N×N distance matrix in miles with a zero diagonal.
type Matrix [][]float64

// DistanceMatrix computes the full pairwise distance matrix for the given
// facilities. Each unordered pair is computed once and mirrored.
//
// Cost is O(N²) haversine calls and O(N²) memory, which is fine for the few
// hundred facilities this analysis targets. Anything beyond the low thousands
// would want spatial indexing instead.
func DistanceMatrix(facilities []model.Facility) Matrix {
	n := len(facilities)
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := Distance(
				facilities[i].Latitude, facilities[i].Longitude,
				facilities[j].Latitude, facilities[j].Longitude,
			)
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m
}
