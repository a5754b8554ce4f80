// Package lattice scores how well two standardized lattices can be stacked.
package lattice

import (
	"math"

	"github.com/okian/brokengap/internal/domain/material"
)

// Fit returns how far the larger magnitude of l and r is from the nearest
// integer multiple of the smaller one. A zero component fits anything.
func Fit(l, r float64) float64 {
	small := math.Min(math.Abs(l), math.Abs(r))
	if small == 0 {
		return 0
	}
	large := math.Max(math.Abs(l), math.Abs(r))

	// |((large + small/2) mod small) - small/2| written on the exact remainder
	rem := math.Mod(large, small)
	return math.Min(rem, small-rem)
}

// Score sums Fit over the nine matched entries of two lattices.
// Lower is better and 0 means every component is commensurate.
func Score(l, r material.Lattice) float64 {
	var total float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			total += Fit(l[i][j], r[i][j])
		}
	}
	return total
}
