package material

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedLattice is returned when a lattice is not a finite 3x3 matrix.
var ErrMalformedLattice = errors.New("malformed lattice")

// Lattice is a standardized 3x3 lattice matrix, rows are lattice vectors.
type Lattice [3][3]float64

// ParseLattice validates a raw matrix read from a structure-info blob.
func ParseLattice(raw [][]float64) (Lattice, error) {
	var l Lattice
	if len(raw) != 3 {
		return l, fmt.Errorf("%w: %d rows", ErrMalformedLattice, len(raw))
	}
	for i, row := range raw {
		if len(row) != 3 {
			return l, fmt.Errorf("%w: row %d has %d columns", ErrMalformedLattice, i, len(row))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return l, fmt.Errorf("%w: entry [%d][%d] is not finite", ErrMalformedLattice, i, j)
			}
			l[i][j] = v
		}
	}
	return l, nil
}

// Identity returns the unit lattice.
func Identity() Lattice {
	return Lattice{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Rows returns the lattice as nested slices, the form stored in source blobs.
func (l Lattice) Rows() [][]float64 {
	out := make([][]float64, 3)
	for i := range l {
		out[i] = []float64{l[i][0], l[i][1], l[i][2]}
	}
	return out
}
