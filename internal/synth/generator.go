// Package synth generates deterministic synthetic catalogues of
// two-dimensional materials for tests, benchmarks and local runs.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/brokengap/internal/domain/material"
)

// Defaults.
const (
	defaultCount  = 100
	defaultGroups = 4
)

// Generation ranges, in eV and Å.
const (
	vbmMin      = -7.5
	vbmRange    = 4.0
	gapMin      = 0.3
	gapRange    = 2.5
	evacRange   = 1.5
	hseShift    = 0.4
	gwShift     = 0.7
	baseAMin    = 3.0
	baseARange  = 1.5
	strainRange = 0.04
	vacuumC     = 18.0
)

// Record mix, as probabilities.
const (
	stableShare   = 0.6
	magneticShare = 0.15
	hseShare      = 0.7
	gwShare       = 0.25
	supercellRate = 0.2
)

var (
	// uidSpace namespaces generated uids so that they are stable across runs.
	uidSpace = uuid.MustParse("6f0b7c0e-4d1e-5b8a-9c3f-2a7e1d5b0c91")

	classes      = []string{"TMD", "MXene", "Xane"}
	crystalTypes = []string{"AB", "AB2", "ABC", "AB2-C"}
	elements     = []string{"Mo", "W", "Sn", "Ge", "Ti", "Zr", "Hf", "Pt"}
	ligands      = []string{"S", "Se", "Te", "O"}
)

type group struct {
	name  string
	num   int
	baseA float64
}

// Generator produces catalogues.
type Generator struct {
	seed       uint64
	count      int
	groups     int
	defectRate float64
}

// New returns a generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		seed:   1,
		count:  defaultCount,
		groups: defaultGroups,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Records generates the catalogue. Every call with the same options returns
// an equal slice.
func (g *Generator) Records() []material.Record {
	rng := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))

	groups := make([]group, g.groups)
	for i := range groups {
		num := 1 + rng.IntN(230)
		groups[i] = group{
			name:  fmt.Sprintf("SG%d", num),
			num:   num,
			baseA: baseAMin + rng.Float64()*baseARange,
		}
	}

	out := make([]material.Record, g.count)
	for i := range out {
		out[i] = g.record(rng, i, groups[rng.IntN(len(groups))])
	}
	return out
}

func (g *Generator) record(rng *rand.Rand, i int, grp group) material.Record {
	uid := uuid.NewSHA1(uidSpace, fmt.Appendf(nil, "%d/%d", g.seed, i)).String()

	evac := (rng.Float64()*2 - 1) * evacRange
	vbm := vbmMin + rng.Float64()*vbmRange
	gap := gapMin + rng.Float64()*gapRange

	r := material.Record{
		UID:         uid,
		Formula:     elements[rng.IntN(len(elements))] + ligands[rng.IntN(len(ligands))] + "2",
		SpaceGroup:  grp.name,
		SpgNum:      grp.num,
		CrystalType: material.Ptr(crystalTypes[rng.IntN(len(crystalTypes))]),
		Evac:        evac,
		PBE:         band(vbm+evac, gap),
	}
	if rng.Float64() < 0.9 {
		r.Class = material.Ptr(classes[rng.IntN(len(classes))])
	}
	if rng.Float64() < hseShare {
		r.HSE = band(vbm-hseShift/2+evac, gap+hseShift)
	}
	if rng.Float64() < gwShare {
		r.GW = band(vbm-gwShift/2+evac, gap+gwShift)
	}

	stability := 1 + rng.IntN(2)
	if rng.Float64() < stableShare {
		stability = 3
	}
	r.StabilityLevel = material.Ptr(stability)
	magnetic := 0
	if rng.Float64() < magneticShare {
		magnetic = 1
	}
	r.IsMagnetic = material.Ptr(magnetic)

	a := grp.baseA * (1 + (rng.Float64()*2-1)*strainRange)
	if rng.Float64() < supercellRate {
		a *= 2
	}
	lat := hexagonal(a)
	r.StdLattice = lat
	r.CellArea = material.Ptr(area(lat))

	if rng.Float64() < g.defectRate {
		switch rng.IntN(3) {
		case 0:
			r.CellArea = nil
		case 1:
			r.CellArea = material.Ptr(0.0)
		default:
			r.StdLattice = lat[:2]
		}
	}
	return r
}

func band(vbm, gap float64) material.Band {
	return material.Band{VBM: material.Ptr(vbm), CBM: material.Ptr(vbm + gap)}
}

func hexagonal(a float64) [][]float64 {
	return [][]float64{
		{a, 0, 0},
		{-a / 2, a * math.Sqrt(3) / 2, 0},
		{0, 0, vacuumC},
	}
}

// area is the in-plane cell area |a1 x a2|.
func area(l [][]float64) float64 {
	return math.Abs(l[0][0]*l[1][1] - l[0][1]*l[1][0])
}
