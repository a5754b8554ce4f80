// Package material holds the read-only view of one catalogue record.
package material

// Record is one two-dimensional material as returned by the record source.
// Optional attributes are pointers; a nil pointer means the source row does
// not carry the attribute. Records are never mutated after loading.
type Record struct {
	UID         string
	Formula     string
	Class       *string
	SpaceGroup  string
	SpgNum      int
	CrystalType *string

	// Evac is the vacuum level used to re-reference band energies.
	Evac float64

	PBE Band // suffix ""
	HSE Band // suffix "_hse"
	GW  Band // suffix "_gw"

	StabilityLevel *int
	IsMagnetic     *int

	CellArea *float64

	// StdLattice is the raw standardized lattice from the structure-info blob.
	// It is validated with ParseLattice before use.
	StdLattice [][]float64
}

// Band holds the optional band edges computed with one functional.
type Band struct {
	VBM *float64
	CBM *float64
}

// Edges is a present valence/conduction pair.
type Edges struct {
	VBM float64
	CBM float64
}

// Bands is the band selector: it returns the edges for f only when both the
// VBM and the CBM exist on the record.
func (r *Record) Bands(f Functional) (Edges, bool) {
	var b Band
	switch f {
	case GW:
		b = r.GW
	case HSE:
		b = r.HSE
	case PBE:
		b = r.PBE
	default:
		return Edges{}, false
	}
	if b.VBM == nil || b.CBM == nil {
		return Edges{}, false
	}
	return Edges{VBM: *b.VBM, CBM: *b.CBM}, true
}

// SameClass treats a missing class as a value equal only to another missing class.
func SameClass(a, b *Record) bool {
	if a.Class == nil || b.Class == nil {
		return a.Class == nil && b.Class == nil
	}
	return *a.Class == *b.Class
}

// Ptr returns a pointer to v, for building records with optional attributes.
func Ptr[T any](v T) *T { return &v }
