package screening

import "github.com/okian/brokengap/internal/domain/material"

// Candidate is the feature tuple of one accepted ordered pair.
// The four band values are vacuum-referenced and strictly ascending.
type Candidate struct {
	LeftFormula  string  `json:"left_formula"`
	LeftUID      string  `json:"left_uid"`
	LeftVBM      float64 `json:"left_vbm"`
	LeftCBM      float64 `json:"left_cbm"`
	RightFormula string  `json:"right_formula"`
	RightUID     string  `json:"right_uid"`
	RightVBM     float64 `json:"right_vbm"`
	RightCBM     float64 `json:"right_cbm"`

	Functional  material.Functional `json:"functional"`
	Class       *string             `json:"class,omitempty"`
	SpaceGroup  string              `json:"spacegroup"`
	SpgNum      int                 `json:"spgnum"`
	CrystalType *string             `json:"crystal_type,omitempty"`

	// BandOffset is right CBM minus left VBM (ΔE).
	BandOffset float64 `json:"delta_e"`
	// AreaRatio is left cell area over right cell area (R).
	AreaRatio float64 `json:"area_ratio"`
	// LatticeMismatch is ΔL, set only by rule sets that score lattices.
	LatticeMismatch *float64 `json:"delta_l,omitempty"`
}

// Column headers of the positional layout.
var (
	strictColumns = []string{
		"Left", "uid", "vbm", "cbm", "Right", "uid", "vbm", "cbm",
		"Calc", "Class", "Group", "Type", "ΔE", "R", "ΔL",
	}
	looseColumns = []string{
		"Left", "uid", "vbm", "cbm", "Right", "uid", "vbm", "cbm",
		"Calc", "Class", "Group", "ΔE", "R",
	}
)

// Columns returns the headers of Row for candidates produced with or without
// lattice scoring.
func Columns(scoreLattice bool) []string {
	if scoreLattice {
		return append([]string(nil), strictColumns...)
	}
	return append([]string(nil), looseColumns...)
}

// Row returns the candidate in the positional layout of Columns. A missing
// class is nil.
func (c *Candidate) Row(scoreLattice bool) []any {
	var class any
	if c.Class != nil {
		class = *c.Class
	}
	row := []any{
		c.LeftFormula, c.LeftUID, c.LeftVBM, c.LeftCBM,
		c.RightFormula, c.RightUID, c.RightVBM, c.RightCBM,
		c.Functional.String(), class, c.SpaceGroup,
	}
	if scoreLattice {
		var ct any
		if c.CrystalType != nil {
			ct = *c.CrystalType
		}
		var dl any
		if c.LatticeMismatch != nil {
			dl = *c.LatticeMismatch
		}
		return append(row, ct, c.BandOffset, c.AreaRatio, dl)
	}
	return append(row, c.BandOffset, c.AreaRatio)
}
