package source

import (
	"encoding/json"

	"github.com/okian/brokengap/internal/domain/material"
)

// Row is one catalogue row as exported from the material database. Absent
// keys decode to nil.
type Row struct {
	UID         *string `json:"uid"`
	Formula     *string `json:"formula"`
	Class       *string `json:"class,omitempty"`
	SpaceGroup  *string `json:"spacegroup"`
	SpgNum      *int    `json:"spgnum"`
	CrystalType *string `json:"crystal_type,omitempty"`

	Evac   *float64 `json:"evac"`
	VBM    *float64 `json:"vbm,omitempty"`
	CBM    *float64 `json:"cbm,omitempty"`
	VBMHSE *float64 `json:"vbm_hse,omitempty"`
	CBMHSE *float64 `json:"cbm_hse,omitempty"`
	VBMGW  *float64 `json:"vbm_gw,omitempty"`
	CBMGW  *float64 `json:"cbm_gw,omitempty"`

	StabilityLevel *int     `json:"thermodynamic_stability_level,omitempty"`
	IsMagnetic     *int     `json:"is_magnetic,omitempty"`
	CellArea       *float64 `json:"cell_area,omitempty"`

	// Data holds the per-row result blobs. It is decoded only when the
	// lattice is read, so a broken blob affects that row alone.
	Data json.RawMessage `json:"data,omitempty"`
}

// rowData holds the result blobs the source reads.
type rowData struct {
	StructureInfo *structureInfo `json:"results-asr.structureinfo.json,omitempty"`
}

type structureInfo struct {
	Kwargs struct {
		Data struct {
			SpglibDataset struct {
				StdLattice json.RawMessage `json:"std_lattice,omitempty"`
			} `json:"spglib_dataset"`
		} `json:"data"`
	} `json:"kwargs"`
}

// Lattice returns std_lattice from the structure-info blob. It is nil when
// the blob or the matrix is absent, and ok is false when either is present
// but is not a numeric matrix.
func (r *Row) Lattice() (lattice [][]float64, ok bool) {
	if isNull(r.Data) {
		return nil, true
	}
	var data rowData
	if err := json.Unmarshal(r.Data, &data); err != nil {
		return nil, false
	}
	if data.StructureInfo == nil {
		return nil, true
	}
	raw := data.StructureInfo.Kwargs.Data.SpglibDataset.StdLattice
	if isNull(raw) {
		return nil, true
	}
	if err := json.Unmarshal(raw, &lattice); err != nil {
		return nil, false
	}
	return lattice, true
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}


// Selectable reports whether the row has the attributes every rule set
// needs to key and re-reference it: uid, evac and spgnum.
func (r *Row) Selectable() bool {
	return r.UID != nil && *r.UID != "" && r.Evac != nil && r.SpgNum != nil
}

// Record converts a selectable row.
func (r *Row) Record() material.Record {
	rec := material.Record{
		Formula:        deref(r.Formula),
		Class:          r.Class,
		SpaceGroup:     deref(r.SpaceGroup),
		CrystalType:    r.CrystalType,
		PBE:            material.Band{VBM: r.VBM, CBM: r.CBM},
		HSE:            material.Band{VBM: r.VBMHSE, CBM: r.CBMHSE},
		GW:             material.Band{VBM: r.VBMGW, CBM: r.CBMGW},
		StabilityLevel: r.StabilityLevel,
		IsMagnetic:     r.IsMagnetic,
		CellArea:       r.CellArea,
	}
	if r.UID != nil {
		rec.UID = *r.UID
	}
	if r.SpgNum != nil {
		rec.SpgNum = *r.SpgNum
	}
	if r.Evac != nil {
		rec.Evac = *r.Evac
	}
	lattice, ok := r.Lattice()
	if !ok {
		// An empty matrix fails lattice parsing, which excludes the record
		// only under rule sets that score lattices.
		lattice = [][]float64{}
	}
	rec.StdLattice = lattice
	return rec
}

// FromRecord builds the row for rec.
func FromRecord(rec *material.Record) Row {
	row := Row{
		UID:            material.Ptr(rec.UID),
		Formula:        material.Ptr(rec.Formula),
		Class:          rec.Class,
		SpaceGroup:     material.Ptr(rec.SpaceGroup),
		SpgNum:         material.Ptr(rec.SpgNum),
		CrystalType:    rec.CrystalType,
		Evac:           material.Ptr(rec.Evac),
		VBM:            rec.PBE.VBM,
		CBM:            rec.PBE.CBM,
		VBMHSE:         rec.HSE.VBM,
		CBMHSE:         rec.HSE.CBM,
		VBMGW:          rec.GW.VBM,
		CBMGW:          rec.GW.CBM,
		StabilityLevel: rec.StabilityLevel,
		IsMagnetic:     rec.IsMagnetic,
		CellArea:       rec.CellArea,
	}
	if rec.StdLattice != nil {
		if lattice, err := json.Marshal(rec.StdLattice); err == nil {
			info := &structureInfo{}
			info.Kwargs.Data.SpglibDataset.StdLattice = lattice
			row.Data, _ = json.Marshal(rowData{StructureInfo: info})
		}
	}
	return row
}

// Records converts the selectable rows, keeping row order, and returns how
// many rows were skipped.
func Records(rows []Row) ([]material.Record, int) {
	out := make([]material.Record, 0, len(rows))
	for i := range rows {
		if !rows[i].Selectable() {
			continue
		}
		out = append(out, rows[i].Record())
	}
	return out, len(rows) - len(out)
}
