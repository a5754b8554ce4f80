// Package screening decides whether an ordered pair of materials forms a
// type III (broken-gap) heterojunction candidate.
package screening

import (
	"fmt"
	"math"

	"github.com/okian/brokengap/internal/domain/material"
	"github.com/okian/brokengap/internal/domain/rules"
)

// Subject is a record that passed the per-record checks of a rule set.
type Subject struct {
	Record  *material.Record
	Lattice material.Lattice
	Area    float64
}

// Prepare checks every record against the attributes the rule set needs
// unconditionally. Records that fail are returned as DataErrors and must not
// be paired; the rest become Subjects in input order. Subjects point into
// records.
func Prepare(records []material.Record, rs rules.RuleSet) ([]Subject, []*DataError) {
	subjects := make([]Subject, 0, len(records))
	var excluded []*DataError
	seen := make(map[string]struct{}, len(records))

	for i := range records {
		r := &records[i]
		s, derr := prepareOne(r, rs)
		if derr == nil {
			if _, dup := seen[r.UID]; dup {
				derr = &DataError{UID: r.UID, Field: "uid", Err: ErrDuplicateUID}
			}
		}
		if derr != nil {
			excluded = append(excluded, derr)
			continue
		}
		seen[r.UID] = struct{}{}
		subjects = append(subjects, s)
	}
	return subjects, excluded
}

func prepareOne(r *material.Record, rs rules.RuleSet) (Subject, *DataError) {
	missing := func(field string) *DataError {
		return &DataError{UID: r.UID, Field: field, Err: ErrMissingField}
	}

	if r.UID == "" {
		return Subject{}, missing("uid")
	}
	if r.CellArea == nil {
		return Subject{}, missing("cell_area")
	}
	area := *r.CellArea
	if !(area > 0) || math.IsInf(area, 0) {
		return Subject{}, &DataError{UID: r.UID, Field: "cell_area",
			Err: fmt.Errorf("%w: cell area %v", ErrInvalidGeometry, area)}
	}
	if rs.RequireStable && r.StabilityLevel == nil {
		return Subject{}, missing("thermodynamic_stability_level")
	}
	if rs.RequireNonMagnetic && r.IsMagnetic == nil {
		return Subject{}, missing("is_magnetic")
	}
	if (rs.SameCrystalType || rs.ExcludeCrystalSubstring != "" || rs.ScoreLattice) && r.CrystalType == nil {
		return Subject{}, missing("crystal_type")
	}

	s := Subject{Record: r, Area: area}
	if rs.ScoreLattice {
		if r.StdLattice == nil {
			return Subject{}, missing("std_lattice")
		}
		l, err := material.ParseLattice(r.StdLattice)
		if err != nil {
			return Subject{}, &DataError{UID: r.UID, Field: "std_lattice",
				Err: fmt.Errorf("%w: %w", ErrMalformedLattice, err)}
		}
		s.Lattice = l
	}
	return s, nil
}
