// Package rules describes the acceptance rule sets applied to candidate pairs.
//
// A RuleSet is plain data: every predicate family is a switch, and both named
// rule sets are evaluated by the same pair evaluator.
package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/okian/brokengap/internal/domain/material"
)

// Rule set names.
const (
	Strict        = "strict"
	TopInsulators = "topinsulators"
)

// RankKey selects how accepted candidates are ordered.
type RankKey int

const (
	// ByLatticeMismatch orders by ascending lattice mismatch score.
	ByLatticeMismatch RankKey = iota + 1
	// ByAreaRatio orders by how close the cell-area ratio is to 1.
	ByAreaRatio
)

// String returns the key name.
func (k RankKey) String() string {
	switch k {
	case ByLatticeMismatch:
		return "lattice_mismatch"
	case ByAreaRatio:
		return "area_ratio"
	default:
		return fmt.Sprintf("RankKey(%d)", int(k))
	}
}

// FunctionalSet is a set of accepted functionals.
type FunctionalSet uint8

// Functionals builds a set.
func Functionals(fs ...material.Functional) FunctionalSet {
	var s FunctionalSet
	for _, f := range fs {
		s |= 1 << uint(f)
	}
	return s
}

// Has reports whether f is in the set.
func (s FunctionalSet) Has(f material.Functional) bool {
	return s&(1<<uint(f)) != 0
}

// String lists the members in priority order.
func (s FunctionalSet) String() string {
	var names []string
	for _, f := range material.Priority {
		if s.Has(f) {
			names = append(names, f.String())
		}
	}
	return strings.Join(names, "|")
}

// RuleSet selects the active predicates.
type RuleSet struct {
	Name string

	RequireStable      bool // thermodynamic_stability_level == StableLevel on both sides
	RequireNonMagnetic bool // is_magnetic == 0 on both sides

	// AllowedFunctionals filters the functional picked by priority; it never
	// changes which functional is picked.
	AllowedFunctionals FunctionalSet

	SameClass       bool
	SameSpaceGroup  bool
	SameCrystalType bool

	// ExcludeCrystalSubstring rejects pairs whose left crystal type contains it.
	ExcludeCrystalSubstring string

	// ScoreLattice computes the lattice mismatch and records crystal type on candidates.
	ScoreLattice bool

	RankBy RankKey
}

// StableLevel is the most stable thermodynamic class.
const StableLevel = 3

// NewStrict returns the strict (slow) rule set: stable, non-magnetic, HSE
// only, same phase, space group and crystal type, no C-containing crystal
// types, ranked by lattice mismatch.
func NewStrict() RuleSet {
	return RuleSet{
		Name:                    Strict,
		RequireStable:           true,
		RequireNonMagnetic:      true,
		AllowedFunctionals:      Functionals(material.HSE),
		SameClass:               true,
		SameSpaceGroup:          true,
		SameCrystalType:         true,
		ExcludeCrystalSubstring: "C",
		ScoreLattice:            true,
		RankBy:                  ByLatticeMismatch,
	}
}

// NewTopInsulators returns the topinsulators rule set: any functional but
// PBE, same phase and space group, ranked by closeness of the area ratio to 1.
func NewTopInsulators() RuleSet {
	return RuleSet{
		Name:               TopInsulators,
		AllowedFunctionals: Functionals(material.HSE, material.GW),
		SameClass:          true,
		SameSpaceGroup:     true,
		RankBy:             ByAreaRatio,
	}
}

// Lookup returns the named rule set.
func Lookup(name string) (RuleSet, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Strict, "slow":
		return NewStrict(), nil
	case TopInsulators:
		return NewTopInsulators(), nil
	}
	return RuleSet{}, fmt.Errorf("%w: %q", ErrUnknownRuleSet, name)
}

// Names lists the known rule sets.
func Names() []string {
	n := []string{Strict, TopInsulators}
	sort.Strings(n)
	return n
}

// Validate checks that the configuration can rank anything.
func (rs RuleSet) Validate() error {
	if rs.AllowedFunctionals == 0 {
		return fmt.Errorf("%w: %s accepts no functional", ErrInvalidRuleSet, rs.Name)
	}
	switch rs.RankBy {
	case ByAreaRatio:
	case ByLatticeMismatch:
		if !rs.ScoreLattice {
			return fmt.Errorf("%w: %s ranks by lattice mismatch without scoring it", ErrInvalidRuleSet, rs.Name)
		}
	default:
		return fmt.Errorf("%w: %s has no ranking key", ErrInvalidRuleSet, rs.Name)
	}
	return nil
}

// Fingerprint identifies the predicate configuration, for cache keys.
func (rs RuleSet) Fingerprint() string {
	desc := fmt.Sprintf("name=%s;stable=%t;nonmag=%t;func=%s;class=%t;spg=%t;crystal=%t;exclude=%q;lattice=%t;rank=%s",
		rs.Name, rs.RequireStable, rs.RequireNonMagnetic, rs.AllowedFunctionals,
		rs.SameClass, rs.SameSpaceGroup, rs.SameCrystalType, rs.ExcludeCrystalSubstring,
		rs.ScoreLattice, rs.RankBy)
	sum := sha256.Sum256([]byte(desc))
	return hex.EncodeToString(sum[:8])
}
