package screening

import (
	"strings"

	"github.com/okian/brokengap/internal/domain/lattice"
	"github.com/okian/brokengap/internal/domain/material"
	"github.com/okian/brokengap/internal/domain/rules"
)

// Evaluator applies one rule set to ordered pairs. It holds no mutable state
// and is safe for concurrent use.
type Evaluator struct {
	rules rules.RuleSet
}

// NewEvaluator returns an evaluator for rs.
func NewEvaluator(rs rules.RuleSet) *Evaluator {
	return &Evaluator{rules: rs}
}

// Rules returns the rule set being applied.
func (e *Evaluator) Rules() rules.RuleSet { return e.rules }

// Evaluate returns the candidate for (left, right) together with
// StageAccepted, or the stage whose predicate rejected the pair.
func (e *Evaluator) Evaluate(left, right *Subject) (Candidate, Stage) {
	l, r := left.Record, right.Record

	var (
		fn     material.Functional
		le, re material.Edges
		found  bool
	)
	for _, f := range material.Priority {
		var lok, rok bool
		le, lok = l.Bands(f)
		re, rok = r.Bands(f)
		if lok && rok {
			fn, found = f, true
			break
		}
	}
	if !found {
		return Candidate{}, StageNoCommonFunctional
	}

	lvbm, lcbm := le.VBM-l.Evac, le.CBM-l.Evac
	rvbm, rcbm := re.VBM-r.Evac, re.CBM-r.Evac

	rs := &e.rules
	switch {
	case rs.RequireStable && !(equals(l.StabilityLevel, rules.StableLevel) && equals(r.StabilityLevel, rules.StableLevel)):
		return Candidate{}, StageStability
	case rs.RequireNonMagnetic && !(equals(l.IsMagnetic, 0) && equals(r.IsMagnetic, 0)):
		return Candidate{}, StageMagnetism
	case !rs.AllowedFunctionals.Has(fn):
		return Candidate{}, StageFunctional
	case rs.SameClass && !material.SameClass(l, r):
		return Candidate{}, StageClass
	case rs.SameSpaceGroup && l.SpgNum != r.SpgNum:
		return Candidate{}, StageSpaceGroup
	case rs.SameCrystalType && !sameString(l.CrystalType, r.CrystalType):
		return Candidate{}, StageCrystalType
	case rs.ExcludeCrystalSubstring != "" && l.CrystalType != nil &&
		strings.Contains(*l.CrystalType, rs.ExcludeCrystalSubstring):
		return Candidate{}, StageCrystalExclusion
	case !(lvbm < lcbm && lcbm < rvbm && rvbm < rcbm):
		return Candidate{}, StageBandOrder
	}

	c := Candidate{
		LeftFormula:  l.Formula,
		LeftUID:      l.UID,
		LeftVBM:      lvbm,
		LeftCBM:      lcbm,
		RightFormula: r.Formula,
		RightUID:     r.UID,
		RightVBM:     rvbm,
		RightCBM:     rcbm,
		Functional:   fn,
		Class:        l.Class,
		SpaceGroup:   l.SpaceGroup,
		SpgNum:       l.SpgNum,
		BandOffset:   rcbm - lvbm,
		AreaRatio:    left.Area / right.Area,
	}
	if rs.ScoreLattice {
		c.CrystalType = l.CrystalType
		dl := lattice.Score(left.Lattice, right.Lattice)
		c.LatticeMismatch = &dl
	}
	return c, StageAccepted
}

// Evaluate applies rs to one ordered pair; ok is false when the pair is rejected.
func Evaluate(left, right *Subject, rs rules.RuleSet) (Candidate, bool) {
	c, stage := NewEvaluator(rs).Evaluate(left, right)
	return c, stage == StageAccepted
}

func equals(p *int, v int) bool {
	return p != nil && *p == v
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
