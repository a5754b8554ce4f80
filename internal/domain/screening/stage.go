package screening

// Stage names the rule that decided a pair.
type Stage int

// Stages in evaluation order.
const (
	StageAccepted Stage = iota
	StageNoCommonFunctional
	StageStability
	StageMagnetism
	StageFunctional
	StageClass
	StageSpaceGroup
	StageCrystalType
	StageCrystalExclusion
	StageBandOrder
	stageCount
)

// Stages lists the rejection stages.
func Stages() []Stage {
	out := make([]Stage, 0, int(stageCount)-1)
	for s := StageNoCommonFunctional; s < stageCount; s++ {
		out = append(out, s)
	}
	return out
}

func (s Stage) String() string {
	switch s {
	case StageAccepted:
		return "accepted"
	case StageNoCommonFunctional:
		return "no_common_functional"
	case StageStability:
		return "stability"
	case StageMagnetism:
		return "magnetism"
	case StageFunctional:
		return "functional"
	case StageClass:
		return "class"
	case StageSpaceGroup:
		return "space_group"
	case StageCrystalType:
		return "crystal_type"
	case StageCrystalExclusion:
		return "crystal_exclusion"
	case StageBandOrder:
		return "band_order"
	default:
		return "unknown"
	}
}

// Tally counts pair outcomes by stage.
type Tally [stageCount]int

// Add counts one outcome.
func (t *Tally) Add(s Stage) { t[s]++ }

// Merge adds another tally into t.
func (t *Tally) Merge(o *Tally) {
	for i := range t {
		t[i] += o[i]
	}
}

// Count returns the outcomes recorded for s.
func (t *Tally) Count(s Stage) int { return t[s] }

// Total returns every recorded outcome.
func (t *Tally) Total() int {
	var n int
	for _, v := range t {
		n += v
	}
	return n
}
