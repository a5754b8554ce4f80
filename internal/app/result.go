package app

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/brokengap/internal/domain/ranking"
	"github.com/okian/brokengap/internal/domain/screening"
)

// Result is the outcome of one run.
type Result struct {
	RunID    uuid.UUID
	RuleSet  string
	SourceID string

	// Key is the cache key of the ranked list.
	Key string

	Candidates []screening.Candidate
	Records    int
	Excluded   []*screening.DataError

	// Tally counts pair outcomes by stage. It is empty when FromCache is set.
	Tally screening.Tally

	FromCache bool

	// CacheErr holds recoverable cache failures of the run.
	CacheErr error

	Took time.Duration
}

// SpaceGroups returns the number of space groups represented in Candidates.
func (r *Result) SpaceGroups() int {
	return len(ranking.BestPerSpaceGroup(r.Candidates))
}

// Subjects returns how many records were paired.
func (r *Result) Subjects() int {
	return r.Records - len(r.Excluded)
}
