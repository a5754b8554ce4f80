// Package ranking enumerates every ordered pair of prepared records, keeps the
// accepted candidates and orders them by the rule set's ranking key.
package ranking

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/okian/brokengap/internal/domain/rules"
	"github.com/okian/brokengap/internal/domain/screening"
)

// Report is the outcome of one ranking.
type Report struct {
	RuleSet    string
	Candidates []screening.Candidate
	Tally      screening.Tally
	Records    int
	Took       time.Duration
}

// Pairs returns the number of ordered pairs evaluated.
func (r *Report) Pairs() int { return r.Tally.Total() }

// Engine ranks candidates for one rule set.
type Engine struct {
	evaluator *screening.Evaluator
	executor  Executor
}

// NewEngine validates rs and returns an engine for it.
func NewEngine(rs rules.RuleSet, opts ...Option) (*Engine, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		evaluator: screening.NewEvaluator(rs),
		executor:  Sequential{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// RuleSet returns the rule set the engine applies.
func (e *Engine) RuleSet() rules.RuleSet { return e.evaluator.Rules() }

// Rank evaluates all n² ordered pairs of subjects, self pairs included, and
// returns the accepted candidates sorted by the ranking key. Ties keep
// enumeration order (left row, then right row), so the result does not
// depend on the executor.
func (e *Engine) Rank(ctx context.Context, subjects []screening.Subject) (Report, error) {
	start := time.Now()
	n := len(subjects)

	rows := make([][]screening.Candidate, n)
	tallies := make([]screening.Tally, n)

	err := e.executor.Execute(ctx, n, func(ctx context.Context, i int) error {
		left := &subjects[i]
		tally := &tallies[i]
		var row []screening.Candidate
		for j := range subjects {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, stage := e.evaluator.Evaluate(left, &subjects[j])
			tally.Add(stage)
			if stage == screening.StageAccepted {
				row = append(row, c)
			}
		}
		rows[i] = row
		return nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("rank %s: %w", e.evaluator.Rules().Name, err)
	}

	rep := Report{
		RuleSet: e.evaluator.Rules().Name,
		Records: n,
	}
	for i := range rows {
		rep.Candidates = append(rep.Candidates, rows[i]...)
		rep.Tally.Merge(&tallies[i])
	}
	Sort(rep.Candidates, e.evaluator.Rules().RankBy)
	rep.Took = time.Since(start)
	return rep, nil
}

// Sort orders candidates in place by key, ascending and stable.
func Sort(cs []screening.Candidate, key rules.RankKey) {
	slices.SortStableFunc(cs, func(a, b screening.Candidate) int {
		return cmp.Compare(Key(&a, key), Key(&b, key))
	})
}

// Key returns the sort key of c: the lattice mismatch, or the area ratio
// folded so that R and 1/R rank the same.
func Key(c *screening.Candidate, key rules.RankKey) float64 {
	switch key {
	case rules.ByLatticeMismatch:
		if c.LatticeMismatch == nil {
			return 0
		}
		return *c.LatticeMismatch
	case rules.ByAreaRatio:
		if c.AreaRatio >= 1 {
			return c.AreaRatio
		}
		return 1 / c.AreaRatio
	default:
		return 0
	}
}
