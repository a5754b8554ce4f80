// Package app wires a record source, the ranking engine and the result cache
// into one screening run.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/brokengap/internal/adapters/cache"
	"github.com/okian/brokengap/internal/adapters/source"
	"github.com/okian/brokengap/internal/domain/ranking"
	"github.com/okian/brokengap/internal/domain/rules"
	"github.com/okian/brokengap/internal/domain/screening"
	"github.com/okian/brokengap/pkg/logger"
	"github.com/okian/brokengap/pkg/metrics"
)

// Run outcomes reported to metrics.
const (
	outcomeComputed = "computed"
	outcomeCached   = "cached"
	outcomeFailed   = "failed"
)

// Pipeline screens one catalogue with one rule set.
type Pipeline struct {
	source   source.Source
	cache    cache.Cache
	executor ranking.Executor
	rules    rules.RuleSet
	engine   *ranking.Engine

	logger logger.Logger
}

// New builds a pipeline. The cache is optional; without an executor pairs
// are enumerated sequentially.
func New(src source.Source, rs rules.RuleSet, opts ...Option) (*Pipeline, error) {
	if src == nil {
		return nil, errors.New("pipeline needs a record source")
	}
	p := &Pipeline{
		source:   src,
		rules:    rs,
		executor: ranking.Sequential{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("pipeline")
	}

	engine, err := ranking.NewEngine(rs, ranking.WithExecutor(p.executor))
	if err != nil {
		return nil, err
	}
	p.engine = engine
	return p, nil
}

// Run loads the record set, serves the ranked list from the cache when it
// holds one for the same records and rules, and otherwise ranks every pair
// and stores the result. Only a record source failure or cancellation is
// returned as an error; cache failures are reported on Result.CacheErr.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{
		RunID:    uuid.New(),
		RuleSet:  p.rules.Name,
		SourceID: p.source.ID(),
	}
	log := p.logger

	loadStart := time.Now()
	records, err := p.source.Load(ctx)
	metrics.RecordSourceLoad(time.Since(loadStart))
	if err != nil {
		metrics.RecordSourceLoadError()
		metrics.RecordRun(p.rules.Name, outcomeFailed)
		log.Error(ctx, "record source failed", logger.String("source", res.SourceID), logger.Error(err))
		return nil, fmt.Errorf("load records from %s: %w", res.SourceID, err)
	}
	res.Records = len(records)
	metrics.UpdateRecordsLoaded(len(records))
	log.Info(ctx, "records loaded",
		logger.String("run", res.RunID.String()),
		logger.String("source", res.SourceID),
		logger.Int("records", len(records)),
		logger.Duration("took", time.Since(loadStart)),
	)

	subjects, excluded := screening.Prepare(records, p.rules)
	res.Excluded = excluded
	for _, de := range excluded {
		metrics.RecordRecordExcluded(de.Field)
		log.Warn(ctx, "record excluded",
			logger.String("uid", de.UID),
			logger.String("field", de.Field),
			logger.Error(de.Err),
		)
	}

	res.Key = cache.Key(res.SourceID, cache.Digest(records), p.rules)
	if p.cache != nil {
		if cs, ok := p.lookup(ctx, log, res); ok {
			res.Candidates = cs
			res.FromCache = true
			res.Took = time.Since(start)
			metrics.UpdateRankedCandidates(len(cs))
			metrics.RecordRun(p.rules.Name, outcomeCached)
			log.Info(ctx, "ranked list served from cache",
				logger.String("run", res.RunID.String()),
				logger.Int("candidates", len(cs)),
				logger.String("key", res.Key),
			)
			return res, nil
		}
	}

	rep, err := p.engine.Rank(ctx, subjects)
	if err != nil {
		metrics.RecordRun(p.rules.Name, outcomeFailed)
		return nil, err
	}
	res.Candidates = rep.Candidates
	res.Tally = rep.Tally
	recordRanking(&rep)
	log.Info(ctx, "candidates ranked",
		logger.String("run", res.RunID.String()),
		logger.Int("subjects", len(subjects)),
		logger.Int("pairs", rep.Pairs()),
		logger.Int("candidates", len(rep.Candidates)),
		logger.Duration("took", rep.Took),
	)

	if p.cache != nil {
		if err := p.cache.Store(ctx, res.Key, rep.Candidates); err != nil {
			metrics.RecordCacheError("store")
			log.Warn(ctx, "cache store failed", logger.Error(err))
			res.CacheErr = errors.Join(res.CacheErr, err)
		}
	}

	res.Took = time.Since(start)
	metrics.RecordRun(p.rules.Name, outcomeComputed)
	return res, nil
}

func (p *Pipeline) lookup(ctx context.Context, log logger.Logger, res *Result) ([]screening.Candidate, bool) {
	cs, ok, err := p.cache.Load(ctx, res.Key)
	switch {
	case err != nil:
		metrics.RecordCacheError("load")
		log.Warn(ctx, "cache load failed, recomputing", logger.Error(err))
		res.CacheErr = err
		return nil, false
	case !ok:
		metrics.RecordCacheMiss()
		log.Debug(ctx, "cache miss", logger.String("key", res.Key))
		return nil, false
	default:
		metrics.RecordCacheHit()
		return cs, true
	}
}

func recordRanking(rep *ranking.Report) {
	metrics.RecordPairsEvaluated(rep.Pairs())
	metrics.RecordCandidatesAccepted(len(rep.Candidates))
	for _, s := range screening.Stages() {
		if n := rep.Tally.Count(s); n > 0 {
			metrics.RecordPairRejections(s.String(), n)
		}
	}
	metrics.RecordRankingDuration(rep.Took)
	metrics.UpdateRankedCandidates(len(rep.Candidates))
}
