package app

import (
	"github.com/okian/brokengap/internal/adapters/cache"
	"github.com/okian/brokengap/internal/domain/ranking"
	"github.com/okian/brokengap/pkg/logger"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithCache sets the ranked-list cache.
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// WithExecutor sets how pair enumeration jobs are run.
func WithExecutor(x ranking.Executor) Option {
	return func(p *Pipeline) {
		if x != nil {
			p.executor = x
		}
	}
}

// WithLogger sets a custom logger for the pipeline.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}
