package cache

import (
	"time"

	"github.com/okian/brokengap/pkg/logger"
)

// Option configures a File cache.
type Option func(*File)

// WithRuleSetName records the rule set name in stored entries.
func WithRuleSetName(name string) Option {
	return func(f *File) {
		f.ruleSet = name
	}
}

// WithClock sets the time source for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *File) {
		if now != nil {
			f.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(f *File) {
		if l != nil {
			f.logger = l
		}
	}
}
