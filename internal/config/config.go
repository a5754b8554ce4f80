// Package config defines process configuration and its loading from
// defaults, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Source kinds.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// RuleSet names the acceptance rule set: strict or topinsulators.
	RuleSet string `koanf:"rule_set" validate:"oneof=strict slow topinsulators"`

	// WorkerCount sets the number of enumeration workers. 0 ranks sequentially.
	WorkerCount int `koanf:"worker_count" validate:"gte=0"`

	// QueueSize bounds the job queue feeding the workers. 0 picks a size from WorkerCount.
	QueueSize int `koanf:"queue_size" validate:"gte=0"`

	// SourceKind selects the record source: file or postgres.
	SourceKind string `koanf:"source_kind" validate:"oneof=file postgres"`

	// SourcePath is the JSON row export read by the file source.
	SourcePath string `koanf:"source_path" validate:"required_if=SourceKind file"`

	// DatabaseURL and SourceTable configure the postgres source.
	DatabaseURL string `koanf:"database_url" validate:"required_if=SourceKind postgres"`
	SourceTable string `koanf:"source_table" validate:"required_if=SourceKind postgres"`

	// CacheEnabled turns the ranked-list cache on; entries live in CacheDir.
	CacheEnabled bool   `koanf:"cache_enabled"`
	CacheDir     string `koanf:"cache_dir" validate:"required_if=CacheEnabled true"`

	// MetricsAddr, when set, serves /metrics during the run, e.g. ":9090".
	// Metrics are recorded only when it is set.
	MetricsAddr string `koanf:"metrics_addr" validate:"omitempty,hostname_port"`

	// MetricsNamespace and MetricsPrefix shape the exported metric names:
	// <namespace>_screening_<prefix>_<name>.
	MetricsNamespace string `koanf:"metrics_namespace" validate:"metric_name"`
	MetricsPrefix    string `koanf:"metrics_prefix" validate:"omitempty,metric_name"`

	// TopPerGroup limits the per-space-group drill-down printed after a run. 0 disables it.
	TopPerGroup int `koanf:"top_per_group" validate:"gte=0"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		RuleSet:     "strict",
		WorkerCount: runtime.NumCPU(),
		SourceKind:  SourceFile,
		SourcePath:  "c2db.json",
		SourceTable: "materials",
		CacheDir:    ".brokengap-cache",

		MetricsNamespace: "brokengap",
	}
}

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("metric_name", func(fl validator.FieldLevel) bool {
		return metricName.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks field constraints. Failures wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s %s", fe.Field(), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}
