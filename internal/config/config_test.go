package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/brokengap/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.RuleSet, convey.ShouldEqual, "strict")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.SourceKind, convey.ShouldEqual, config.SourceFile)
			convey.So(cfg.SourceTable, convey.ShouldEqual, "materials")
			convey.So(cfg.CacheEnabled, convey.ShouldBeFalse)
			convey.So(cfg.MetricsAddr, convey.ShouldBeEmpty)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "brokengap")
			convey.So(cfg.MetricsPrefix, convey.ShouldBeEmpty)
		})

		convey.Convey("Then it should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid fields", t, func() {
		cases := map[string]func(c *config.Config){
			"unknown rule set":     func(c *config.Config) { c.RuleSet = "loose" },
			"unknown log format":   func(c *config.Config) { c.LogFormat = "xml" },
			"unknown log level":    func(c *config.Config) { c.LogLevel = "loud" },
			"negative workers":     func(c *config.Config) { c.WorkerCount = -1 },
			"negative queue":       func(c *config.Config) { c.QueueSize = -5 },
			"unknown source":       func(c *config.Config) { c.SourceKind = "s3" },
			"file without path":    func(c *config.Config) { c.SourcePath = "" },
			"postgres without url": func(c *config.Config) { c.SourceKind = config.SourcePostgres },
			"cache without dir":    func(c *config.Config) { c.CacheEnabled, c.CacheDir = true, "" },
			"bad metrics address":  func(c *config.Config) { c.MetricsAddr = "no port" },
			"negative top":         func(c *config.Config) { c.TopPerGroup = -1 },
			"empty namespace":      func(c *config.Config) { c.MetricsNamespace = "" },
			"dashed namespace":     func(c *config.Config) { c.MetricsNamespace = "broken-gap" },
			"numeric prefix":       func(c *config.Config) { c.MetricsPrefix = "2d" },
		}

		for name, mutate := range cases {
			convey.Convey("When the config has "+name, func() {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()

				convey.Convey("Then validation should fail with ErrInvalidConfig", func() {
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}

		convey.Convey("When a postgres config is complete", func() {
			cfg := config.New()
			cfg.SourceKind = config.SourcePostgres
			cfg.SourcePath = ""
			cfg.DatabaseURL = "postgres://localhost/c2db"
			cfg.MetricsAddr = ":9090"
			cfg.MetricsNamespace = "c2db_screen"
			cfg.MetricsPrefix = "v2"

			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the error message is read", func() {
			cfg := config.New()
			cfg.RuleSet = "loose"
			convey.So(cfg.Validate().Error(), convey.ShouldContainSubstring, "RuleSet: oneof")
		})
	})
}
