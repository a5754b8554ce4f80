package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/okian/brokengap/internal/adapters/cache"
	"github.com/okian/brokengap/internal/adapters/mq/worker"
	"github.com/okian/brokengap/internal/adapters/source"
	"github.com/okian/brokengap/internal/app"
	"github.com/okian/brokengap/internal/config"
	"github.com/okian/brokengap/internal/domain/rules"
	"github.com/okian/brokengap/pkg/logger"
	"github.com/okian/brokengap/pkg/metrics"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Screen the configured catalogue and print the ranked pairs",
	Long: `Loads the record set from the configured source, evaluates every ordered pair
under the selected rule set and prints a run summary followed by the best pair
of each space group.

Configuration comes from defaults, the YAML file named by BROKENGAP_CONFIG and
BROKENGAP_* environment variables. Flags override the loaded values.`,
	RunE: runScreening,
}

var (
	runRuleSet    string
	runSourcePath string
	runNoCache    bool
)

func init() {
	runCommand.Flags().StringVarP(&runRuleSet, "rule-set", "r", "", "Rule set: strict or topinsulators (defaults to rule_set)")
	runCommand.Flags().StringVarP(&runSourcePath, "source", "s", "", "JSON row export to read (selects the file source)")
	runCommand.Flags().BoolVar(&runNoCache, "no-cache", false, "Ignore and do not update the result cache")

	rootCmd.AddCommand(runCommand)
}

func runScreening(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := applyFlags(cfg); err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	log := logger.Get()

	metrics.Configure(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithMetricPrefix(cfg.MetricsPrefix),
		metrics.WithCustomLabels(map[string]string{"source_kind": cfg.SourceKind}),
		metrics.WithMetricsEnabled(cfg.MetricsAddr != ""),
	)

	rs, err := rules.Lookup(cfg.RuleSet)
	if err != nil {
		return err
	}

	src, closeSource, err := openSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSource()

	opts := []app.Option{app.WithLogger(log.Named("pipeline"))}
	if cfg.CacheEnabled {
		opts = append(opts, app.WithCache(cache.NewFile(cfg.CacheDir,
			cache.WithRuleSetName(rs.Name),
			cache.WithLogger(log.Named("cache")),
		)))
	}
	if cfg.WorkerCount > 0 {
		opts = append(opts, app.WithExecutor(worker.NewPool(cfg.WorkerCount,
			worker.WithQueueSize(cfg.QueueSize),
			worker.WithPoolLogger(log.Named("worker")),
		)))
	}

	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(ctx, cfg.MetricsAddr, log)
		defer shutdown()
	}

	p, err := app.New(src, rs, opts...)
	if err != nil {
		return err
	}
	res, err := p.Run(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := printSummary(out, res); err != nil {
		return err
	}
	return printGroups(out, res.Candidates, rs.ScoreLattice, cfg.TopPerGroup)
}

func applyFlags(cfg *config.Config) error {
	if runRuleSet != "" {
		cfg.RuleSet = runRuleSet
	}
	if runSourcePath != "" {
		cfg.SourceKind = config.SourceFile
		cfg.SourcePath = runSourcePath
	}
	if runNoCache {
		cfg.CacheEnabled = false
	}
	return cfg.Validate()
}

func openSource(ctx context.Context, cfg *config.Config, log logger.Logger) (source.Source, func(), error) {
	switch cfg.SourceKind {
	case config.SourcePostgres:
		pg, err := source.Connect(ctx, cfg.DatabaseURL,
			source.WithTable(cfg.SourceTable),
			source.WithPostgresLogger(log.Named("source")),
		)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return source.NewFile(cfg.SourcePath, source.WithFileLogger(log.Named("source"))), func() {}, nil
	}
}

// serveMetrics exposes the screening collectors on addr until the returned
// function is called.
func serveMetrics(ctx context.Context, addr string, log logger.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "serving metrics", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server failed", logger.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn(ctx, "metrics server shutdown failed", logger.Error(fmt.Errorf("shutdown %s: %w", addr, err)))
		}
	}
}
