// Package metrics provides Prometheus metrics for the heterojunction screening pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Screening
	pairsEvaluated     prometheus.Counter
	candidatesAccepted prometheus.Counter
	pairRejections     *prometheus.CounterVec
	rankingDuration    prometheus.Histogram
	rankedCandidates   prometheus.Gauge

	// Record source
	recordsLoaded    prometheus.Gauge
	recordsExcluded  *prometheus.CounterVec
	sourceLoadTime   prometheus.Histogram
	sourceLoadErrors prometheus.Counter

	// Result cache
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	cacheErrors *prometheus.CounterVec

	// Worker pool
	workerActiveCount prometheus.Gauge
	jobLatency        prometheus.Histogram
	jobsQueued        prometheus.Gauge

	// Runs
	runsTotal *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

// jobLatencyBuckets spans 10µs to about 2.6s, in milliseconds.
var jobLatencyBuckets = prometheus.ExponentialBuckets(0.01, 4, 10) //nolint:gochecknoglobals // bucket layout

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure rebuilds the global collectors from opts on a fresh registry,
// which GetRegistry returns from then on. It must be called before metrics
// are recorded concurrently.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(registry)}, opts...)...)
	customRegistry = registry
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "brokengap",
		subsystem:        "screening",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.pairsEvaluated = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("pairs_evaluated_total"),
		Help:        "Total number of ordered record pairs evaluated",
		ConstLabels: labels,
	})

	m.candidatesAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("candidates_accepted_total"),
		Help:        "Total number of pairs accepted as type III candidates",
		ConstLabels: labels,
	})

	m.pairRejections = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("pair_rejections_total"),
			Help:        "Rejected pairs by the rule stage that rejected them",
			ConstLabels: labels,
		},
		[]string{"stage"},
	)

	m.rankingDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ranking_duration_seconds"),
		Help:        "Wall time of a full pair enumeration and sort",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.rankedCandidates = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ranked_candidates"),
		Help:        "Number of candidates in the last ranked list",
		ConstLabels: labels,
	})

	m.recordsLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("records_loaded"),
		Help:        "Number of records returned by the record source in the last run",
		ConstLabels: labels,
	})

	m.recordsExcluded = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("records_excluded_total"),
			Help:        "Records excluded from pairing because of data errors, by field",
			ConstLabels: labels,
		},
		[]string{"field"},
	)

	m.sourceLoadTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("source_load_seconds"),
		Help:        "Time spent loading the record set",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.sourceLoadErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("source_load_errors_total"),
		Help:        "Failed record source loads",
		ConstLabels: labels,
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cache_hits_total"),
		Help:        "Ranked lists served from the result cache",
		ConstLabels: labels,
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cache_misses_total"),
		Help:        "Result cache lookups that fell through to recomputation",
		ConstLabels: labels,
	})

	m.cacheErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("cache_errors_total"),
			Help:        "Result cache failures by operation",
			ConstLabels: labels,
		},
		[]string{"op"},
	)

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_active_count"),
		Help:        "Workers currently enumerating pairs",
		ConstLabels: labels,
	})

	m.jobLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("job_latency_milliseconds"),
		Help:        "Time to evaluate one left record against the whole set",
		Buckets:     jobLatencyBuckets,
		ConstLabels: labels,
	})

	m.jobsQueued = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("jobs_queued"),
		Help:        "Jobs waiting in the enumeration queue",
		ConstLabels: labels,
	})

	m.runsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("runs_total"),
			Help:        "Pipeline runs by rule set and outcome",
			ConstLabels: labels,
		},
		[]string{"rule_set", "outcome"},
	)
}

// RecordPairsEvaluated adds n evaluated pairs.
func RecordPairsEvaluated(n int) {
	if globalManager.enabled {
		globalManager.pairsEvaluated.Add(float64(n))
	}
}

// RecordCandidatesAccepted adds n accepted candidates.
func RecordCandidatesAccepted(n int) {
	if globalManager.enabled {
		globalManager.candidatesAccepted.Add(float64(n))
	}
}

// RecordPairRejections adds n rejections for a rule stage.
func RecordPairRejections(stage string, n int) {
	if globalManager.enabled {
		globalManager.pairRejections.WithLabelValues(stage).Add(float64(n))
	}
}

// RecordRankingDuration observes one full ranking.
func RecordRankingDuration(d time.Duration) {
	if globalManager.enabled {
		globalManager.rankingDuration.Observe(d.Seconds())
	}
}

// UpdateRankedCandidates sets the size of the last ranked list.
func UpdateRankedCandidates(n int) {
	if globalManager.enabled {
		globalManager.rankedCandidates.Set(float64(n))
	}
}

// UpdateRecordsLoaded sets the size of the last loaded record set.
func UpdateRecordsLoaded(n int) {
	if globalManager.enabled {
		globalManager.recordsLoaded.Set(float64(n))
	}
}

// RecordRecordExcluded counts one record excluded because of field.
func RecordRecordExcluded(field string) {
	if globalManager.enabled {
		globalManager.recordsExcluded.WithLabelValues(field).Inc()
	}
}

// RecordSourceLoad observes a record set load.
func RecordSourceLoad(d time.Duration) {
	if globalManager.enabled {
		globalManager.sourceLoadTime.Observe(d.Seconds())
	}
}

// RecordSourceLoadError counts a failed record set load.
func RecordSourceLoadError() {
	if globalManager.enabled {
		globalManager.sourceLoadErrors.Inc()
	}
}

// RecordCacheHit counts a cache hit.
func RecordCacheHit() {
	if globalManager.enabled {
		globalManager.cacheHits.Inc()
	}
}

// RecordCacheMiss counts a cache miss.
func RecordCacheMiss() {
	if globalManager.enabled {
		globalManager.cacheMisses.Inc()
	}
}

// RecordCacheError counts a cache failure for op ("load" or "store").
func RecordCacheError(op string) {
	if globalManager.enabled {
		globalManager.cacheErrors.WithLabelValues(op).Inc()
	}
}

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	if globalManager.enabled {
		globalManager.workerActiveCount.Set(float64(count))
	}
}

// RecordJobLatency observes one enumeration job in milliseconds.
func RecordJobLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.jobLatency.Observe(latencyMs)
	}
}

// UpdateJobsQueued sets the current queue depth.
func UpdateJobsQueued(n int) {
	if globalManager.enabled {
		globalManager.jobsQueued.Set(float64(n))
	}
}

// RecordRun counts a finished pipeline run.
func RecordRun(ruleSet, outcome string) {
	if globalManager.enabled {
		globalManager.runsTotal.WithLabelValues(ruleSet, outcome).Inc()
	}
}

// GetRegistry returns the registry holding the global collectors.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
