// Package metrics provides Prometheus metrics for teamrank runs.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// File outcome label values.
const (
	FileLoaded         = "loaded"
	FileUnreadable     = "unreadable"
	FileSchemaMismatch = "schema_mismatch"
	FileEmpty          = "empty"
)

// Row outcome label values.
const (
	RowAccepted  = "accepted"
	RowRejected  = "rejected"
	RowDuplicate = "duplicate"
)

// Manager manages all Prometheus metrics for a run.
type Manager struct {
	namespace     string
	subsystem     string
	pointsBuckets []float64
	registry      prometheus.Registerer

	filesTotal    *prometheus.CounterVec
	rowsTotal     *prometheus.CounterVec
	pointsAwarded prometheus.Histogram

	contests     prometheus.Gauge
	participants prometheus.Gauge
	teams        prometheus.Gauge
	teamSize     prometheus.Gauge

	runDuration prometheus.Gauge
	lastRunUnix prometheus.Gauge
	runsTotal   *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:     "teamrank",
		subsystem:     "run",
		pointsBuckets: []float64{1, 5, 10, 25, 50, 100, 150, 200, 300, 500},
		registry:      prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.filesTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "files_total",
		Help:      "Contest files seen, by outcome",
	}, []string{"outcome"})

	m.rowsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_total",
		Help:      "Standings rows seen, by outcome",
	}, []string{"outcome"})

	m.pointsAwarded = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "points_awarded",
		Help:      "Distribution of per-contest points awarded",
		Buckets:   m.pointsBuckets,
	})

	m.contests = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "contests",
		Help:      "Contests that contributed standings in the last run",
	})

	m.participants = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "participants",
		Help:      "Distinct participants in the last run",
	})

	m.teams = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teams",
		Help:      "Teams formed in the last run",
	})

	m.teamSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "team_size",
		Help:      "Team size used in the last run",
	})

	m.runDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duration_seconds",
		Help:      "Wall time of the last run",
	})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished",
	})

	m.runsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "completed_total",
		Help:      "Runs by result",
	}, []string{"result"})
}

// RecordFile increments the file counter for an outcome.
func RecordFile(outcome string) {
	globalManager.filesTotal.WithLabelValues(outcome).Inc()
}

// RecordRows adds n rows with the given outcome.
func RecordRows(outcome string, n int) {
	if n <= 0 {
		return
	}
	globalManager.rowsTotal.WithLabelValues(outcome).Add(float64(n))
}

// RecordPoints observes one awarded per-contest score.
func RecordPoints(points int) {
	globalManager.pointsAwarded.Observe(float64(points))
}

// UpdateContests sets the number of contributing contests.
func UpdateContests(count int) {
	globalManager.contests.Set(float64(count))
}

// UpdateParticipants sets the number of participants.
func UpdateParticipants(count int) {
	globalManager.participants.Set(float64(count))
}

// UpdateTeams sets the number of teams and the team size.
func UpdateTeams(count, size int) {
	globalManager.teams.Set(float64(count))
	globalManager.teamSize.Set(float64(size))
}

// RecordRun records the outcome and duration of a run.
func RecordRun(result string, seconds float64, finishedUnix int64) {
	globalManager.runsTotal.WithLabelValues(result).Inc()
	globalManager.runDuration.Set(seconds)
	globalManager.lastRunUnix.Set(float64(finishedUnix))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the registry in the text exposition format, for the
// node_exporter textfile collector. The parent directory is created.
func WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
		}
	}
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}
