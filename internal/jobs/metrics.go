package jobmetrics

import (
	"errors"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes recorded in the status label.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	// StatusDropped marks tasks rejected with asynq.SkipRetry. They never
	// reach the retry queue and do not count as failures.
	StatusDropped = "dropped"
)

// Metrics exposes Prometheus collectors for the audit worker.
type Metrics struct {
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	pruned   prometheus.Counter
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the job metrics against registerer, or against the
// default Prometheus registerer once per process when it is nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

// Tracker instruments a single task execution.
type Tracker struct {
	metrics  *Metrics
	taskType string
	start    time.Time
}

// Track starts timing a task of the given type. A nil Metrics yields a
// tracker that records nothing.
func (m *Metrics) Track(taskType string) *Tracker {
	return &Tracker{metrics: m, taskType: taskType, start: time.Now()}
}

// End records the outcome of the run and returns err unchanged so handlers
// can write `return tracker.End(err)`.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.taskType == "" {
		return err
	}
	status := Status(err)
	if status == StatusFailure {
		t.metrics.failures.WithLabelValues(t.taskType).Inc()
	}
	t.metrics.runs.WithLabelValues(t.taskType, status).Inc()
	t.metrics.duration.WithLabelValues(t.taskType).Observe(time.Since(t.start).Seconds())
	return err
}

// Status classifies a handler result.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, asynq.SkipRetry):
		return StatusDropped
	default:
		return StatusFailure
	}
}

// AddPruned counts audit rows removed by retention.
func (m *Metrics) AddPruned(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.pruned.Add(float64(n))
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edumatrix_jobs_total",
			Help: "Task executions by task type and status.",
		}, []string{"job", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edumatrix_jobs_failures_total",
			Help: "Task executions that failed and will be retried.",
		}, []string{"job"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "edumatrix_job_duration_seconds",
			Help:    "Task execution time in seconds.",
			Buckets: []float64{.005, .01, .05, .1, .5, 1, 5, 30},
		}, []string{"job"}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edumatrix_audit_rows_pruned_total",
			Help: "Audit log rows deleted by the retention job.",
		}),
	}
	registerer.MustRegister(m.runs, m.failures, m.duration, m.pruned)
	return m
}
