package queue

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "jobs"

// Metrics is an Observer that records job lifecycle events as Prometheus metrics.
type Metrics struct {
	enqueued  *prometheus.CounterVec
	completed *prometheus.CounterVec
	retried   *prometheus.CounterVec
	failed    *prometheus.CounterVec
	inFlight  prometheus.Gauge
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the job metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		enqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "enqueued_total",
			Help:      "Total jobs submitted to the engine.",
		}, []string{"type", "priority"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "completed_total",
			Help:      "Jobs completed successfully.",
		}, []string{"type"}),
		retried: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "retried_total",
			Help:      "Failed attempts scheduled for another try.",
		}, []string{"type"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "failed_total",
			Help:      "Jobs that failed terminally.",
		}, []string{"type"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "in_flight",
			Help:      "Jobs currently executing.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "attempt_duration_seconds",
			Help:      "Duration of job attempts by outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type", "outcome"}),
	}

	for _, c := range []prometheus.Collector{m.enqueued, m.completed, m.retried, m.failed, m.inFlight, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) JobEnqueued(job Job) {
	m.enqueued.WithLabelValues(job.Type, string(job.Priority)).Inc()
}

func (m *Metrics) JobStarted(Job) {
	m.inFlight.Inc()
}

func (m *Metrics) JobCompleted(job Job, d time.Duration) {
	m.inFlight.Dec()
	m.completed.WithLabelValues(job.Type).Inc()
	m.duration.WithLabelValues(job.Type, "completed").Observe(d.Seconds())
}

// JobRetrying has no attempt duration, the retry is observed after the attempt ended.
func (m *Metrics) JobRetrying(job Job, _ time.Duration) {
	m.inFlight.Dec()
	m.retried.WithLabelValues(job.Type).Inc()
}

func (m *Metrics) JobFailed(job Job, d time.Duration) {
	m.inFlight.Dec()
	m.failed.WithLabelValues(job.Type).Inc()
	m.duration.WithLabelValues(job.Type, "failed").Observe(d.Seconds())
}

// StatsSource is implemented by Engine.
type StatsSource interface {
	Stats() Stats
}

// statsCollector exports a Stats snapshot on every scrape.
type statsCollector struct {
	src     StatsSource
	jobs    *prometheus.Desc
	running *prometheus.Desc
}

// NewStatsCollector returns a collector exposing job counts per status
// and whether the dispatch loop is running.
func NewStatsCollector(src StatsSource) prometheus.Collector {
	return &statsCollector{
		src: src,
		jobs: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "", "stored"),
			"Jobs held by the store by status.",
			[]string{"status"}, nil,
		),
		running: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "", "engine_running"),
			"1 when the dispatch loop is running.",
			nil, nil,
		),
	}
}

func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.jobs
	ch <- c.running
}

func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.src.Stats()

	for status, n := range map[Status]int{
		StatusPending:    st.Pending,
		StatusProcessing: st.Processing,
		StatusCompleted:  st.Completed,
		StatusFailed:     st.Failed,
		StatusRetrying:   st.Retrying,
	} {
		ch <- prometheus.MustNewConstMetric(c.jobs, prometheus.GaugeValue, float64(n), string(status))
	}

	running := 0.0
	if st.Running {
		running = 1
	}
	ch <- prometheus.MustNewConstMetric(c.running, prometheus.GaugeValue, running)
}
