package reporter

import (
	"bytes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/hemantjanrao/playwrightFW/framework"
)

const MetricsFileName = "metrics.prom"

// Metrics collects prometheus metrics for a run and writes them in the text exposition format
// when the run ends.
type Metrics struct {
	writer       *Writer
	registry     *prometheus.Registry
	testsTotal   *prometheus.CounterVec
	stepsTotal   *prometheus.CounterVec
	retriesTotal prometheus.Counter
	errorsTotal  prometheus.Counter
	testDuration *prometheus.HistogramVec
	stepDuration *prometheus.HistogramVec
	workers      prometheus.Gauge
	scheduled    prometheus.Gauge

	path string
	err  error
}

func NewMetrics(w *Writer) *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		writer:   w,
		registry: registry,
		testsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "e2e_tests_total", Help: "Test attempts by final status"},
			[]string{"suite", "status"},
		),
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "e2e_steps_total", Help: "Logged steps by status"},
			[]string{"status"},
		),
		retriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "e2e_retries_total", Help: "Test attempts that were retries"},
		),
		errorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "e2e_runner_errors_total", Help: "Errors not attributable to a test"},
		),
		testDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "e2e_test_duration_seconds",
				Help:    "Test attempt duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"suite", "status"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "e2e_step_duration_seconds",
				Help:    "Step duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		workers: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "e2e_workers", Help: "Parallel workers used by the run"},
		),
		scheduled: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "e2e_tests_scheduled", Help: "Tests selected for the run"},
		),
	}
	registry.MustRegister(m.testsTotal, m.stepsTotal, m.retriesTotal, m.errorsTotal,
		m.testDuration, m.stepDuration, m.workers, m.scheduled)
	return m
}

func (m *Metrics) OnBegin(totalTests, workers int) {
	m.scheduled.Set(float64(totalTests))
	m.workers.Set(float64(workers))
}

func (m *Metrics) OnTestBegin(framework.TestID) {}

func (m *Metrics) OnTestEnd(outcome framework.TestOutcome) {
	status := string(outcome.Status)
	m.testsTotal.WithLabelValues(outcome.ID.Suite, status).Inc()
	m.testDuration.WithLabelValues(outcome.ID.Suite, status).Observe(outcome.Duration.Seconds())
	if outcome.Retry > 0 {
		m.retriesTotal.Inc()
	}
	for _, s := range outcome.Steps {
		m.stepsTotal.WithLabelValues(string(s.Status)).Inc()
		m.stepDuration.WithLabelValues(string(s.Status)).Observe(s.Stop.Sub(s.Start).Seconds())
	}
}

func (m *Metrics) OnEnd(framework.RunStatus) {
	m.path, m.err = m.Write()
}

func (m *Metrics) OnError(error) {
	m.errorsTotal.Inc()
}

// Write writes all metrics to metrics.prom in the output directory.
func (m *Metrics) Write() (string, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := enc.Encode(family); err != nil {
			return "", err
		}
	}
	return m.writer.WriteBytes(MetricsFileName, buf.Bytes())
}

// Result returns what the last write at the end of the run produced.
func (m *Metrics) Result() (string, error) {
	return m.path, m.err
}
