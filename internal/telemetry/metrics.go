package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// StepMetrics records per-step run outcomes.
type StepMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	rows     *prometheus.GaugeVec
}

func NewStepMetrics(reg prometheus.Registerer) (*StepMetrics, error) {
	m := &StepMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tabula_step_duration_seconds",
			Help:    "Duration of pipeline steps in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabula_step_runs_total",
			Help: "Pipeline step executions by outcome.",
		}, []string{"step", "status"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tabula_step_output_rows",
			Help: "Row count of the most recent step output.",
		}, []string{"step"}),
	}
	for _, c := range []prometheus.Collector{m.duration, m.runs, m.rows} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "telemetry: register")
		}
	}
	return m, nil
}

// Observe records one step run. A nil receiver is a no-op.
func (m *StepMetrics) Observe(step string, took time.Duration, rows int, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.duration.WithLabelValues(step).Observe(took.Seconds())
	m.runs.WithLabelValues(step, status).Inc()
	if err == nil {
		m.rows.WithLabelValues(step).Set(float64(rows))
	}
}

// Expose serves g on :port/metrics in the background.
func Expose(port int, g prometheus.Gatherer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	go func() {
		_ = http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
	}()
}

// Push sends everything in g to a Pushgateway under job.
func Push(url, job string, g prometheus.Gatherer) error {
	if err := push.New(url, job).Gatherer(g).Push(); err != nil {
		return errors.Wrap(err, "telemetry: push")
	}
	return nil
}
