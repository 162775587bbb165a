// Package metrics records flow activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-memora/pkg/wizard"
)

// Recorder is the metrics surface used by the intake server.
type Recorder interface {
	wizard.Recorder
	IntakeRejected(flow, reason string)
	FlowStarted(flow string)
	FlowEvicted(flow string)
}

// PrometheusRecorder implements Recorder on its own registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	transitions *prometheus.CounterVec
	blocked     *prometheus.CounterVec
	submissions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	rejected    *prometheus.CounterVec
	started     *prometheus.CounterVec
	evicted     *prometheus.CounterVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder registers the memora collectors on a fresh registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memora_step_transitions_total",
				Help: "Step changes by flow, origin and destination step",
			},
			[]string{"flow", "from", "to"},
		),
		blocked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memora_step_blocked_total",
				Help: "Advance attempts refused because the step was invalid",
			},
			[]string{"flow", "step"},
		),
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memora_submissions_total",
				Help: "Completed gateway submissions by flow and status",
			},
			[]string{"flow", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "memora_submission_duration_seconds",
				Help:    "Duration of gateway submissions in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"flow"},
		),
		rejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memora_intake_rejected_total",
				Help: "Files refused at intake by flow and reason",
			},
			[]string{"flow", "reason"},
		),
		started: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memora_flows_started_total",
				Help: "Flows created by kind",
			},
			[]string{"flow"},
		),
		evicted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memora_flows_evicted_total",
				Help: "Idle flows abandoned by the server",
			},
			[]string{"flow"},
		),
	}
}

// Registry exposes the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus text format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PrometheusRecorder) Transition(flow string, from, to int) {
	p.transitions.WithLabelValues(flow, strconv.Itoa(from), strconv.Itoa(to)).Inc()
}

func (p *PrometheusRecorder) Blocked(flow string, step int) {
	p.blocked.WithLabelValues(flow, strconv.Itoa(step)).Inc()
}

func (p *PrometheusRecorder) Submitted(flow string, success bool, elapsed time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	p.submissions.WithLabelValues(flow, status).Inc()
	p.duration.WithLabelValues(flow).Observe(elapsed.Seconds())
}

func (p *PrometheusRecorder) IntakeRejected(flow, reason string) {
	p.rejected.WithLabelValues(flow, reason).Inc()
}

func (p *PrometheusRecorder) FlowStarted(flow string) {
	p.started.WithLabelValues(flow).Inc()
}

func (p *PrometheusRecorder) FlowEvicted(flow string) {
	p.evicted.WithLabelValues(flow).Inc()
}

// Nop discards everything.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) Transition(string, int, int) {}
func (Nop) Blocked(string, int) {}
func (Nop) Submitted(string, bool, time.Duration) {}
func (Nop) IntakeRejected(string, string) {}
func (Nop) FlowStarted(string) {}
func (Nop) FlowEvicted(string) {}
