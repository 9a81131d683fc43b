// Package metrics holds the Prometheus collectors for validation runs, rule
// dispatch, the AI corrector and outbound Graph calls.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docstyle"

// Metrics implements check.Recorder and validate.Observer.
type Metrics struct {
	reg *prometheus.Registry

	unimplemented *prometheus.CounterVec
	runs          *prometheus.CounterVec
	findings      *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	aiOutcomes    *prometheus.CounterVec
	graphRequests *prometheus.CounterVec
}

// New registers every collector, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		unimplemented: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_unimplemented_total",
			Help:      "Rules dispatched to a (rule_type, check_value) pair with no checker",
		}, []string{"rule_type", "check_value"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Completed validation runs by document type and status",
		}, []string{"doc_type", "status"}),
		findings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Issues and fixes recorded across validation runs",
		}, []string{"kind"}),
		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Time spent validating one document",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"doc_type"}),
		aiOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_corrections_total",
			Help:      "AI corrector calls by outcome",
		}, []string{"outcome"}),
		graphRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_requests_total",
			Help:      "Microsoft Graph requests by operation and HTTP status code",
		}, []string{"op", "code"}),
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// RuleUnimplemented counts a rule with no checker.
func (m *Metrics) RuleUnimplemented(ruleType, checkValue string) {
	m.unimplemented.WithLabelValues(ruleType, checkValue).Inc()
}

// ObserveRun records one finished validation.
func (m *Metrics) ObserveRun(docType, status string, issues, fixes int, elapsed time.Duration) {
	m.runs.WithLabelValues(docType, status).Inc()
	m.findings.WithLabelValues("issue").Add(float64(issues))
	m.findings.WithLabelValues("fix").Add(float64(fixes))
	m.runDuration.WithLabelValues(docType).Observe(elapsed.Seconds())
}

// ObserveAI counts an AI correction outcome.
func (m *Metrics) ObserveAI(outcome string) {
	m.aiOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveGraph counts one Graph call. code is 0 when no response arrived.
func (m *Metrics) ObserveGraph(op string, code int) {
	m.graphRequests.WithLabelValues(op, strconv.Itoa(code)).Inc()
}
