package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Turn outcomes recorded by RecordTurn.
const (
	OutcomeOK          = "ok"
	OutcomeBlocked     = "blocked"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Metrics holds the service's Prometheus collectors on a private registry.
// All methods are no-ops on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	turns          *prometheus.CounterVec
	llmDuration    *prometheus.HistogramVec
	llmTokens      *prometheus.CounterVec
	llmRetries     prometheus.Counter
	memoryTokens   prometheus.Histogram
	guardrailFlags *prometheus.CounterVec
	purged         prometheus.Counter
	jobRuns        *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors, plus the Go runtime
// and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		turns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "careerai_turns_total",
			Help: "Chat turns by conversation phase, intent and outcome.",
		}, []string{"phase", "intent", "outcome"}),
		llmDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "careerai_llm_request_duration_seconds",
			Help:    "Duration of model requests in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"model", "status"}),
		llmTokens: f.NewCounterVec(prometheus.CounterOpts{
			Name: "careerai_llm_tokens_total",
			Help: "Tokens consumed by model and type (prompt|completion).",
		}, []string{"model", "type"}),
		llmRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "careerai_llm_retries_total",
			Help: "Model requests retried after a transient provider error.",
		}),
		memoryTokens: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "careerai_memory_block_tokens",
			Help:    "Estimated tokens of the serialized conversation memory block.",
			Buckets: []float64{0, 25, 50, 100, 200, 400, 800},
		}),
		guardrailFlags: f.NewCounterVec(prometheus.CounterOpts{
			Name: "careerai_guardrail_flags_total",
			Help: "Guardrail findings on messages and replies by flag.",
		}, []string{"flag"}),
		purged: f.NewCounter(prometheus.CounterOpts{
			Name: "careerai_conversations_purged_total",
			Help: "Conversations deleted by the retention job.",
		}),
		jobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "careerai_cron_job_runs_total",
			Help: "Scheduled job runs by job and status (ok|error).",
		}, []string{"job", "status"}),
		jobDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "careerai_cron_job_duration_seconds",
			Help:    "Duration of scheduled job runs.",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 30, 120},
		}, []string{"job"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "careerai_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "careerai_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordTurn counts a finished chat turn.
func (m *Metrics) RecordTurn(phase, intent, outcome string) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(phase, intent, outcome).Inc()
}

// ObserveLLM records the latency and token usage of one model request.
func (m *Metrics) ObserveLLM(model string, d time.Duration, err error, promptTokens, completionTokens int) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.llmDuration.WithLabelValues(model, status).Observe(d.Seconds())
	if promptTokens > 0 {
		m.llmTokens.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.llmTokens.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
}

// RecordRetry counts a retried model request.
func (m *Metrics) RecordRetry() {
	if m == nil {
		return
	}
	m.llmRetries.Inc()
}

// ObserveMemoryTokens records the size of an emitted memory block.
func (m *Metrics) ObserveMemoryTokens(tokens int) {
	if m == nil {
		return
	}
	m.memoryTokens.Observe(float64(tokens))
}

// RecordFlag counts a guardrail finding.
func (m *Metrics) RecordFlag(flag string) {
	if m == nil {
		return
	}
	m.guardrailFlags.WithLabelValues(flag).Inc()
}

// RecordPurge counts conversations removed by retention.
func (m *Metrics) RecordPurge(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.purged.Add(float64(n))
}

// ObserveJob records one scheduled job run. Its signature matches
// cron.RunObserver.
func (m *Metrics) ObserveJob(job string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.jobRuns.WithLabelValues(job, status).Inc()
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

// ObserveHTTP records one served HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, statusLabel(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func statusLabel(code int) string {
	if code == 0 {
		code = http.StatusOK
	}
	return strconv.Itoa(code)
}
