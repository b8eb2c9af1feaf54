package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks records every hook event as Prometheus metrics.
type PrometheusHooks struct {
	stageDuration *prometheus.HistogramVec
	stageTotal    *prometheus.CounterVec

	passTotal      *prometheus.CounterVec
	passIterations *prometheus.HistogramVec
	passDuration   *prometheus.HistogramVec

	cacheEvents *prometheus.CounterVec

	httpTotal    *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ SolverHooks   = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)

// NewPrometheusHooks registers the qplace metrics on reg.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qplace_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		}, []string{"stage"}),
		stageTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qplace_stage_total",
			Help: "Pipeline stages run, by outcome",
		}, []string{"stage", "result"}),

		passTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qplace_solver_passes_total",
			Help: "Solver passes by pass and outcome",
		}, []string{"pass", "result"}),
		passIterations: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qplace_solver_iterations",
			Help:    "Search iterations per solver pass",
			Buckets: prometheus.ExponentialBuckets(10, 10, 7),
		}, []string{"pass"}),
		passDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qplace_solver_pass_duration_seconds",
			Help:    "Initialisation plus search time per solver pass",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 60},
		}, []string{"pass"}),

		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qplace_cache_events_total",
			Help: "Cache hits, misses and writes",
		}, []string{"key_type", "event"}),

		httpTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qplace_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qplace_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Install registers h for every hook category.
func (h *PrometheusHooks) Install() {
	SetPipelineHooks(h)
	SetSolverHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) stage(name string, d time.Duration, err error) {
	h.stageDuration.WithLabelValues(name).Observe(d.Seconds())
	h.stageTotal.WithLabelValues(name, result(err)).Inc()
}

func (h *PrometheusHooks) OnSliceStart(context.Context, int) {}
func (h *PrometheusHooks) OnSliceComplete(_ context.Context, _ int, d time.Duration, err error) {
	h.stage("slice", d, err)
}
func (h *PrometheusHooks) OnAugmentStart(context.Context, int) {}
func (h *PrometheusHooks) OnAugmentComplete(_ context.Context, _ int, d time.Duration, err error) {
	h.stage("augment", d, err)
}
func (h *PrometheusHooks) OnPlaceStart(context.Context, int, int) {}
func (h *PrometheusHooks) OnPlaceComplete(_ context.Context, _ int, d time.Duration, err error) {
	h.stage("place", d, err)
}

func (h *PrometheusHooks) OnPassStart(context.Context, string, time.Duration) {}

func (h *PrometheusHooks) OnPassComplete(_ context.Context, pass string, s PassStats, err error) {
	outcome := "incomplete"
	switch {
	case err != nil:
		outcome = "error"
	case s.Complete:
		outcome = "complete"
	}
	h.passTotal.WithLabelValues(pass, outcome).Inc()
	h.passIterations.WithLabelValues(pass).Observe(float64(s.Iterations))
	h.passDuration.WithLabelValues(pass).Observe((s.InitTime + s.SearchTime).Seconds())
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}
func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}
func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {}
func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.httpTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
