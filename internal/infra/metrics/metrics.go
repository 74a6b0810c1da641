package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voice-shop/internal/application"
	"voice-shop/internal/domain"
)

type Metrics struct {
	registry *prometheus.Registry

	resolutions      *prometheus.CounterVec
	failures         *prometheus.CounterVec
	delegateDuration *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
}

var _ application.Recorder = (*Metrics)(nil)

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voice_resolutions_total",
				Help: "Total number of queries resolved, by source",
			},
			[]string{"source"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voice_failures_total",
				Help: "Total number of queries that failed, by error kind",
			},
			[]string{"kind"},
		),
		delegateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "voice_delegate_duration_seconds",
				Help:    "Duration of delegate webhook calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voice_http_requests_total",
				Help: "Total number of HTTP requests, by route and status",
			},
			[]string{"route", "status"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.resolutions,
		m.failures,
		m.delegateDuration,
		m.httpRequests,
	)

	return m
}

func (m *Metrics) Resolved(source domain.Source) {
	m.resolutions.WithLabelValues(string(source)).Inc()
}

func (m *Metrics) Failed(kind application.ErrorKind) {
	m.failures.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) DelegateCalled(statusCode int, elapsed time.Duration) {
	m.delegateDuration.WithLabelValues(strconv.Itoa(statusCode)).Observe(elapsed.Seconds())
}

func (m *Metrics) HTTPRequest(route string, status int) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
