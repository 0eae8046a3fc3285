package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "syscourse"

// Metrics holds the collectors shared by every syscourse service.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	uploads         *prometheus.CounterVec
	gatewayCalls    *prometheus.CounterVec
	events          *prometheus.CounterVec
}

// New registers collectors on a fresh registry labelled with service.
func New(service string) *Metrics {
	reg := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "HTTP requests served, by route and status code.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request latency, by route.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "route"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "upload",
			Name:        "files_total",
			Help:        "Normalized uploads, by result.",
			ConstLabels: constLabels,
		}, []string{"kind", "result"}),
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "gateway",
			Name:        "calls_total",
			Help:        "Authorized calls to the gateway, by method and status class.",
			ConstLabels: constLabels,
		}, []string{"method", "class"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "events",
			Name:        "published_total",
			Help:        "Events handed to the broker, by topic and result.",
			ConstLabels: constLabels,
		}, []string{"topic", "result"}),
	}
	reg.MustRegister(
		m.requests, m.requestDuration, m.uploads, m.gatewayCalls, m.events,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Register(r *gin.Engine) {
	r.Use(m.Middleware())
	r.GET("/metrics", gin.WrapH(m.Handler()))
}

func (m *Metrics) ObserveUpload(kind, result string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) ObserveGatewayCall(method string, status int) {
	if m == nil {
		return
	}
	m.gatewayCalls.WithLabelValues(method, statusClass(status)).Inc()
}

func (m *Metrics) ObserveEvent(topic string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.events.WithLabelValues(topic, result).Inc()
}

func statusClass(status int) string {
	if status <= 0 {
		return "transport_error"
	}
	return strconv.Itoa(status/100) + "xx"
}
