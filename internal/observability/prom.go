package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// DB
	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	// Audit pipeline
	AuditEnqueued    prometheus.Counter
	AuditDropped     prometheus.Counter
	AuditWritten     prometheus.Counter
	AuditWriteErrors prometheus.Counter
	AuditQueueDepth  prometheus.Gauge
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notehub",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "notehub",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "notehub",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "notehub",
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "DB operation latency (logical op, not raw SQL)",
				Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
			},
			[]string{"op", "status"},
		),
		DbErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notehub",
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "DB errors by logical op and class.",
			},
			[]string{"op", "class"},
		),

		AuditEnqueued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "notehub",
				Subsystem: "audit",
				Name:      "enqueued_total",
				Help:      "Audit events accepted into the write queue.",
			},
		),
		AuditDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "notehub",
				Subsystem: "audit",
				Name:      "dropped_total",
				Help:      "Audit events dropped because the queue was full.",
			},
		),
		AuditWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "notehub",
				Subsystem: "audit",
				Name:      "written_total",
				Help:      "Audit events durably written to the store.",
			},
		),
		AuditWriteErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "notehub",
				Subsystem: "audit",
				Name:      "write_errors_total",
				Help:      "Audit store writes that failed (event lost).",
			},
		),
		AuditQueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "notehub",
				Subsystem: "audit",
				Name:      "queue_depth",
				Help:      "Current number of audit events waiting to be written.",
			},
		),
	}
	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.DbQueryDuration, p.DbErrorsTotal,
		p.AuditEnqueued, p.AuditDropped, p.AuditWritten, p.AuditWriteErrors, p.AuditQueueDepth,
	)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}
