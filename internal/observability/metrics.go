package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_http_requests_total",
			Help: "Total number of HTTP requests processed by the messaging service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messaging_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "messaging_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
		[]string{"kind"},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"kind", "event"},
	)
	messagesSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_messages_sent_total",
			Help: "Total number of messages appended.",
		},
		[]string{"kind"},
	)
	messagesSeenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_messages_seen_total",
			Help: "Total number of messages transitioned to seen.",
		},
	)
	messagesDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_messages_deleted_total",
			Help: "Total number of messages deleted by their sender.",
		},
	)
	typingSignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_typing_signals_total",
			Help: "Total number of typing signals received.",
		},
		[]string{"state"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		messagesSentTotal,
		messagesSeenTotal,
		messagesDeletedTotal,
		typingSignalsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Inc()
}

func DecWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Dec()
}

func IncWSEvent(kind, event string) {
	wsEventsTotal.WithLabelValues(kind, event).Inc()
}

func IncMessageSent(kind string) {
	messagesSentTotal.WithLabelValues(kind).Inc()
}

func AddMessagesSeen(n int) {
	messagesSeenTotal.Add(float64(n))
}

func IncMessageDeleted() {
	messagesDeletedTotal.Inc()
}

func IncTypingSignal(isTyping bool) {
	state := "stop"
	if isTyping {
		state = "start"
	}
	typingSignalsTotal.WithLabelValues(state).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
