package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specter",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "specter",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	packetsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specter",
			Subsystem: "phantom",
			Name:      "packets_dispatched_total",
			Help:      "Outbound packets interpreted for phantom sessions.",
		},
		[]string{"kind"},
	)
	repliesDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "specter",
			Subsystem: "phantom",
			Name:      "replies_delivered_total",
			Help:      "Queued replies delivered through the inbound path.",
		},
	)
	repliesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specter",
			Subsystem: "phantom",
			Name:      "replies_dropped_total",
			Help:      "Queued replies discarded before delivery.",
		},
		[]string{"reason"},
	)
	acksAllocated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "specter",
			Subsystem: "phantom",
			Name:      "acks_allocated_total",
			Help:      "Acknowledgment ids allocated for phantom sessions.",
		},
	)
	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "specter",
			Subsystem: "phantom",
			Name:      "sessions_active",
			Help:      "Registered phantom sessions.",
		},
	)
	ticks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "specter",
			Subsystem: "scheduler",
			Name:      "ticks_total",
			Help:      "Scheduler ticks run by the host.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			packetsDispatched,
			repliesDelivered,
			repliesDropped,
			acksAllocated,
			sessionsActive,
			ticks,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordPacketDispatched(kind string) {
	packetsDispatched.WithLabelValues(kind).Inc()
}

func RecordRepliesDelivered(n int) {
	repliesDelivered.Add(float64(n))
}

func RecordRepliesDropped(reason string, n int) {
	repliesDropped.WithLabelValues(reason).Add(float64(n))
}

func RecordAckAllocated() {
	acksAllocated.Inc()
}

func SetSessionsActive(n int) {
	sessionsActive.Set(float64(n))
}

func RecordTick() {
	ticks.Inc()
}
