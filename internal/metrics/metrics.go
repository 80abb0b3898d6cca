package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Outbound calls to SanMar, Caspio, Box.
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Outbound HTTP attempts by upstream and status (0 = transport error).",
		},
		[]string{"upstream", "status"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of outbound HTTP attempts in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms → ~20s
		},
		[]string{"upstream"},
	)

	// Which stage of the pricing chain answered.
	PricingResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_resolved_total",
			Help: "Pricing resolutions by winning source.",
		},
		[]string{"source"},
	)

	PricingSourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_source_failures_total",
			Help: "Pricing sources that returned an error or nothing usable.",
		},
		[]string{"source"},
	)

	// Inventory/product fallbacks to generated data.
	MockFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mock_fallback_total",
			Help: "Responses served from generated mock data.",
		},
		[]string{"component"},
	)

	CacheAccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_access_total",
			Help: "Cache hits and misses by namespace.",
		},
		[]string{"namespace", "result"}, // hit | miss
	)

	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_rows_total",
			Help: "Rows written by the inventory/pricing import.",
		},
		[]string{"table"},
	)

	ImportLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "import_last_success_timestamp",
			Help: "Unix time of the last successful import run.",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Events published by subject and result.",
		},
		[]string{"broker", "subject", "result"},
	)

	EventPublishLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "event_publish_latency_seconds",
			Help:    "Time taken to publish an event.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"broker"},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_errors_total",
			Help: "Errors by component and reason.",
		},
		[]string{"component", "reason"},
	)
)

// ObserveUpstream matches httpclient.Observer.
func ObserveUpstream(upstream string, status int, elapsed time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(upstream, strconv.Itoa(status)).Inc()
	UpstreamRequestDuration.WithLabelValues(upstream).Observe(elapsed.Seconds())
}

func IncPricingResolved(source string) {
	PricingResolvedTotal.WithLabelValues(source).Inc()
}

func IncPricingFailure(source string) {
	PricingSourceFailures.WithLabelValues(source).Inc()
}

func IncMockFallback(component string) {
	MockFallbackTotal.WithLabelValues(component).Inc()
}

func IncCache(namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheAccess.WithLabelValues(namespace, result).Inc()
}

func AddImportRows(table string, n int) {
	ImportRowsTotal.WithLabelValues(table).Add(float64(n))
}

func SetImportSuccess(t time.Time) {
	ImportLastSuccess.Set(float64(t.Unix()))
}

func IncEvent(broker, subject, result string) {
	EventsPublished.WithLabelValues(broker, subject, result).Inc()
}

func ObservePublish(broker string, start time.Time) {
	EventPublishLatency.WithLabelValues(broker).Observe(time.Since(start).Seconds())
}

func IncError(component, reason string) {
	ErrorsTotal.WithLabelValues(component, reason).Inc()
}
