package metrics

import "github.com/prometheus/client_golang/prometheus"

// Discovery Prometheus metrics.
var (
	DiscoveryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "placedex",
			Name:      "discovery_requests_total",
			Help:      "Total number of discovery requests",
		},
		[]string{"kind"},
	)

	DiscoveryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "placedex",
			Name:      "discovery_cache_total",
			Help:      "Tile cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss" / "bypass"
	)

	DiscoveryAdapterItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "placedex",
			Name:      "discovery_adapter_items_total",
			Help:      "Items contributed per source adapter after merge",
		},
		[]string{"source"},
	)

	DiscoveryDegradedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "placedex",
			Name:      "discovery_degraded_total",
			Help:      "Responses degraded by a fallback adapter failure",
		},
	)
)

var discoveryMetricsRegistered bool

// RegisterDiscoveryMetrics registers discovery metrics. Must be called once from main.
func RegisterDiscoveryMetrics() {
	if discoveryMetricsRegistered {
		return
	}
	prometheus.MustRegister(DiscoveryRequestsTotal)
	prometheus.MustRegister(DiscoveryCacheTotal)
	prometheus.MustRegister(DiscoveryAdapterItemsTotal)
	prometheus.MustRegister(DiscoveryDegradedTotal)
	discoveryMetricsRegistered = true
}
