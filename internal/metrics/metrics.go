package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OutgoingLatency tracks latency of calls to the upstream transit API,
	// labeled by normalized URL, method and response status.
	OutgoingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Latency of outgoing requests to the transit API",
		Buckets: prometheus.DefBuckets,
	}, []string{"url", "method", "status"})
)

var (
	MapAPIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "map_api_requests_total",
		Help: "Requests to the map trip API by response status",
	}, []string{"status"})

	TripsReturned = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "map_api_trips_returned",
		Help: "Number of renderable trips in the most recent map API response",
	})

	TripsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "map_api_trips_discarded_total",
		Help: "Trips excluded from map responses because no leg geometry could be extracted",
	})
)
