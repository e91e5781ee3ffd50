package app

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"pendler.kildedal.dk/internal/metrics"
)

// latencyTrackingRoundTripper wraps a RoundTripper to record the latency of
// every outgoing request to the transit upstream as a Prometheus histogram,
// labeled by normalized URL, method and status.
type latencyTrackingRoundTripper struct {
	next http.RoundTripper
}

func (rt *latencyTrackingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.next.RoundTrip(req)
	elapsed := time.Since(start).Seconds()

	status := "error"
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}

	// Scheme + host + path only; query strings would explode cardinality.
	safeURL := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path

	metrics.OutgoingLatency.WithLabelValues(safeURL, req.Method, status).Observe(elapsed)

	return resp, err
}

// NewPooledClient returns the HTTP client used for all upstream transit API
// calls. Connections are pooled and kept alive because the map page can fire
// a search on every marker drag, and the client is instrumented to feed the
// upstream latency histogram.
func NewPooledClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &http.Client{
		Transport: &latencyTrackingRoundTripper{next: transport},
		Timeout:   15 * time.Second,
	}
}
