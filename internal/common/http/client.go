// internal/common/http/client.go
package http

import (
	"net/http"
	"strconv"
	"time"

	"scheme-assistant/internal/common/metrics"
)

// NewClient returns an http.Client whose calls are counted and timed under
// the upstream label. A zero timeout leaves deadlines to the request context.
func NewClient(upstream string, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &instrumentedTransport{upstream: upstream, next: http.DefaultTransport},
	}
}

type instrumentedTransport struct {
	upstream string
	next     http.RoundTripper
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.UpstreamRequests.WithLabelValues(t.upstream, status).Inc()
	metrics.UpstreamDuration.WithLabelValues(t.upstream).Observe(time.Since(start).Seconds())
	return resp, err
}
