// internal/common/http/client_test.go
package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-assistant/internal/common/metrics"
)

func TestNewClient_CountsRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient("test-upstream", time.Second)
	before := testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("test-upstream", "200"))

	resp, err := c.Get(srv.URL + "/ok")
	require.NoError(t, err)
	resp.Body.Close()
	resp, err = c.Get(srv.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("test-upstream", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("test-upstream", "404")))
}

func TestNewClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient("closed-upstream", time.Second).Get(url)
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("closed-upstream", "error")))
}
