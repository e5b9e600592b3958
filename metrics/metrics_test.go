package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/indigo-web/staticd/http/status"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetrics(t *testing.T) {
	m := New("test")
	m.ConnectionStarted()
	m.ObserveResponse(status.OK, time.Millisecond, 100, true)
	m.ObserveResponse(status.NotFound, time.Millisecond, 10, false)
	m.ObserveResponse(status.OK, time.Millisecond, 5, false)
	m.CompressionFailed()
	m.JobPanicked("boom")

	require.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("404")))
	require.Equal(t, 115.0, testutil.ToFloat64(m.bytesWritten))
	require.Equal(t, 1.0, testutil.ToFloat64(m.compressed))
	require.Equal(t, 1.0, testutil.ToFloat64(m.connsInFlight))
	require.Equal(t, 1.0, testutil.ToFloat64(m.compressionErrors))
	require.Equal(t, 1.0, testutil.ToFloat64(m.jobPanics))

	m.ConnectionFinished()
	require.Equal(t, 0.0, testutil.ToFloat64(m.connsInFlight))
	require.Equal(t, 1.0, testutil.ToFloat64(m.connsAccepted))
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ConnectionStarted()
		m.ObserveResponse(status.OK, time.Second, 1, true)
		m.ConnectionFinished()
		m.CompressionFailed()
		m.JobPanicked(nil)
	})
	require.Nil(t, m.Registry())
}

func TestServer(t *testing.T) {
	m := New("staticd")
	m.ObserveResponse(status.OK, time.Millisecond, 42, false)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	server := NewServer(m, ln.Addr().String(), zap.NewNop())
	done := make(chan error, 1)
	go func() {
		done <- server.serve(ctx, ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Contains(t, string(body), `staticd_requests_total{code="200"} 1`)
	require.Contains(t, string(body), "staticd_payload_bytes_total 42")

	cancel()
	require.NoError(t, <-done)
}
