package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zkhost_test_total",
		Help: "test counter",
	})
	reg.MustRegister(counter)
	counter.Add(3)

	server := NewServer(nil, "127.0.0.1:0", "/metrics", time.Second, reg)
	require.NoError(t, server.Start())
	t.Cleanup(func() { _ = server.Stop(context.Background()) })

	require.Error(t, server.Start(), "重复启动")

	resp, err := http.Get("http://" + server.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "zkhost_test_total 3")

	resp, err = http.Get("http://" + server.Addr() + "/other")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.NoError(t, server.Stop(context.Background()))
	assert.Empty(t, server.Addr())
	require.NoError(t, server.Stop(context.Background()), "重复停止无副作用")
}

func TestServer_ListenFailure(t *testing.T) {
	server := NewServer(nil, "256.0.0.1:bad", "/metrics", time.Second, nil)
	require.Error(t, server.Start())
	assert.Empty(t, server.Addr())
}
