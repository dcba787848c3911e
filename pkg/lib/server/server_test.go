package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "psym_test_total", Help: "test"})
	registry.MustRegister(counter)
	counter.Inc()

	tests := []struct {
		name      string
		profiling bool
		path      string
		status    int
		body      string
	}{
		{name: "health", path: "/healthz", status: http.StatusOK},
		{name: "metrics", path: "/metrics", status: http.StatusOK, body: "psym_test_total 1"},
		{name: "profiling disabled", path: "/debug/pprof/", status: http.StatusNotFound},
		{name: "profiling enabled", profiling: true, path: "/debug/pprof/", status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Handler(WithGatherer(registry), WithProfiling(tt.profiling))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Contains(t, rec.Body.String(), tt.body)
			}
		})
	}
}

func TestServeStopsWithContext(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	logger, _ := test.NewNullLogger()
	serve := GetServeFunc(WithAddress(addr), WithLogger(logger), WithGatherer(prometheus.NewRegistry()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeReportsListenErrors(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	logger, _ := test.NewNullLogger()
	serve := GetServeFunc(WithAddress(l.Addr().String()), WithLogger(logger))
	assert.Error(t, serve(context.Background()))
}
