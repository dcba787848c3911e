// Package server serves the exploration metrics and a health check while a
// run is in progress.
package server

import (
	"context"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// Option applies a configuration option to the given config.
type Option func(s *serverConfig)

func WithAddress(addr string) Option {
	return func(sc *serverConfig) {
		sc.addr = addr
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(sc *serverConfig) {
		sc.logger = logger
	}
}

// WithGatherer serves g instead of the default prometheus registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(sc *serverConfig) {
		sc.gatherer = g
	}
}

// WithProfiling serves the pprof handlers under /debug/pprof/.
func WithProfiling(enabled bool) Option {
	return func(sc *serverConfig) {
		sc.profiling = enabled
	}
}

type serverConfig struct {
	addr      string
	logger    logrus.FieldLogger
	gatherer  prometheus.Gatherer
	profiling bool
}

func (sc *serverConfig) apply(options []Option) {
	for _, o := range options {
		o(sc)
	}
}

func defaultServerConfig() serverConfig {
	return serverConfig{
		addr:     ":8080",
		logger:   logrus.New(),
		gatherer: prometheus.DefaultGatherer,
	}
}

// Handler returns the mux the server serves.
func Handler(options ...Option) http.Handler {
	sc := defaultServerConfig()
	sc.apply(options)
	return sc.handler()
}

func (sc serverConfig) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(sc.gatherer, promhttp.HandlerOpts{}))

	if sc.profiling {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	return mux
}

// GetServeFunc returns a function that serves until ctx is done and then
// shuts the server down.
func GetServeFunc(options ...Option) func(ctx context.Context) error {
	sc := defaultServerConfig()
	sc.apply(options)

	return func(ctx context.Context) error {
		s := &http.Server{
			Addr:              sc.addr,
			Handler:           sc.handler(),
			ReadHeaderTimeout: shutdownTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			sc.logger.WithField("addr", sc.addr).Info("serving metrics")
			errCh <- s.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return errors.Wrap(err, "metrics server")
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutting down metrics server")
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "metrics server")
		}
		return nil
	}
}
