package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/leoovs/Xuzumi/pool"
)

// metricsServer exposes pool statistics on /metrics.
type metricsServer struct {
	srv  *http.Server
	ln   net.Listener
	done chan struct{}
}

func newMetricsRegistry(alloc *pool.PoolAllocator) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		pool.NewCollector(alloc),
		collectors.NewGoCollector(),
	)
	return reg
}

// serveMetrics starts listening on addr. The allocator is only read
// through its published statistics, so scrapes may run concurrently
// with the goroutine that owns it.
func serveMetrics(addr string, alloc *pool.PoolAllocator, log *zap.Logger) (*metricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(newMetricsRegistry(alloc), promhttp.HandlerOpts{}))

	m := &metricsServer{
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln:   ln,
		done: make(chan struct{}),
	}

	go func() {
		defer close(m.done)
		if err := m.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()

	log.Info("serving metrics", zap.String("addr", ln.Addr().String()))
	return m, nil
}

func (m *metricsServer) Addr() string { return m.ln.Addr().String() }

func (m *metricsServer) Shutdown(ctx context.Context) error {
	err := m.srv.Shutdown(ctx)
	<-m.done
	return err
}
