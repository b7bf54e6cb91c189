package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/kaspanet/txtracker/util/panics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var spawn = panics.GoroutineWrapperFunc(log)

// Server exposes the metrics over HTTP at /metrics
type Server struct {
	httpServer *http.Server
}

// NewServer returns a Server for m that listens on listenAddress once started
func (m *Metrics) NewServer(listenAddress string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return &Server{
		httpServer: &http.Server{
			Addr:              listenAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves the metrics in the background
func (s *Server) Start() {
	spawn("metrics.Server.Start", func() {
		log.Infof("Serving metrics on %s", s.httpServer.Addr)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics server stopped: %s", err)
		}
	})
}

// Stop shuts the server down, waiting at most timeout for open requests
func (s *Server) Stop(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return errors.WithStack(s.httpServer.Shutdown(ctx))
}
