package http

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lintang-b-s/Collectorx/pkg/http/router"
	"github.com/lintang-b-s/Collectorx/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/Collectorx/pkg/http/server"
	"github.com/lintang-b-s/Collectorx/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
	g   *errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use starts the API in the background. It stops when ctx is canceled; Wait returns its error.
func (s *Server) Use(
	ctx context.Context,
	routingService controllers.RoutingService,
	metric *metrics.Metric,
	gatherer prometheus.Gatherer,
) (*Server, error) {
	config := http_server.ConfigFromViper()

	api := router.NewAPI(s.Log, metric, gatherer)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.Run(gCtx, config, routingService)
	})
	s.g = g

	return s, nil
}

func (s *Server) Wait() error {
	if s.g == nil {
		return nil
	}
	return s.g.Wait()
}

// GracefulShutdown blocks until SIGINT or SIGTERM.
func GracefulShutdown() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}
