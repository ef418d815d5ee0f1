package server

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/handler"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
)

type server struct {
	httpServer *httpServer

	// metricsServer listens on the internal metrics address; nil when it
	// is not configured.
	metricsServer *httpServer

	logger *logger.Logger
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if handlers == nil || handlers.HTTP == nil || cfg.HTTPAddress == "" {
		return nil, errNoServersAreCreated
	}

	s := &server{
		httpServer: newHTTPServer(handlers.HTTP.Init(), cfg.HTTPAddress, logger),
		logger:     logger,
	}
	if cfg.MetricsAddress != "" {
		s.metricsServer = newHTTPServer(handlers.HTTP.MetricsRouter(), cfg.MetricsAddress, logger)
	}

	return s, nil
}

// RunServer serves until ctx is cancelled, then drains in-flight requests.
// A failing listener stops the other one too.
func (s *server) RunServer(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	s.logger.Info().Msg("Launching HTTP server")
	g.Go(func() error { return s.httpServer.RunServer(ctx) })

	if s.metricsServer != nil {
		s.logger.Info().Msg("Launching metrics server")
		g.Go(func() error { return s.metricsServer.RunServer(ctx) })
	}

	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info().Msg("server Shutdown gracefully")
	return nil
}

func (s *server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.metricsServer != nil {
		err = errors.Join(err, s.metricsServer.Shutdown(ctx))
	}
	return err
}
