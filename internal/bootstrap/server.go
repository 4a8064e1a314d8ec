package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/homecare/config"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 5 * time.Second

// ServiceName is reported by the gRPC health service.
const ServiceName = "homecare.callbacks"

type Servers struct {
	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server
	logger     *zap.Logger
}

// Run starts the HTTP callback server and, when configured, the gRPC health
// server. It blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler, logger *zap.Logger) error {
	s := newServers(cfg, handler, logger)

	errCh := make(chan error, 2)

	if s.grpcServer != nil {
		lis, err := net.Listen("tcp", cfg.GRPC.Address)
		if err != nil {
			return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
		}
		logger.Info("grpc health listening", zap.String("addr", cfg.GRPC.Address))
		go func() { errCh <- s.grpcServer.Serve(lis) }()
	}

	logger.Info("http listening", zap.String("addr", cfg.HTTP.Address))
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.setServing(healthpb.HealthCheckResponse_SERVING)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		s.setServing(healthpb.HealthCheckResponse_NOT_SERVING)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if s.grpcServer != nil {
			s.grpcServer.GracefulStop()
		}
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, handler http.Handler, logger *zap.Logger) *Servers {
	s := &Servers{
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}

	if cfg.GRPC.Address != "" {
		s.grpcServer = grpc.NewServer()
		s.health = health.NewServer()
		healthpb.RegisterHealthServer(s.grpcServer, s.health)
	}
	return s
}

func (s *Servers) setServing(status healthpb.HealthCheckResponse_ServingStatus) {
	if s.health == nil {
		return
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
