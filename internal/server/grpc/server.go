// Package grpc serves the standard grpc.health.v1 service used by
// orchestration probes. Status follows the database: SERVING while the
// probe succeeds, NOT_SERVING otherwise.
package grpc

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/dmitrijs2005/novelnest/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall ("") status.
const ServiceName = "novelnest.api"

const defaultProbeInterval = 5 * time.Second

// Probe reports whether a dependency is usable, e.g. (*sql.DB).PingContext.
type Probe func(ctx context.Context) error

type HealthServer struct {
	address  string
	logger   logging.Logger
	probe    Probe
	interval time.Duration
	health   *health.Server
}

// NewHealthServer creates the server. A nil probe means always healthy.
func NewHealthServer(address string, l logging.Logger, probe Probe) *HealthServer {
	hs := health.NewServer()
	// Not serving until the first probe has run.
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthServer{
		address:  address,
		logger:   l.With("module", "grpc_server"),
		probe:    probe,
		interval: defaultProbeInterval,
		health:   hs,
	}
}

func (s *HealthServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled. Probing starts
// alongside the listener and stops when Serve returns.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	served := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.watch(ctx, srv, served)
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	err := srv.Serve(lis)
	close(served)
	<-done

	if errors.Is(err, grpc.ErrServerStopped) && ctx.Err() != nil {
		return nil
	}
	return err
}

// watch probes on every tick until ctx is cancelled, which also stops srv,
// or until served is closed.
func (s *HealthServer) watch(ctx context.Context, srv *grpc.Server, served <-chan struct{}) {
	s.check(ctx)

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			s.health.Shutdown()
			srv.GracefulStop()
			return
		case <-served:
			return
		case <-t.C:
			s.check(ctx)
		}
	}
}

func (s *HealthServer) check(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.probe != nil {
		pctx, cancel := context.WithTimeout(ctx, s.interval)
		err := s.probe(pctx)
		cancel()
		if err != nil {
			s.logger.Warn(ctx, "health probe failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
