// Package healthgrpc serves the standard gRPC health service. The overall
// status tracks the daemon; per-model statuses ("model/<name>") follow
// registry lifecycle events.
package healthgrpc

import (
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"modelcore/internal/registry"
)

// ServiceName is the overall service reported by the health endpoint.
const ServiceName = "modelcore.Registry"

// ModelService returns the health service name for a model.
func ModelService(model string) string { return "model/" + model }

// Server wraps a grpc.Server carrying the health service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	log    zerolog.Logger
}

// New builds the server and marks ServiceName as SERVING.
func New(log zerolog.Logger, opts ...grpc.ServerOption) *Server {
	s := &Server{
		grpc:   grpc.NewServer(opts...),
		health: health.NewServer(),
		log:    log,
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// Health exposes the underlying health implementation.
func (s *Server) Health() healthpb.HealthServer { return s.health }

// Publish implements registry.Publisher.
func (s *Server) Publish(e registry.Event) {
	switch e.Name {
	case registry.EventLoad, registry.EventReplace:
		s.health.SetServingStatus(ModelService(e.Model), healthpb.HealthCheckResponse_SERVING)
	case registry.EventUnload:
		s.health.SetServingStatus(ModelService(e.Model), healthpb.HealthCheckResponse_NOT_SERVING)
	}
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info().Str("addr", lis.Addr().String()).Msg("grpc health listening")
	return s.grpc.Serve(lis)
}

// Stop flips every status to NOT_SERVING and drains the server.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
