package transport

import (
	"net"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server hosts a TableTransform plugin together with the standard gRPC health
// service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	lis    net.Listener
}

// NewServer wraps lis. The plugin reports SERVING once Serve is called.
func NewServer(lis net.Listener, impl TableTransformServer, opts ...grpc.ServerOption) *Server {
	s := &Server{
		grpc:   grpc.NewServer(opts...),
		health: health.NewServer(),
		lis:    lis,
	}
	RegisterTableTransformServer(s.grpc, impl)
	healthpb.RegisterHealthServer(s.grpc, s.health)
	return s
}

// Listen opens a TCP listener on addr (e.g. ":50052") and wraps it.
func Listen(addr string, impl TableTransformServer, opts ...grpc.ServerOption) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "transport: listen %s", addr)
	}
	return NewServer(lis, impl, opts...), nil
}

func (s *Server) Addr() net.Addr { return s.lis.Addr() }

func (s *Server) Serve() error {
	s.health.SetServingStatus(TableTransformService, healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return s.grpc.Serve(s.lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
