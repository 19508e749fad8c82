package grpc

import (
	"context"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/example/wfviz/internal/endpoint"
	"github.com/example/wfviz/internal/log"
	"github.com/example/wfviz/internal/observability"
)

// Server is the gRPC server for the inspector service.
type Server struct {
	endpoints  endpoint.Endpoints
	metrics    *observability.Metrics
	grpcServer *grpc.Server
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithMetrics records per-method call durations in m.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer creates a new gRPC server.
func NewServer(endpoints endpoint.Endpoints, opts ...ServerOption) *Server {
	s := &Server{
		endpoints: endpoints,
	}
	for _, opt := range opts {
		opt(s)
	}

	interceptors := []grpc.UnaryServerInterceptor{LoggingInterceptor()}
	if s.metrics != nil {
		interceptors = append(interceptors, MetricsInterceptor(s.metrics))
	}
	interceptors = append(interceptors, RecoveryInterceptor())
	s.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))

	RegisterInspectorServer(s.grpcServer, s)

	return s
}

// Serve starts the gRPC server on the given address.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (s *Server) ServeListener(lis net.Listener) error {
	log.GetLogger().Infof("gRPC server listening on %s", lis.Addr())
	return s.grpcServer.Serve(lis)
}

// GracefulStop gracefully stops the server.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// LoggingInterceptor returns a gRPC interceptor that logs requests and their duration.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		entry := log.GetLogger().WithFields(logrus.Fields{
			"method":   info.FullMethod,
			"duration": time.Since(start),
		})
		if err != nil {
			entry.WithError(err).Warn("gRPC call failed")
		} else {
			entry.Debug("gRPC call")
		}
		return resp, err
	}
}

// MetricsInterceptor returns a gRPC interceptor that times each call.
func MetricsInterceptor(m *observability.Metrics) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		m.RPCDuration().WithLabels(info.FullMethod).Observe(time.Since(start))
		return resp, err
	}
}

// RecoveryInterceptor returns a gRPC interceptor that recovers from panics.
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.GetLogger().Errorf("gRPC panic recovered: %s: %v", info.FullMethod, r)
				err = endpoint.MapErrorToStatus(nil)
			}
		}()
		return handler(ctx, req)
	}
}
