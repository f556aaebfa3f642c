package transport

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// GRPCServerOption configures NewGRPCServer.
type GRPCServerOption func(*grpcServerConfig)

type grpcServerConfig struct {
	logger *zap.Logger
	trace  bool
}

// WithServerLogger attaches a zap logger for per-RPC access logs.
func WithServerLogger(logger *zap.Logger) GRPCServerOption {
	return func(c *grpcServerConfig) { c.logger = logger }
}

// WithServerTracing installs otelgrpc's server stats handler.
func WithServerTracing(enabled bool) GRPCServerOption {
	return func(c *grpcServerConfig) { c.trace = enabled }
}

// NewGRPCServer builds a *grpc.Server with handler registered as the
// Membership service, a correlation-id/access-log unary interceptor, and
// the JSON codec forced so no protobuf-generated types are required
// (see codec.go).
func NewGRPCServer(handler MembershipServer, opts ...GRPCServerOption) *grpc.Server {
	cfg := &grpcServerConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	serverOpts := []grpc.ServerOption{
		grpc.ForceServerCodec(jsonCodec{}),
		grpc.ChainUnaryInterceptor(accessLogInterceptor(cfg.logger)),
	}
	if cfg.trace {
		serverOpts = append(serverOpts, grpc.StatsHandler(otelgrpc.NewServerHandler()))
	}

	server := grpc.NewServer(serverOpts...)
	RegisterMembershipServer(server, handler)
	return server
}

// accessLogInterceptor tags every inbound RPC with a correlation ID and
// logs its outcome at debug level.
func accessLogInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		correlationID := uuid.New()
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Debug("rpc failed",
				zap.String("correlation_id", correlationID.String()),
				zap.String("method", info.FullMethod),
				zap.Error(err))
		} else {
			logger.Debug("rpc ok",
				zap.String("correlation_id", correlationID.String()),
				zap.String("method", info.FullMethod))
		}
		return resp, err
	}
}
