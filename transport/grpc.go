package transport

import (
	"context"

	"google.golang.org/grpc"
)

// serviceName is the logical gRPC service name. There is no .proto file
// behind it: ServiceDesc and the client stub below are the same shape
// protoc-gen-go-grpc would emit, written by hand since no protobuf
// compiler runs in this environment (see codec.go).
const serviceName = "membership.Membership"

const exchangeClusterViewsMethod = "/" + serviceName + "/ExchangeClusterViews"

// MembershipServer is implemented by the receiver of gossip exchanges
// that RegisterMembershipServer attaches to a gRPC server.
type MembershipServer interface {
	ExchangeClusterViews(context.Context, *PartialClusterViewMsg) (*PartialClusterViewMsg, error)
}

// MembershipClient is the client-side stub returned by NewMembershipClient.
type MembershipClient interface {
	ExchangeClusterViews(context.Context, *PartialClusterViewMsg) (*PartialClusterViewMsg, error)
}

var membershipServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*MembershipServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ExchangeClusterViews",
			Handler:    exchangeClusterViewsHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "membership.proto",
}

func exchangeClusterViewsHandler(
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(PartialClusterViewMsg)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MembershipServer).ExchangeClusterViews(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: exchangeClusterViewsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MembershipServer).ExchangeClusterViews(ctx, req.(*PartialClusterViewMsg))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterMembershipServer registers srv against a *grpc.Server (or any
// grpc.ServiceRegistrar, such as a test server).
func RegisterMembershipServer(s grpc.ServiceRegistrar, srv MembershipServer) {
	s.RegisterService(&membershipServiceDesc, srv)
}

// membershipClient is the hand-written equivalent of a protoc-gen-go-grpc
// client stub.
type membershipClient struct {
	cc grpc.ClientConnInterface
}

// NewMembershipClient wraps an established *grpc.ClientConn.
func NewMembershipClient(cc grpc.ClientConnInterface) MembershipClient {
	return &membershipClient{cc: cc}
}

func (c *membershipClient) ExchangeClusterViews(ctx context.Context, in *PartialClusterViewMsg) (*PartialClusterViewMsg, error) {
	out := new(PartialClusterViewMsg)
	opts := []grpc.CallOption{grpc.ForceCodec(jsonCodec{})}
	if err := c.cc.Invoke(ctx, exchangeClusterViewsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
