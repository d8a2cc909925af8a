package transport

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	TableTransformService = "tabula.v1.TableTransform"
	applyMethod           = "/" + TableTransformService + "/Apply"
)

// TableTransformServer is implemented by plugin processes. Apply receives an
// EncodeTable payload and returns one.
type TableTransformServer interface {
	Apply(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// TableTransformClient calls a remote TableTransformServer.
type TableTransformClient interface {
	Apply(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type tableTransformClient struct {
	cc grpc.ClientConnInterface
}

func NewTableTransformClient(cc grpc.ClientConnInterface) TableTransformClient {
	return &tableTransformClient{cc: cc}
}

func (c *tableTransformClient) Apply(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, applyMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterTableTransformServer(s grpc.ServiceRegistrar, srv TableTransformServer) {
	s.RegisterService(&tableTransformServiceDesc, srv)
}

func applyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TableTransformServer).Apply(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: applyMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TableTransformServer).Apply(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var tableTransformServiceDesc = grpc.ServiceDesc{
	ServiceName: TableTransformService,
	HandlerType: (*TableTransformServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Apply", Handler: applyHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tabula/v1/table_transform.proto",
}
