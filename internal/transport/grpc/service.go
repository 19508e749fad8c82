package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified name of the inspector service.
const ServiceName = "wfviz.v1.Inspector"

// LocateMethod is the full method name of Inspector.Locate.
const LocateMethod = "/" + ServiceName + "/Locate"

// Request fields of Locate. Both are optional; uuid wins over path and an
// empty request selects the root.
const (
	fieldUUID = "uuid"
	fieldPath = "path"
)

// InspectorServer is the server API for the inspector service. Locate
// answers with the binary snapshot encoding of the resolved subtree.
type InspectorServer interface {
	Locate(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error)
}

// RegisterInspectorServer registers srv with s.
func RegisterInspectorServer(s grpc.ServiceRegistrar, srv InspectorServer) {
	s.RegisterService(&inspectorServiceDesc, srv)
}

var inspectorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InspectorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Locate",
			Handler:    locateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wfviz/v1/inspector.proto",
}

func locateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InspectorServer).Locate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: LocateMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InspectorServer).Locate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
