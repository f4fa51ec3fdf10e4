package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "aip.metadata.v1.MetadataService"

// Method names.
const (
	MethodResolveDocument = "ResolveDocument"
	MethodResolvePages    = "ResolvePages"
	MethodGetDocument     = "GetDocument"
	MethodExportWorkbook  = "ExportWorkbook"
)

// MetadataServiceServer is the server API for MetadataService. Requests and
// responses are google.protobuf.Struct messages.
type MetadataServiceServer interface {
	ResolveDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResolvePages(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportWorkbook(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structMethod func(MetadataServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// MetadataServiceDesc describes MetadataService for grpc.Server.RegisterService.
var MetadataServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MetadataServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodResolveDocument, Handler: unaryHandler(MethodResolveDocument, MetadataServiceServer.ResolveDocument)},
		{MethodName: MethodResolvePages, Handler: unaryHandler(MethodResolvePages, MetadataServiceServer.ResolvePages)},
		{MethodName: MethodGetDocument, Handler: unaryHandler(MethodGetDocument, MetadataServiceServer.GetDocument)},
		{MethodName: MethodExportWorkbook, Handler: unaryHandler(MethodExportWorkbook, MetadataServiceServer.ExportWorkbook)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "aip/metadata/v1/metadata.proto",
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unaryHandler(name string, m structMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return m(srv.(MetadataServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
		handler := func(ctx context.Context, req any) (any, error) {
			return m(srv.(MetadataServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RegisterMetadataServiceServer registers srv on s.
func RegisterMetadataServiceServer(s grpc.ServiceRegistrar, srv MetadataServiceServer) {
	s.RegisterService(&MetadataServiceDesc, srv)
}

// MetadataServiceClient calls MetadataService over a client connection.
type MetadataServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewMetadataServiceClient(cc grpc.ClientConnInterface) *MetadataServiceClient {
	return &MetadataServiceClient{cc: cc}
}

func (c *MetadataServiceClient) call(ctx context.Context, name string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MetadataServiceClient) ResolveDocument(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodResolveDocument, in, opts...)
}

func (c *MetadataServiceClient) ResolvePages(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodResolvePages, in, opts...)
}

func (c *MetadataServiceClient) GetDocument(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodGetDocument, in, opts...)
}

func (c *MetadataServiceClient) ExportWorkbook(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodExportWorkbook, in, opts...)
}
