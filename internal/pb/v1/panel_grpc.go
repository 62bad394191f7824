package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "sleepalarm.v1.PanelService"

// Full method names.
const (
	PanelService_PressButton_FullMethodName = "/" + ServiceName + "/PressButton" //nolint:revive,stylecheck // gRPC naming.
	PanelService_GetStatus_FullMethodName   = "/" + ServiceName + "/GetStatus"   //nolint:revive,stylecheck // gRPC naming.
	PanelService_GetSchedule_FullMethodName = "/" + ServiceName + "/GetSchedule" //nolint:revive,stylecheck // gRPC naming.
	PanelService_SetField_FullMethodName    = "/" + ServiceName + "/SetField"    //nolint:revive,stylecheck // gRPC naming.
)

// PanelServiceClient is the client API of the panel service.
type PanelServiceClient interface {
	PressButton(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetSchedule(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	SetField(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type panelServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPanelServiceClient creates a client over cc.
func NewPanelServiceClient(cc grpc.ClientConnInterface) PanelServiceClient {
	return &panelServiceClient{cc: cc}
}

func (c *panelServiceClient) PressButton(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, PanelService_PressButton_FullMethodName, in, opts)
}

func (c *panelServiceClient) GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, PanelService_GetStatus_FullMethodName, in, opts)
}

func (c *panelServiceClient) GetSchedule(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, PanelService_GetSchedule_FullMethodName, in, opts)
}

func (c *panelServiceClient) SetField(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, PanelService_SetField_FullMethodName, in, opts)
}

func invoke[T any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*T, error) {
	out := new(T)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// PanelServiceServer is the server API of the panel service. Implementations
// must embed UnimplementedPanelServiceServer.
type PanelServiceServer interface {
	PressButton(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetStatus(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	GetSchedule(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	SetField(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedPanelServiceServer()
}

// UnimplementedPanelServiceServer answers every method with Unimplemented.
type UnimplementedPanelServiceServer struct{}

// PressButton is not implemented.
func (UnimplementedPanelServiceServer) PressButton(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method PressButton not implemented")
}

// GetStatus is not implemented.
func (UnimplementedPanelServiceServer) GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStatus not implemented")
}

// GetSchedule is not implemented.
func (UnimplementedPanelServiceServer) GetSchedule(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSchedule not implemented")
}

// SetField is not implemented.
func (UnimplementedPanelServiceServer) SetField(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SetField not implemented")
}

func (UnimplementedPanelServiceServer) mustEmbedUnimplementedPanelServiceServer() {}

// RegisterPanelServiceServer registers srv on s.
func RegisterPanelServiceServer(s grpc.ServiceRegistrar, srv PanelServiceServer) {
	s.RegisterService(&PanelService_ServiceDesc, srv)
}

// unaryHandler adapts one typed server method to a grpc.MethodHandler.
func unaryHandler[Req any](method string, call func(PanelServiceServer, context.Context, *Req) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(PanelServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PanelServiceServer), ctx, req.(*Req))
		}

		return interceptor(ctx, in, info, handler)
	}
}

// PanelService_ServiceDesc is the grpc.ServiceDesc of the panel service.
//
//nolint:revive,stylecheck,gochecknoglobals // gRPC naming; registered descriptor.
var PanelService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PanelServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PressButton",
			Handler:    unaryHandler(PanelService_PressButton_FullMethodName, PanelServiceServer.PressButton),
		},
		{
			MethodName: "GetStatus",
			Handler:    unaryHandler(PanelService_GetStatus_FullMethodName, PanelServiceServer.GetStatus),
		},
		{
			MethodName: "GetSchedule",
			Handler:    unaryHandler(PanelService_GetSchedule_FullMethodName, PanelServiceServer.GetSchedule),
		},
		{
			MethodName: "SetField",
			Handler:    unaryHandler(PanelService_SetField_FullMethodName, PanelServiceServer.SetField),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sleepalarm/v1/panel.proto",
}
