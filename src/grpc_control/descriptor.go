package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "stockdashboard.control.v1.DashboardControl"

// DashboardControlServer is the server API. Requests and responses are
// well-known protobuf messages so no generated code is needed.
type DashboardControlServer interface {
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Refresh(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Select(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleWatchlist(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSources(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetSourceEnabled(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveSource(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterDashboardControlServer attaches srv to s.
func RegisterDashboardControlServer(s grpc.ServiceRegistrar, srv DashboardControlServer) {
	s.RegisterService(&DashboardControlServiceDesc, srv)
}

// -----------------------------------------------------------------------------
// Service descriptor
// -----------------------------------------------------------------------------

var DashboardControlServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetStatus", Handler: emptyHandler("GetStatus", DashboardControlServer.GetStatus)},
		{MethodName: "Refresh", Handler: emptyHandler("Refresh", DashboardControlServer.Refresh)},
		{MethodName: "Select", Handler: structHandler("Select", DashboardControlServer.Select)},
		{MethodName: "ToggleWatchlist", Handler: structHandler("ToggleWatchlist", DashboardControlServer.ToggleWatchlist)},
		{MethodName: "ListSources", Handler: emptyHandler("ListSources", DashboardControlServer.ListSources)},
		{MethodName: "SetSourceEnabled", Handler: structHandler("SetSourceEnabled", DashboardControlServer.SetSourceEnabled)},
		{MethodName: "RemoveSource", Handler: structHandler("RemoveSource", DashboardControlServer.RemoveSource)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stockdashboard/control/v1/control.proto",
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// -----------------------------------------------------------------------------

type emptyMethod func(DashboardControlServer, context.Context, *emptypb.Empty) (*structpb.Struct, error)
type structMethod func(DashboardControlServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func emptyHandler(name string, call emptyMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DashboardControlServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(DashboardControlServer), ctx, req.(*emptypb.Empty))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func structHandler(name string, call structMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DashboardControlServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(DashboardControlServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// DashboardControlClient calls the control service over a client connection.
type DashboardControlClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardControlClient(cc grpc.ClientConnInterface) *DashboardControlClient {
	return &DashboardControlClient{cc: cc}
}

func (c *DashboardControlClient) invoke(ctx context.Context, method string, in interface{}, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardControlClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetStatus", &emptypb.Empty{}, opts...)
}

func (c *DashboardControlClient) Refresh(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Refresh", &emptypb.Empty{}, opts...)
}

func (c *DashboardControlClient) Select(ctx context.Context, ticker string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"ticker": ticker})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "Select", in, opts...)
}

func (c *DashboardControlClient) ToggleWatchlist(ctx context.Context, ticker string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"ticker": ticker})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "ToggleWatchlist", in, opts...)
}

func (c *DashboardControlClient) ListSources(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListSources", &emptypb.Empty{}, opts...)
}

func (c *DashboardControlClient) SetSourceEnabled(ctx context.Context, name string, enabled bool, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"name": name, "enabled": enabled})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "SetSourceEnabled", in, opts...)
}

func (c *DashboardControlClient) RemoveSource(ctx context.Context, name string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"name": name})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "RemoveSource", in, opts...)
}
