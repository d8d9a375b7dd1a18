// Package grpcoracle exposes a ChainQuery over gRPC.
//
// We intentionally use protobuf well-known types (StringValue, BoolValue,
// UInt64Value, Struct) so this package does not require a protoc/codegen
// toolchain. Unknown subjects travel as gRPC NotFound status, which the
// client maps back to the three-state Lookup.
//
// Proto definition: chainquery.proto.
package grpcoracle

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "pollmark.oracle.v1.ChainQuery"

// ChainQueryServer is the server API for the ChainQuery gRPC service.
type ChainQueryServer interface {
	AccountInfo(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	AddressInfo(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	DRepInfo(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	IsCommitteeMember(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	PoolPower(context.Context, *wrapperspb.StringValue) (*wrapperspb.UInt64Value, error)
	TransactionUTXOs(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// UnimplementedChainQueryServer can be embedded for forward compatibility.
type UnimplementedChainQueryServer struct{}

func (UnimplementedChainQueryServer) AccountInfo(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method AccountInfo not implemented")
}
func (UnimplementedChainQueryServer) AddressInfo(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method AddressInfo not implemented")
}
func (UnimplementedChainQueryServer) DRepInfo(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method DRepInfo not implemented")
}
func (UnimplementedChainQueryServer) IsCommitteeMember(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method IsCommitteeMember not implemented")
}
func (UnimplementedChainQueryServer) PoolPower(context.Context, *wrapperspb.StringValue) (*wrapperspb.UInt64Value, error) {
	return nil, status.Error(codes.Unimplemented, "method PoolPower not implemented")
}
func (UnimplementedChainQueryServer) TransactionUTXOs(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method TransactionUTXOs not implemented")
}

// RegisterChainQueryServer registers the service on a gRPC server.
func RegisterChainQueryServer(s grpc.ServiceRegistrar, srv ChainQueryServer) {
	s.RegisterService(&ChainQuery_ServiceDesc, srv)
}

// ChainQueryClient is the client API for the ChainQuery gRPC service.
type ChainQueryClient interface {
	AccountInfo(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	AddressInfo(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	DRepInfo(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	IsCommitteeMember(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	PoolPower(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.UInt64Value, error)
	TransactionUTXOs(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type chainQueryClient struct{ cc grpc.ClientConnInterface }

func NewChainQueryClient(cc grpc.ClientConnInterface) ChainQueryClient {
	return &chainQueryClient{cc: cc}
}

func (c *chainQueryClient) invokeStruct(ctx context.Context, method string, in *wrapperspb.StringValue, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chainQueryClient) AccountInfo(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, "AccountInfo", in, opts)
}

func (c *chainQueryClient) AddressInfo(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, "AddressInfo", in, opts)
}

func (c *chainQueryClient) DRepInfo(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, "DRepInfo", in, opts)
}

func (c *chainQueryClient) IsCommitteeMember(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/IsCommitteeMember", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chainQueryClient) PoolPower(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.UInt64Value, error) {
	out := new(wrapperspb.UInt64Value)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/PoolPower", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chainQueryClient) TransactionUTXOs(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, "TransactionUTXOs", in, opts)
}

func unaryHandler(method string, call func(ChainQueryServer, context.Context, *wrapperspb.StringValue) (any, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	full := "/" + serviceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(wrapperspb.StringValue)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ChainQueryServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ChainQueryServer), ctx, req.(*wrapperspb.StringValue))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ChainQuery_ServiceDesc is the grpc.ServiceDesc for the ChainQuery service.
var ChainQuery_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ChainQueryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AccountInfo", Handler: unaryHandler("AccountInfo", func(s ChainQueryServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
			return s.AccountInfo(ctx, in)
		})},
		{MethodName: "AddressInfo", Handler: unaryHandler("AddressInfo", func(s ChainQueryServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
			return s.AddressInfo(ctx, in)
		})},
		{MethodName: "DRepInfo", Handler: unaryHandler("DRepInfo", func(s ChainQueryServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
			return s.DRepInfo(ctx, in)
		})},
		{MethodName: "IsCommitteeMember", Handler: unaryHandler("IsCommitteeMember", func(s ChainQueryServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
			return s.IsCommitteeMember(ctx, in)
		})},
		{MethodName: "PoolPower", Handler: unaryHandler("PoolPower", func(s ChainQueryServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
			return s.PoolPower(ctx, in)
		})},
		{MethodName: "TransactionUTXOs", Handler: unaryHandler("TransactionUTXOs", func(s ChainQueryServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
			return s.TransactionUTXOs(ctx, in)
		})},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "chainquery.proto",
}
