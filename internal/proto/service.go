// Package proto describes the seedvault.v1.VaultService gRPC service. The
// service exchanges protobuf well-known types, so no generated message code
// is needed; this file plays the role protoc-gen-go-grpc output would.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "seedvault.v1.VaultService"

const (
	VaultService_Ping_FullMethodName        = "/" + ServiceName + "/Ping"
	VaultService_Deposit_FullMethodName     = "/" + ServiceName + "/Deposit"
	VaultService_Withdraw_FullMethodName    = "/" + ServiceName + "/Withdraw"
	VaultService_Airdrop_FullMethodName     = "/" + ServiceName + "/Airdrop"
	VaultService_GetAccount_FullMethodName  = "/" + ServiceName + "/GetAccount"
	VaultService_DeriveVault_FullMethodName = "/" + ServiceName + "/DeriveVault"
)

// VaultServiceClient is the client API for VaultService.
type VaultServiceClient interface {
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Deposit(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Withdraw(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Airdrop(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetAccount(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeriveVault(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type vaultServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewVaultServiceClient(cc grpc.ClientConnInterface) VaultServiceClient {
	return &vaultServiceClient{cc}
}

func (c *vaultServiceClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, VaultService_Ping_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultServiceClient) Deposit(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, VaultService_Deposit_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultServiceClient) Withdraw(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, VaultService_Withdraw_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultServiceClient) Airdrop(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, VaultService_Airdrop_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultServiceClient) GetAccount(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, VaultService_GetAccount_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultServiceClient) DeriveVault(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, VaultService_DeriveVault_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// VaultServiceServer is the server API for VaultService. Implementations
// must embed UnimplementedVaultServiceServer.
type VaultServiceServer interface {
	Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	Deposit(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Withdraw(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Airdrop(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAccount(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	DeriveVault(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedVaultServiceServer()
}

type UnimplementedVaultServiceServer struct{}

func (UnimplementedVaultServiceServer) Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedVaultServiceServer) Deposit(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Deposit not implemented")
}
func (UnimplementedVaultServiceServer) Withdraw(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Withdraw not implemented")
}
func (UnimplementedVaultServiceServer) Airdrop(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Airdrop not implemented")
}
func (UnimplementedVaultServiceServer) GetAccount(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAccount not implemented")
}
func (UnimplementedVaultServiceServer) DeriveVault(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DeriveVault not implemented")
}
func (UnimplementedVaultServiceServer) mustEmbedUnimplementedVaultServiceServer() {}

func RegisterVaultServiceServer(s grpc.ServiceRegistrar, srv VaultServiceServer) {
	s.RegisterService(&VaultService_ServiceDesc, srv)
}

func _VaultService_Ping_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VaultServiceServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: VaultService_Ping_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VaultServiceServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _VaultService_Deposit_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VaultServiceServer).Deposit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: VaultService_Deposit_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VaultServiceServer).Deposit(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _VaultService_Withdraw_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VaultServiceServer).Withdraw(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: VaultService_Withdraw_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VaultServiceServer).Withdraw(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _VaultService_Airdrop_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VaultServiceServer).Airdrop(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: VaultService_Airdrop_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VaultServiceServer).Airdrop(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _VaultService_GetAccount_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VaultServiceServer).GetAccount(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: VaultService_GetAccount_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VaultServiceServer).GetAccount(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _VaultService_DeriveVault_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VaultServiceServer).DeriveVault(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: VaultService_DeriveVault_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VaultServiceServer).DeriveVault(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var VaultService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: _VaultService_Ping_Handler},
		{MethodName: "Deposit", Handler: _VaultService_Deposit_Handler},
		{MethodName: "Withdraw", Handler: _VaultService_Withdraw_Handler},
		{MethodName: "Airdrop", Handler: _VaultService_Airdrop_Handler},
		{MethodName: "GetAccount", Handler: _VaultService_GetAccount_Handler},
		{MethodName: "DeriveVault", Handler: _VaultService_DeriveVault_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "seedvault/v1/vault.proto",
}
