package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dmitrijs2005/seedvault/internal/keys"
	pb "github.com/dmitrijs2005/seedvault/internal/proto"
	"github.com/dmitrijs2005/seedvault/internal/server/ledger"
	"github.com/dmitrijs2005/seedvault/internal/server/models"
)

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("OK"), nil
}

func (s *GRPCServer) Deposit(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	return s.submit(ctx, ledger.OpDeposit, req.GetValue())
}

func (s *GRPCServer) Withdraw(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	return s.submit(ctx, ledger.OpWithdraw, req.GetValue())
}

func (s *GRPCServer) submit(ctx context.Context, op ledger.Op, envelope string) (*structpb.Struct, error) {
	if envelope == "" {
		return nil, status.Error(codes.InvalidArgument, "missing signed envelope")
	}

	res, err := s.vault.Submit(ctx, op, envelope)
	if err != nil {
		return nil, pb.ToStatus(err)
	}

	return encode(pb.Receipt{
		Op:       string(res.Op),
		Vault:    res.Receipt.Vault,
		Bump:     res.Receipt.Bump,
		Lamports: res.Receipt.Lamports,
		Fee:      res.Fee,
	})
}

func (s *GRPCServer) Airdrop(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := pb.AirdropRequestFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	acc, err := s.vault.Airdrop(ctx, in.Address, in.Lamports)
	if err != nil {
		return nil, pb.ToStatus(err)
	}
	s.logger.Info(ctx, "Airdrop", "address", in.Address.String(), "lamports", in.Lamports)
	return encode(accountMessage(acc))
}

func (s *GRPCServer) GetAccount(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	addr, err := keys.Parse(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	acc, err := s.vault.Account(ctx, addr)
	if err != nil {
		return nil, pb.ToStatus(err)
	}
	return encode(accountMessage(acc))
}

func (s *GRPCServer) DeriveVault(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := pb.DeriveRequestFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	addr, bump, err := s.vault.DeriveVault(in.Depositor, in.Seed)
	if err != nil {
		return nil, pb.ToStatus(err)
	}
	return encode(pb.Derived{Address: addr, Bump: bump})
}

func accountMessage(a *models.Account) pb.Account {
	return pb.Account{
		Address:   a.Address,
		Lamports:  a.Lamports,
		Owner:     a.Owner,
		Space:     a.Space,
		UpdatedAt: a.UpdatedAt,
	}
}

type structMessage interface {
	ToStruct() (*structpb.Struct, error)
}

func encode(m structMessage) (*structpb.Struct, error) {
	out, err := m.ToStruct()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
