// Package grpc exposes the vault service over gRPC.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/seedvault/internal/keys"
	"github.com/dmitrijs2005/seedvault/internal/logging"
	pb "github.com/dmitrijs2005/seedvault/internal/proto"
	"github.com/dmitrijs2005/seedvault/internal/server/ledger"
	"github.com/dmitrijs2005/seedvault/internal/server/models"
)

// VaultService is what the handlers call into; services.VaultService
// implements it.
type VaultService interface {
	Submit(ctx context.Context, op ledger.Op, envelope string) (*ledger.Result, error)
	Airdrop(ctx context.Context, addr keys.PublicKey, lamports uint64) (*models.Account, error)
	Account(ctx context.Context, addr keys.PublicKey) (*models.Account, error)
	DeriveVault(depositor, extraSeed keys.PublicKey) (keys.PublicKey, uint8, error)
}

// RPCRecorder counts finished calls, see metrics.Collector.
type RPCRecorder interface {
	RPCDone(method, code string)
}

type nopRecorder struct{}

func (nopRecorder) RPCDone(string, string) {}

type GRPCServer struct {
	pb.UnimplementedVaultServiceServer
	address  string
	vault    VaultService
	recorder RPCRecorder
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, vs VaultService, rec RPCRecorder) *GRPCServer {
	if l == nil {
		l = logging.Nop{}
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		vault:    vs,
		recorder: rec,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	pb.RegisterVaultServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())
	return srv.Serve(lis)
}
