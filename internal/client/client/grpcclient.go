package client

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dmitrijs2005/seedvault/internal/keys"
	pb "github.com/dmitrijs2005/seedvault/internal/proto"
)

// Client is the ledger API the wallet uses.
type Client interface {
	Ping(ctx context.Context) error
	Deposit(ctx context.Context, envelope string) (pb.Receipt, error)
	Withdraw(ctx context.Context, envelope string) (pb.Receipt, error)
	Airdrop(ctx context.Context, addr keys.PublicKey, lamports uint64) (pb.Account, error)
	Account(ctx context.Context, addr keys.PublicKey) (pb.Account, error)
	DeriveVault(ctx context.Context, depositor, seed keys.PublicKey) (pb.Derived, error)
	Close() error
}

type GRPCClient struct {
	conn    *grpc.ClientConn
	client  pb.VaultServiceClient
	retries uint64
	backoff time.Duration
}

var _ Client = (*GRPCClient)(nil)

// NewGRPCClient prepares an insecure connection to endpoint. No I/O happens
// until the first call. Extra dial options are appended, which tests use to
// plug in an in-memory dialer.
func NewGRPCClient(endpoint string, retries uint64, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{retries: retries, backoff: 100 * time.Millisecond}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.retryInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewVaultServiceClient(conn)
	return c, nil
}

// retryInterceptor reruns calls that failed with codes.Unavailable, backing
// off exponentially. Only transport-level unavailability is retried, so a
// signed envelope is never submitted twice after the server has seen it.
func (c *GRPCClient) retryInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	b := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := invoker(ctx, method, req, reply, cc, opts...)
		if status.Code(err) == codes.Unavailable {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *GRPCClient) mapError(err error) error {
	if status.Code(err) == codes.Unavailable {
		return fmt.Errorf("%w: %v", ErrUnavailable, status.Convert(err).Message())
	}
	return pb.FromStatus(err)
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	resp, err := c.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return c.mapError(err)
	}
	if resp.GetValue() != "OK" {
		return fmt.Errorf("unexpected ping response %q", resp.GetValue())
	}
	return nil
}

func (c *GRPCClient) Deposit(ctx context.Context, envelope string) (pb.Receipt, error) {
	resp, err := c.client.Deposit(ctx, wrapperspb.String(envelope))
	if err != nil {
		return pb.Receipt{}, c.mapError(err)
	}
	return pb.ReceiptFromStruct(resp)
}

func (c *GRPCClient) Withdraw(ctx context.Context, envelope string) (pb.Receipt, error) {
	resp, err := c.client.Withdraw(ctx, wrapperspb.String(envelope))
	if err != nil {
		return pb.Receipt{}, c.mapError(err)
	}
	return pb.ReceiptFromStruct(resp)
}

func (c *GRPCClient) Airdrop(ctx context.Context, addr keys.PublicKey, lamports uint64) (pb.Account, error) {
	req, err := pb.AirdropRequest{Address: addr, Lamports: lamports}.ToStruct()
	if err != nil {
		return pb.Account{}, err
	}
	resp, err := c.client.Airdrop(ctx, req)
	if err != nil {
		return pb.Account{}, c.mapError(err)
	}
	return pb.AccountFromStruct(resp)
}

func (c *GRPCClient) Account(ctx context.Context, addr keys.PublicKey) (pb.Account, error) {
	resp, err := c.client.GetAccount(ctx, wrapperspb.String(addr.String()))
	if err != nil {
		return pb.Account{}, c.mapError(err)
	}
	return pb.AccountFromStruct(resp)
}

func (c *GRPCClient) DeriveVault(ctx context.Context, depositor, seed keys.PublicKey) (pb.Derived, error) {
	req, err := pb.DeriveRequest{Depositor: depositor, Seed: seed}.ToStruct()
	if err != nil {
		return pb.Derived{}, err
	}
	resp, err := c.client.DeriveVault(ctx, req)
	if err != nil {
		return pb.Derived{}, c.mapError(err)
	}
	return pb.DerivedFromStruct(resp)
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}
