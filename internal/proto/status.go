package proto

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/seedvault/internal/common"
)

// ErrorDomain tags the ErrorInfo detail attached to every mapped status.
const ErrorDomain = "seedvault"

var statusTable = []struct {
	err    error
	code   codes.Code
	reason string
}{
	{common.ErrVaultAlreadyExists, codes.AlreadyExists, "VAULT_ALREADY_EXISTS"},
	{common.ErrAccountAlreadyExists, codes.AlreadyExists, "ACCOUNT_ALREADY_IN_USE"},
	{common.ErrInvalidAmount, codes.InvalidArgument, "INVALID_AMOUNT"},
	{common.ErrInvalidSeeds, codes.InvalidArgument, "INVALID_SEEDS"},
	{common.ErrNotAWallet, codes.InvalidArgument, "NOT_A_WALLET"},
	{common.ErrAddressMismatch, codes.PermissionDenied, "CONSTRAINT_SEEDS"},
	{common.ErrUnauthorized, codes.Unauthenticated, "ACCOUNT_NOT_SIGNER"},
	{common.ErrReplayed, codes.Unauthenticated, "REPLAYED"},
	{common.ErrReplayFull, codes.ResourceExhausted, "REPLAY_CACHE_FULL"},
	{common.ErrInvalidToken, codes.Unauthenticated, "INVALID_ENVELOPE"},
	{common.ErrInsufficientFundsForRent, codes.FailedPrecondition, "INSUFFICIENT_FUNDS_FOR_RENT"},
	{common.ErrInsufficientFunds, codes.FailedPrecondition, "INSUFFICIENT_FUNDS"},
	{common.ErrAirdropDisabled, codes.FailedPrecondition, "AIRDROP_DISABLED"},
	{common.ErrorNotFound, codes.NotFound, "NOT_FOUND"},
}

// ToStatus converts a service error into a gRPC status error carrying an
// ErrorInfo with a stable reason and, where one exists, the numeric program
// error code. Errors outside the table become codes.Internal without
// leaking their text.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	for _, e := range statusTable {
		if !errors.Is(err, e.err) {
			continue
		}
		info := &errdetails.ErrorInfo{Reason: e.reason, Domain: ErrorDomain}
		if c := common.Code(err); c != common.CodeUnknown {
			info.Metadata = map[string]string{"code": strconv.FormatUint(uint64(c), 10)}
		}
		st, derr := status.New(e.code, err.Error()).WithDetails(info)
		if derr != nil {
			return status.Error(e.code, err.Error())
		}
		return st.Err()
	}
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}

// FromStatus is the client-side inverse of ToStatus: a status carrying a
// known reason becomes an error wrapping the matching sentinel. Anything
// else, including transport failures, is returned unchanged so callers can
// still inspect status.Code.
func FromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.OK {
		return err
	}
	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != ErrorDomain {
			continue
		}
		for _, e := range statusTable {
			if e.reason == info.GetReason() {
				return &RemoteError{sentinel: e.err, status: st}
			}
		}
	}
	return err
}

// RemoteError is a server-side failure reported over gRPC. It matches its
// sentinel with errors.Is and keeps the original status.
type RemoteError struct {
	sentinel error
	status   *status.Status
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("server: %s", e.status.Message())
}

func (e *RemoteError) Unwrap() error { return e.sentinel }

// GRPCStatus lets status.FromError and status.Code see through the wrapper.
func (e *RemoteError) GRPCStatus() *status.Status { return e.status }
