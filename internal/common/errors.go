// Package common defines the sentinel errors shared by the vault program, the
// host ledger, the transport and the client. Callers should use errors.Is to
// match these values; wrapping with fmt.Errorf("...: %w") is expected.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Program errors, raised by the vault instructions themselves.
	ErrVaultAlreadyExists = errors.New("vault already exists")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrAddressMismatch    = errors.New("vault address mismatch")
	ErrUnauthorized       = errors.New("depositor did not sign")

	// Host errors, raised by the ledger runtime.
	ErrAccountAlreadyExists     = errors.New("account already in use")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrInsufficientFundsForRent = errors.New("insufficient funds for rent")
	ErrInvalidSeeds             = errors.New("invalid seeds")
	ErrAirdropDisabled          = errors.New("airdrop disabled")
	ErrNotAWallet               = errors.New("address is not a wallet key")

	// Envelope errors (invalid, expired or repeated signed requests).
	ErrInvalidToken = errors.New("invalid token")
	ErrReplayed     = errors.New("request already processed")
	ErrReplayFull   = errors.New("too many requests in flight")

	ErrorInternal = errors.New("internal error")
)

// Numeric codes reported to clients. Program errors use the custom error
// range starting at 6000; framework and system failures keep their
// well-known numbers so tooling can recognise them.
const (
	CodeAccountAlreadyInUse        uint32 = 0
	CodeResultWithNegativeLamports uint32 = 1
	CodeConstraintSeeds            uint32 = 2006
	CodeAccountNotSigner           uint32 = 3010
	CodeVaultAlreadyExists         uint32 = 6000
	CodeInvalidAmount              uint32 = 6001
	CodeUnknown                    uint32 = ^uint32(0)
)

var codes = []struct {
	err  error
	code uint32
}{
	{ErrVaultAlreadyExists, CodeVaultAlreadyExists},
	{ErrInvalidAmount, CodeInvalidAmount},
	{ErrAddressMismatch, CodeConstraintSeeds},
	{ErrUnauthorized, CodeAccountNotSigner},
	{ErrAccountAlreadyExists, CodeAccountAlreadyInUse},
	{ErrInsufficientFunds, CodeResultWithNegativeLamports},
}

// Code returns the numeric code for err, or CodeUnknown when err does not
// wrap one of the coded sentinels.
func Code(err error) uint32 {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeUnknown
}
