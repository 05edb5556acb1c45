// Package vault implements the custodial vault program: a deterministic
// address deriver and the two instructions that open and close a vault.
//
// A vault lives at FindProgramAddress(["anchor_vault", depositor, extraSeed],
// programID). Nothing is stored about it besides its balance; every
// instruction re-derives the address from the request and refuses to act on
// any other account. Deposit creates and funds the vault in one step.
// Withdraw drains it to the depositor and removes it, so the same seed pair
// can later be used again from scratch.
//
// The program is stateless. Atomicity, signature checks and account locking
// belong to the Host that executes it.
package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/seedvault/internal/common"
	"github.com/dmitrijs2005/seedvault/internal/keys"
	"github.com/dmitrijs2005/seedvault/internal/logging"
)

// DefaultProgramID is the address the vault program is deployed under.
var DefaultProgramID = keys.MustParse("Dhmc6b1boQ6WSgnNojLRnLSu8atQnV3RsJWP1B1E733E")

// VaultSpace is the payload size of a vault account. It only holds lamports.
const VaultSpace uint64 = 0

// DepositRequest opens a vault and funds it with Amount lamports.
type DepositRequest struct {
	Depositor keys.PublicKey
	ExtraSeed keys.PublicKey
	// Vault is the account the caller presents as the vault.
	Vault keys.PublicKey
	// Bump, when set, is used instead of searching for the canonical one.
	Bump   *uint8
	Amount uint64
}

// WithdrawRequest drains and closes a vault.
type WithdrawRequest struct {
	Depositor keys.PublicKey
	ExtraSeed keys.PublicKey
	Vault     keys.PublicKey
	Bump      *uint8
}

// Receipt describes a committed instruction.
type Receipt struct {
	Vault    keys.PublicKey
	Bump     uint8
	Lamports uint64
}

// Program executes vault instructions against a Host.
type Program struct {
	deriver Deriver
	logger  logging.Logger
}

// NewProgram returns the vault program deployed at programID.
func NewProgram(programID keys.PublicKey, logger logging.Logger) *Program {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Program{
		deriver: NewDeriver(programID),
		logger:  logger.With("program", programID.String()),
	}
}

// ID returns the program address.
func (p *Program) ID() keys.PublicKey {
	return p.deriver.ProgramID
}

// Deriver returns the address deriver bound to this program.
func (p *Program) Deriver() Deriver {
	return p.deriver
}

// Deposit creates the vault for (Depositor, ExtraSeed) and moves Amount
// lamports into it. Amount must exceed the rent-exempt floor of a
// zero-byte account, which keeps the new vault rent exempt on its own.
func (p *Program) Deposit(ctx context.Context, host Host, req DepositRequest) (*Receipt, error) {
	p.logger.Debug(ctx, "Instruction: Deposit", "depositor", req.Depositor.String(), "amount", req.Amount)

	if !host.IsSigner(req.Depositor) {
		return nil, fmt.Errorf("deposit: %w", common.ErrUnauthorized)
	}

	bump, err := p.deriver.Verify(req.Vault, req.Depositor, req.ExtraSeed, req.Bump)
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}

	floor := host.MinimumBalance(VaultSpace)
	if req.Amount <= floor {
		return nil, fmt.Errorf("deposit: %w: %d lamports, must exceed %d", common.ErrInvalidAmount, req.Amount, floor)
	}

	// The host refuses double allocation on its own; checking first gives
	// the caller a precise error without relying on that.
	_, err = host.Account(ctx, req.Vault)
	switch {
	case err == nil:
		return nil, fmt.Errorf("deposit: %w: %s", common.ErrAccountAlreadyExists, req.Vault)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("deposit: %w", err)
	}

	if err := host.CreateAccount(ctx, req.Depositor, req.Vault, VaultSpace, p.ID()); err != nil {
		return nil, fmt.Errorf("deposit: create vault: %w", err)
	}
	if err := host.Transfer(ctx, req.Depositor, req.Vault, req.Amount); err != nil {
		return nil, fmt.Errorf("deposit: fund vault: %w", err)
	}

	return &Receipt{Vault: req.Vault, Bump: bump, Lamports: req.Amount}, nil
}

// Withdraw sends the vault's whole balance back to the depositor and closes
// the account. An absent or empty vault is common.ErrInvalidAmount.
func (p *Program) Withdraw(ctx context.Context, host Host, req WithdrawRequest) (*Receipt, error) {
	p.logger.Debug(ctx, "Instruction: Withdraw", "depositor", req.Depositor.String())

	if !host.IsSigner(req.Depositor) {
		return nil, fmt.Errorf("withdraw: %w", common.ErrUnauthorized)
	}

	bump, err := p.deriver.Verify(req.Vault, req.Depositor, req.ExtraSeed, req.Bump)
	if err != nil {
		return nil, fmt.Errorf("withdraw: %w", err)
	}

	acc, err := host.Account(ctx, req.Vault)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("withdraw: %w: no vault at %s", common.ErrInvalidAmount, req.Vault)
		}
		return nil, fmt.Errorf("withdraw: %w", err)
	}
	if acc.Owner != p.ID() {
		return nil, fmt.Errorf("withdraw: %w: %s is not owned by the program", common.ErrAddressMismatch, req.Vault)
	}
	if acc.Lamports == 0 {
		return nil, fmt.Errorf("withdraw: %w: vault is empty", common.ErrInvalidAmount)
	}

	if err := host.CloseAccount(ctx, req.Vault, req.Depositor); err != nil {
		return nil, fmt.Errorf("withdraw: close vault: %w", err)
	}

	return &Receipt{Vault: req.Vault, Bump: bump, Lamports: acc.Lamports}, nil
}
