// Package ledger is the host the vault program runs on. It keeps account
// balances in a repository, enforces rent and signature fees, and applies
// each instruction as one all-or-nothing storage transaction.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/seedvault/internal/common"
	"github.com/dmitrijs2005/seedvault/internal/keys"
	"github.com/dmitrijs2005/seedvault/internal/logging"
	"github.com/dmitrijs2005/seedvault/internal/server/models"
	"github.com/dmitrijs2005/seedvault/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/seedvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/seedvault/internal/vault"
)

// Op names a vault instruction.
type Op string

const (
	OpDeposit  Op = "deposit"
	OpWithdraw Op = "withdraw"
)

// ParseOp validates an instruction name.
func ParseOp(s string) (Op, error) {
	switch Op(s) {
	case OpDeposit, OpWithdraw:
		return Op(s), nil
	default:
		return "", fmt.Errorf("%w: unknown instruction %q", common.ErrInvalidToken, s)
	}
}

// Instruction is one authenticated request to the vault program. The first
// signer pays the fee.
type Instruction struct {
	Op        Op
	Signers   []keys.PublicKey
	Depositor keys.PublicKey
	ExtraSeed keys.PublicKey
	Vault     keys.PublicKey
	Bump      *uint8
	// Amount is ignored by withdraw.
	Amount uint64
}

// Result is returned for a committed instruction.
type Result struct {
	Op      Op
	Receipt *vault.Receipt
	Fee     uint64
}

// Observer is told about every finished instruction.
type Observer interface {
	InstructionDone(op Op, err error, elapsed time.Duration)
	LockedChanged(delta int64)
}

type nopObserver struct{}

func (nopObserver) InstructionDone(Op, error, time.Duration) {}
func (nopObserver) LockedChanged(int64)                      {}

// Config carries the economic parameters of the ledger.
type Config struct {
	Rent                 Rent
	LamportsPerSignature uint64
	// AirdropLimit caps a single airdrop; 0 turns airdrops off.
	AirdropLimit uint64
}

type Runtime struct {
	repos    repomanager.RepositoryManager
	program  *vault.Program
	cfg      Config
	logger   logging.Logger
	observer Observer
}

// Option tweaks a Runtime.
type Option func(*Runtime)

// WithObserver reports instruction outcomes to o.
func WithObserver(o Observer) Option {
	return func(r *Runtime) {
		if o != nil {
			r.observer = o
		}
	}
}

func NewRuntime(repos repomanager.RepositoryManager, program *vault.Program, cfg Config, logger logging.Logger, opts ...Option) *Runtime {
	if logger == nil {
		logger = logging.Nop{}
	}
	if cfg.Rent == (Rent{}) {
		cfg.Rent = DefaultRent
	}
	r := &Runtime{
		repos:    repos,
		program:  program,
		cfg:      cfg,
		logger:   logger.With("module", "ledger"),
		observer: nopObserver{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ProgramID returns the id of the hosted vault program.
func (r *Runtime) ProgramID() keys.PublicKey {
	return r.program.ID()
}

// Deriver returns the address deriver of the hosted program.
func (r *Runtime) Deriver() vault.Deriver {
	return r.program.Deriver()
}

// Rent returns the rent parameters in force.
func (r *Runtime) Rent() Rent {
	return r.cfg.Rent
}

// Execute runs ins atomically: on any error, including a failed fee or rent
// check, no account changes.
func (r *Runtime) Execute(ctx context.Context, ins Instruction) (*Result, error) {
	start := time.Now()
	res, err := r.execute(ctx, ins)
	r.observer.InstructionDone(ins.Op, err, time.Since(start))

	if err != nil {
		r.logger.Warn(ctx, "instruction failed", "op", string(ins.Op), "depositor", ins.Depositor.String(), "error", err)
		return nil, err
	}
	r.logger.Info(ctx, "instruction committed",
		"op", string(ins.Op), "vault", res.Receipt.Vault.String(), "lamports", res.Receipt.Lamports, "fee", res.Fee)
	return res, nil
}

func (r *Runtime) execute(ctx context.Context, ins Instruction) (*Result, error) {
	if len(ins.Signers) == 0 {
		return nil, fmt.Errorf("%s: no signers: %w", ins.Op, common.ErrUnauthorized)
	}
	if _, err := ParseOp(string(ins.Op)); err != nil {
		return nil, err
	}

	var (
		res   *Result
		delta int64
	)
	err := r.repos.WithinTx(ctx, func(ctx context.Context, repo accounts.Repository) error {
		inv := newInvocation(repo, r.cfg.Rent, r.program.ID(), ins.Signers)

		var (
			receipt *vault.Receipt
			err     error
		)
		switch ins.Op {
		case OpDeposit:
			receipt, err = r.program.Deposit(ctx, inv, vault.DepositRequest{
				Depositor: ins.Depositor,
				ExtraSeed: ins.ExtraSeed,
				Vault:     ins.Vault,
				Bump:      ins.Bump,
				Amount:    ins.Amount,
			})
		case OpWithdraw:
			receipt, err = r.program.Withdraw(ctx, inv, vault.WithdrawRequest{
				Depositor: ins.Depositor,
				ExtraSeed: ins.ExtraSeed,
				Vault:     ins.Vault,
				Bump:      ins.Bump,
			})
		}
		if err != nil {
			return err
		}

		if err := inv.chargeFee(ctx, ins.Signers[0], r.cfg.LamportsPerSignature); err != nil {
			return err
		}
		if err := inv.checkRent(); err != nil {
			return err
		}
		if err := inv.flush(ctx); err != nil {
			return err
		}

		res = &Result{Op: ins.Op, Receipt: receipt, Fee: r.cfg.LamportsPerSignature}
		delta = inv.lockedDelta()
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.observer.LockedChanged(delta)
	return res, nil
}

// Airdrop mints lamports into addr. It exists to fund wallets on test
// ledgers and is refused when AirdropLimit is 0. Only ed25519 keys can
// receive: an off-curve address may be a vault, and an account created there
// by anything but Deposit would block that vault for good.
func (r *Runtime) Airdrop(ctx context.Context, addr keys.PublicKey, lamports uint64) (*models.Account, error) {
	if r.cfg.AirdropLimit == 0 {
		return nil, common.ErrAirdropDisabled
	}
	if !addr.IsOnCurve() {
		return nil, fmt.Errorf("%w: %s", common.ErrNotAWallet, addr)
	}
	if lamports == 0 || lamports > r.cfg.AirdropLimit {
		return nil, fmt.Errorf("%w: airdrop of %d, limit %d", common.ErrInvalidAmount, lamports, r.cfg.AirdropLimit)
	}

	var out *models.Account
	err := r.repos.WithinTx(ctx, func(ctx context.Context, repo accounts.Repository) error {
		acc, err := repo.Credit(ctx, addr, lamports)
		if err != nil {
			return err
		}
		if !r.cfg.Rent.IsExempt(acc.Lamports, acc.Space) {
			return fmt.Errorf("%w: %s would hold %d, needs %d", common.ErrInsufficientFundsForRent,
				addr, acc.Lamports, r.cfg.Rent.MinimumBalance(acc.Space))
		}
		out = acc
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info(ctx, "airdrop", "address", addr.String(), "lamports", lamports, "balance", out.Lamports)
	return out, nil
}

// Account returns the committed state of addr.
func (r *Runtime) Account(ctx context.Context, addr keys.PublicKey) (*models.Account, error) {
	return r.repos.Accounts().Get(ctx, addr)
}

// Accounts lists every committed account.
func (r *Runtime) Accounts(ctx context.Context) ([]*models.Account, error) {
	return r.repos.Accounts().List(ctx)
}

// LockedLamports sums the balances held by program-owned accounts.
func (r *Runtime) LockedLamports(ctx context.Context) (uint64, error) {
	list, err := r.Accounts(ctx)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, a := range list {
		if a.Owner == r.program.ID() {
			total += a.Lamports
		}
	}
	return total, nil
}
