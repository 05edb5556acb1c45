package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/dmitrijs2005/seedvault/internal/common"
	"github.com/dmitrijs2005/seedvault/internal/keys"
	"github.com/dmitrijs2005/seedvault/internal/server/models"
	"github.com/dmitrijs2005/seedvault/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/seedvault/internal/vault"
)

type entry struct {
	acc     models.Account
	initial uint64
	stored  bool // present in storage when the invocation started
	live    bool // present now
	touched bool
}

// invocation buffers every account change of one instruction. Nothing
// reaches the repository until flush, and flush only runs after the program
// and the rent check succeed.
type invocation struct {
	repo      accounts.Repository
	rent      Rent
	programID keys.PublicKey
	signers   map[keys.PublicKey]struct{}

	entries map[keys.PublicKey]*entry
	order   []keys.PublicKey
}

var _ vault.Host = (*invocation)(nil)

func newInvocation(repo accounts.Repository, rent Rent, programID keys.PublicKey, signers []keys.PublicKey) *invocation {
	inv := &invocation{
		repo:      repo,
		rent:      rent,
		programID: programID,
		signers:   make(map[keys.PublicKey]struct{}, len(signers)),
		entries:   map[keys.PublicKey]*entry{},
	}
	for _, s := range signers {
		inv.signers[s] = struct{}{}
	}
	return inv
}

func (inv *invocation) load(ctx context.Context, addr keys.PublicKey) (*entry, error) {
	if e, ok := inv.entries[addr]; ok {
		return e, nil
	}

	e := &entry{acc: models.Account{Address: addr}}
	acc, err := inv.repo.GetForUpdate(ctx, addr)
	switch {
	case err == nil:
		e.acc = *acc
		e.initial = acc.Lamports
		e.stored, e.live = true, true
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("load %s: %w", addr, err)
	}

	inv.entries[addr] = e
	inv.order = append(inv.order, addr)
	return e, nil
}

func (inv *invocation) IsSigner(key keys.PublicKey) bool {
	_, ok := inv.signers[key]
	return ok
}

func (inv *invocation) MinimumBalance(space uint64) uint64 {
	return inv.rent.MinimumBalance(space)
}

func (inv *invocation) Account(ctx context.Context, addr keys.PublicKey) (*vault.AccountInfo, error) {
	e, err := inv.load(ctx, addr)
	if err != nil {
		return nil, err
	}
	if !e.live {
		return nil, common.ErrorNotFound
	}
	return &vault.AccountInfo{
		Address:  e.acc.Address,
		Lamports: e.acc.Lamports,
		Owner:    e.acc.Owner,
		Space:    e.acc.Space,
	}, nil
}

func (inv *invocation) CreateAccount(ctx context.Context, payer, addr keys.PublicKey, space uint64, owner keys.PublicKey) error {
	if !inv.IsSigner(payer) {
		return fmt.Errorf("create account: payer %s: %w", payer, common.ErrUnauthorized)
	}
	e, err := inv.load(ctx, addr)
	if err != nil {
		return err
	}
	if e.live {
		return fmt.Errorf("create account: %w: %s", common.ErrAccountAlreadyExists, addr)
	}

	e.acc = models.Account{Address: addr, Owner: owner, Space: space}
	e.live, e.touched = true, true
	return nil
}

// debit removes lamports from an account the caller may spend from: one
// that signed, or one owned by the running program.
func (inv *invocation) debit(ctx context.Context, addr keys.PublicKey, lamports uint64) (*entry, error) {
	e, err := inv.load(ctx, addr)
	if err != nil {
		return nil, err
	}
	if !e.live {
		return nil, fmt.Errorf("%w: %s does not exist", common.ErrInsufficientFunds, addr)
	}
	if !inv.IsSigner(addr) && e.acc.Owner != inv.programID {
		return nil, fmt.Errorf("debit %s: %w", addr, common.ErrUnauthorized)
	}
	if e.acc.Lamports < lamports {
		return nil, fmt.Errorf("%w: %s has %d, needs %d", common.ErrInsufficientFunds, addr, e.acc.Lamports, lamports)
	}
	return e, nil
}

func (inv *invocation) credit(ctx context.Context, addr keys.PublicKey, lamports uint64) (*entry, error) {
	e, err := inv.load(ctx, addr)
	if err != nil {
		return nil, err
	}
	if lamports > math.MaxInt64 || e.acc.Lamports > math.MaxInt64-lamports {
		return nil, fmt.Errorf("credit %s: %w", addr, accounts.ErrOverflow)
	}
	if !e.live {
		// Transfers to an unknown address open a plain wallet there.
		e.acc = models.Account{Address: addr}
		e.live = true
	}
	return e, nil
}

func (inv *invocation) Transfer(ctx context.Context, from, to keys.PublicKey, lamports uint64) error {
	src, err := inv.debit(ctx, from, lamports)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	if from == to {
		return nil
	}
	dst, err := inv.credit(ctx, to, lamports)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	src.acc.Lamports -= lamports
	dst.acc.Lamports += lamports
	src.touched, dst.touched = true, true
	return nil
}

func (inv *invocation) CloseAccount(ctx context.Context, addr, dest keys.PublicKey) error {
	e, err := inv.load(ctx, addr)
	if err != nil {
		return err
	}
	if !e.live {
		return fmt.Errorf("close: %w: %s", common.ErrorNotFound, addr)
	}
	if e.acc.Owner != inv.programID {
		return fmt.Errorf("close %s: %w", addr, common.ErrUnauthorized)
	}
	if addr == dest {
		return fmt.Errorf("close %s: %w: destination is the account itself", addr, common.ErrInvalidAmount)
	}

	d, err := inv.credit(ctx, dest, e.acc.Lamports)
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}
	d.acc.Lamports += e.acc.Lamports
	e.acc.Lamports = 0
	e.live = false
	d.touched, e.touched = true, true
	return nil
}

// chargeFee takes the signature fee from payer after the instruction ran,
// so funds released by the instruction can pay for it.
func (inv *invocation) chargeFee(ctx context.Context, payer keys.PublicKey, fee uint64) error {
	if fee == 0 {
		return nil
	}
	e, err := inv.debit(ctx, payer, fee)
	if err != nil {
		return fmt.Errorf("fee: %w", err)
	}
	e.acc.Lamports -= fee
	e.touched = true
	return nil
}

// checkRent enforces the post-state rule on touched accounts: a live
// account either holds at least its rent-exempt minimum or is emptied and
// removed.
func (inv *invocation) checkRent() error {
	for _, addr := range inv.order {
		e := inv.entries[addr]
		if !e.touched || !e.live {
			continue
		}
		if e.acc.Lamports == 0 {
			e.live = false
			continue
		}
		if !inv.rent.IsExempt(e.acc.Lamports, e.acc.Space) {
			return fmt.Errorf("%w: %s holds %d, needs %d", common.ErrInsufficientFundsForRent,
				addr, e.acc.Lamports, inv.rent.MinimumBalance(e.acc.Space))
		}
	}
	return nil
}

// lockedDelta is the change in lamports held by program-owned accounts.
func (inv *invocation) lockedDelta() int64 {
	var delta int64
	for _, addr := range inv.order {
		e := inv.entries[addr]
		if e.acc.Owner != inv.programID {
			continue
		}
		var now uint64
		if e.live {
			now = e.acc.Lamports
		}
		delta += int64(now) - int64(e.initial)
	}
	return delta
}

func (inv *invocation) flush(ctx context.Context) error {
	for _, addr := range inv.order {
		e := inv.entries[addr]
		if !e.touched {
			continue
		}
		var err error
		switch {
		case e.stored && !e.live:
			err = inv.repo.Delete(ctx, addr)
		case !e.stored && e.live:
			acc := e.acc
			err = inv.repo.Create(ctx, &acc)
		case e.stored && e.live:
			acc := e.acc
			err = inv.repo.Update(ctx, &acc)
		}
		if err != nil {
			return fmt.Errorf("flush %s: %w", addr, err)
		}
	}
	return nil
}
