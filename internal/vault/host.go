package vault

import (
	"context"

	"github.com/dmitrijs2005/seedvault/internal/keys"
)

// AccountInfo is the host's view of an account as exposed to the program.
type AccountInfo struct {
	Address  keys.PublicKey
	Lamports uint64
	Owner    keys.PublicKey
	Space    uint64
}

// Host is everything the vault program needs from the ledger it runs on.
// Implementations apply all calls made during one instruction as a single
// atomic transition: either every effect commits or none is observable.
type Host interface {
	// IsSigner reports whether key signed the current request.
	IsSigner(key keys.PublicKey) bool

	// MinimumBalance is the rent-exempt floor for an account holding space
	// payload bytes.
	MinimumBalance(space uint64) uint64

	// Account returns the live account at addr, or common.ErrorNotFound.
	Account(ctx context.Context, addr keys.PublicKey) (*AccountInfo, error)

	// CreateAccount allocates addr with space bytes, owned by owner, paid
	// for by payer. Fails with common.ErrAccountAlreadyExists if addr is live.
	CreateAccount(ctx context.Context, payer, addr keys.PublicKey, space uint64, owner keys.PublicKey) error

	// Transfer moves lamports between two live accounts. Fails with
	// common.ErrInsufficientFunds if from cannot cover it.
	Transfer(ctx context.Context, from, to keys.PublicKey, lamports uint64) error

	// CloseAccount moves the full balance of addr to dest and removes addr.
	CloseAccount(ctx context.Context, addr, dest keys.PublicKey) error
}
