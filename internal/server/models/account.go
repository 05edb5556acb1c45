// Package models defines the records the ledger persists.
package models

import (
	"time"

	"github.com/dmitrijs2005/seedvault/internal/keys"
)

// Account is one ledger account: a wallet (owned by nobody) or a vault
// (owned by the vault program). Only lamports change over its lifetime.
type Account struct {
	Address   keys.PublicKey `json:"address"`
	Lamports  uint64         `json:"lamports"`
	Owner     keys.PublicKey `json:"owner"`
	Space     uint64         `json:"space"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Clone returns a copy of a that shares no memory with it.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}
