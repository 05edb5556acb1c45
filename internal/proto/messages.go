package proto

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/seedvault/internal/keys"
)

// Message shapes carried inside structpb.Struct. Addresses are base58 and
// u64 values are decimal strings, so nothing is lost to float64.

// Receipt answers Deposit and Withdraw.
type Receipt struct {
	Op       string
	Vault    keys.PublicKey
	Bump     uint8
	Lamports uint64
	Fee      uint64
}

func (r Receipt) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"op":       r.Op,
		"vault":    r.Vault.String(),
		"bump":     float64(r.Bump),
		"lamports": formatU64(r.Lamports),
		"fee":      formatU64(r.Fee),
	})
}

func ReceiptFromStruct(s *structpb.Struct) (Receipt, error) {
	var (
		r   Receipt
		err error
	)
	r.Op = s.GetFields()["op"].GetStringValue()
	if r.Vault, err = keyField(s, "vault"); err != nil {
		return r, err
	}
	if r.Bump, err = bumpField(s, "bump"); err != nil {
		return r, err
	}
	if r.Lamports, err = u64Field(s, "lamports"); err != nil {
		return r, err
	}
	if r.Fee, err = u64Field(s, "fee"); err != nil {
		return r, err
	}
	return r, nil
}

// Account answers GetAccount and Airdrop.
type Account struct {
	Address   keys.PublicKey
	Lamports  uint64
	Owner     keys.PublicKey
	Space     uint64
	UpdatedAt time.Time
}

func (a Account) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"address":    a.Address.String(),
		"lamports":   formatU64(a.Lamports),
		"owner":      a.Owner.String(),
		"space":      formatU64(a.Space),
		"updated_at": a.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func AccountFromStruct(s *structpb.Struct) (Account, error) {
	var (
		a   Account
		err error
	)
	if a.Address, err = keyField(s, "address"); err != nil {
		return a, err
	}
	if a.Lamports, err = u64Field(s, "lamports"); err != nil {
		return a, err
	}
	if a.Owner, err = keyField(s, "owner"); err != nil {
		return a, err
	}
	if a.Space, err = u64Field(s, "space"); err != nil {
		return a, err
	}
	if ts := s.GetFields()["updated_at"].GetStringValue(); ts != "" {
		if a.UpdatedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return a, fmt.Errorf("field updated_at: %w", err)
		}
	}
	return a, nil
}

// AirdropRequest asks the ledger to mint lamports into Address.
type AirdropRequest struct {
	Address  keys.PublicKey
	Lamports uint64
}

func (r AirdropRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"address":  r.Address.String(),
		"lamports": formatU64(r.Lamports),
	})
}

func AirdropRequestFromStruct(s *structpb.Struct) (AirdropRequest, error) {
	var (
		r   AirdropRequest
		err error
	)
	if r.Address, err = keyField(s, "address"); err != nil {
		return r, err
	}
	if r.Lamports, err = u64Field(s, "lamports"); err != nil {
		return r, err
	}
	return r, nil
}

// DeriveRequest asks for the vault of (Depositor, Seed).
type DeriveRequest struct {
	Depositor keys.PublicKey
	Seed      keys.PublicKey
}

func (r DeriveRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"depositor": r.Depositor.String(),
		"seed":      r.Seed.String(),
	})
}

func DeriveRequestFromStruct(s *structpb.Struct) (DeriveRequest, error) {
	var (
		r   DeriveRequest
		err error
	)
	if r.Depositor, err = keyField(s, "depositor"); err != nil {
		return r, err
	}
	if r.Seed, err = keyField(s, "seed"); err != nil {
		return r, err
	}
	return r, nil
}

// Derived is the answer to DeriveVault.
type Derived struct {
	Address keys.PublicKey
	Bump    uint8
}

func (d Derived) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"address": d.Address.String(),
		"bump":    float64(d.Bump),
	})
}

func DerivedFromStruct(s *structpb.Struct) (Derived, error) {
	var (
		d   Derived
		err error
	)
	if d.Address, err = keyField(s, "address"); err != nil {
		return d, err
	}
	if d.Bump, err = bumpField(s, "bump"); err != nil {
		return d, err
	}
	return d, nil
}

func formatU64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func keyField(s *structpb.Struct, name string) (keys.PublicKey, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return keys.Zero, fmt.Errorf("field %s: missing", name)
	}
	k, err := keys.Parse(v.GetStringValue())
	if err != nil {
		return keys.Zero, fmt.Errorf("field %s: %w", name, err)
	}
	return k, nil
}

func u64Field(s *structpb.Struct, name string) (uint64, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("field %s: missing", name)
	}
	n, err := strconv.ParseUint(v.GetStringValue(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", name, err)
	}
	return n, nil
}

func bumpField(s *structpb.Struct, name string) (uint8, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("field %s: missing", name)
	}
	f := v.GetNumberValue()
	if f < 0 || f > math.MaxUint8 || f != math.Trunc(f) {
		return 0, fmt.Errorf("field %s: %v is not a bump", name, f)
	}
	return uint8(f), nil
}
