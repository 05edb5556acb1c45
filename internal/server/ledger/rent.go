package ledger

// Rent fixes the balance an account needs to stay alive. Accounts below
// the floor are not allowed to exist; there is no periodic rent collection.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionYears      uint64
}

// AccountStorageOverhead is charged on top of an account's payload bytes.
const AccountStorageOverhead uint64 = 128

// DefaultRent matches the mainnet parameters.
var DefaultRent = Rent{LamportsPerByteYear: 3480, ExemptionYears: 2}

// MinimumBalance is the rent-exempt floor for an account with space payload
// bytes.
func (r Rent) MinimumBalance(space uint64) uint64 {
	return (AccountStorageOverhead + space) * r.LamportsPerByteYear * r.ExemptionYears
}

// IsExempt reports whether lamports cover the floor for space bytes.
func (r Rent) IsExempt(lamports, space uint64) bool {
	return lamports >= r.MinimumBalance(space)
}
