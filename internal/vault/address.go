package vault

import (
	"crypto/sha256"
	"fmt"

	"github.com/dmitrijs2005/seedvault/internal/common"
	"github.com/dmitrijs2005/seedvault/internal/keys"
)

const (
	// DomainTag is the first seed of every vault address.
	DomainTag = "anchor_vault"

	// MaxSeeds and MaxSeedLen bound the inputs of CreateProgramAddress.
	MaxSeeds   = 16
	MaxSeedLen = 32

	pdaMarker = "ProgramDerivedAddress"
)

// CreateProgramAddress hashes seeds and programID into an address. The result
// must not be a valid ed25519 point, so that no private key can ever sign for
// it; such inputs are rejected with common.ErrInvalidSeeds.
func CreateProgramAddress(seeds [][]byte, programID keys.PublicKey) (keys.PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return keys.Zero, fmt.Errorf("%w: %d seeds, max %d", common.ErrInvalidSeeds, len(seeds), MaxSeeds)
	}

	h := sha256.New()
	for i, s := range seeds {
		if len(s) > MaxSeedLen {
			return keys.Zero, fmt.Errorf("%w: seed %d is %d bytes, max %d", common.ErrInvalidSeeds, i, len(s), MaxSeedLen)
		}
		h.Write(s)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var addr keys.PublicKey
	copy(addr[:], h.Sum(nil))

	if addr.IsOnCurve() {
		return keys.Zero, fmt.Errorf("%w: address is on curve", common.ErrInvalidSeeds)
	}
	return addr, nil
}

// FindProgramAddress searches bumps from 255 down and returns the first
// off-curve address together with its bump. The bump found this way is the
// canonical one for the seeds.
func FindProgramAddress(seeds [][]byte, programID keys.PublicKey) (keys.PublicKey, uint8, error) {
	if len(seeds)+1 > MaxSeeds {
		return keys.Zero, 0, fmt.Errorf("%w: %d seeds leave no room for a bump", common.ErrInvalidSeeds, len(seeds))
	}
	for i, s := range seeds {
		if len(s) > MaxSeedLen {
			return keys.Zero, 0, fmt.Errorf("%w: seed %d is %d bytes, max %d", common.ErrInvalidSeeds, i, len(s), MaxSeedLen)
		}
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}
		if addr, err := CreateProgramAddress(withBump, programID); err == nil {
			return addr, uint8(bump), nil
		}
	}
	return keys.Zero, 0, fmt.Errorf("%w: no viable bump", common.ErrInvalidSeeds)
}

// Deriver computes vault addresses for one program. It holds no other state
// and is safe for concurrent use.
type Deriver struct {
	ProgramID keys.PublicKey
}

// NewDeriver returns a Deriver bound to programID.
func NewDeriver(programID keys.PublicKey) Deriver {
	return Deriver{ProgramID: programID}
}

func seedsFor(depositor, extraSeed keys.PublicKey) [][]byte {
	return [][]byte{[]byte(DomainTag), depositor[:], extraSeed[:]}
}

// Derive returns the vault address and canonical bump for a depositor and
// extra seed.
func (d Deriver) Derive(depositor, extraSeed keys.PublicKey) (keys.PublicKey, uint8, error) {
	return FindProgramAddress(seedsFor(depositor, extraSeed), d.ProgramID)
}

// AddressWithBump recomputes the vault address using an explicit bump.
func (d Deriver) AddressWithBump(depositor, extraSeed keys.PublicKey, bump uint8) (keys.PublicKey, error) {
	seeds := append(seedsFor(depositor, extraSeed), []byte{bump})
	return CreateProgramAddress(seeds, d.ProgramID)
}

// Verify checks that presented is the vault address for depositor and
// extraSeed. When bump is nil the canonical bump is searched for; otherwise
// the claimed bump is used as is. Any disagreement, including a claimed bump
// that lands on the curve, is common.ErrAddressMismatch. The bump that
// produced the match is returned.
func (d Deriver) Verify(presented, depositor, extraSeed keys.PublicKey, bump *uint8) (uint8, error) {
	var (
		expected keys.PublicKey
		b        uint8
		err      error
	)
	if bump == nil {
		expected, b, err = d.Derive(depositor, extraSeed)
	} else {
		b = *bump
		expected, err = d.AddressWithBump(depositor, extraSeed, b)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrAddressMismatch, err)
	}
	if expected != presented {
		return 0, fmt.Errorf("%w: presented %s, derived %s (bump %d)", common.ErrAddressMismatch, presented, expected, b)
	}
	return b, nil
}
