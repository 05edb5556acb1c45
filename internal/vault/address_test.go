package vault

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/seedvault/internal/common"
	"github.com/dmitrijs2005/seedvault/internal/keys"
)

func mustKeypair(t *testing.T, fill byte) *keys.Keypair {
	t.Helper()
	kp, err := keys.KeypairFromSeed(bytes.Repeat([]byte{fill}, 32))
	require.NoError(t, err)
	return kp
}

func TestDeriver_Derive_Deterministic(t *testing.T) {
	d := NewDeriver(DefaultProgramID)
	depositor := mustKeypair(t, 1).Public
	seed := mustKeypair(t, 2).Public

	a1, b1, err := d.Derive(depositor, seed)
	require.NoError(t, err)
	a2, b2, err := d.Derive(depositor, seed)
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
	assert.False(t, a1.IsOnCurve(), "derived address must have no private key")
}

func TestDeriver_Derive_DistinctInputs(t *testing.T) {
	d := NewDeriver(DefaultProgramID)
	alice := mustKeypair(t, 1).Public
	bob := mustKeypair(t, 3).Public
	s1 := mustKeypair(t, 2).Public
	s2 := mustKeypair(t, 4).Public

	a, _, err := d.Derive(alice, s1)
	require.NoError(t, err)
	b, _, err := d.Derive(bob, s1)
	require.NoError(t, err)
	c, _, err := d.Derive(alice, s2)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)

	other := NewDeriver(mustKeypair(t, 9).Public)
	x, _, err := other.Derive(alice, s1)
	require.NoError(t, err)
	assert.NotEqual(t, a, x, "program id is part of the derivation")
}

func TestDeriver_AddressWithBump_MatchesCanonical(t *testing.T) {
	d := NewDeriver(DefaultProgramID)
	depositor := mustKeypair(t, 5).Public
	seed := mustKeypair(t, 6).Public

	addr, bump, err := d.Derive(depositor, seed)
	require.NoError(t, err)

	again, err := d.AddressWithBump(depositor, seed, bump)
	require.NoError(t, err)
	assert.Equal(t, addr, again)

	// every bump above the canonical one lands on the curve
	for b := 255; b > int(bump); b-- {
		_, err := d.AddressWithBump(depositor, seed, uint8(b))
		assert.ErrorIs(t, err, common.ErrInvalidSeeds)
	}
}

func TestDeriver_Verify(t *testing.T) {
	d := NewDeriver(DefaultProgramID)
	depositor := mustKeypair(t, 7).Public
	seed := mustKeypair(t, 8).Public
	addr, bump, err := d.Derive(depositor, seed)
	require.NoError(t, err)

	t.Run("canonical search", func(t *testing.T) {
		got, err := d.Verify(addr, depositor, seed, nil)
		require.NoError(t, err)
		assert.Equal(t, bump, got)
	})

	t.Run("explicit bump", func(t *testing.T) {
		b := bump
		got, err := d.Verify(addr, depositor, seed, &b)
		require.NoError(t, err)
		assert.Equal(t, bump, got)
	})

	t.Run("wrong address", func(t *testing.T) {
		_, err := d.Verify(depositor, depositor, seed, nil)
		assert.ErrorIs(t, err, common.ErrAddressMismatch)
	})

	t.Run("wrong depositor", func(t *testing.T) {
		_, err := d.Verify(addr, seed, depositor, nil)
		assert.ErrorIs(t, err, common.ErrAddressMismatch)
	})

	t.Run("wrong bump", func(t *testing.T) {
		b := bump - 1
		_, err := d.Verify(addr, depositor, seed, &b)
		assert.ErrorIs(t, err, common.ErrAddressMismatch)
	})
}

func TestDeriver_Verify_NonCanonicalBump(t *testing.T) {
	d := NewDeriver(DefaultProgramID)
	depositor := mustKeypair(t, 10).Public
	seed := mustKeypair(t, 11).Public
	_, canonical, err := d.Derive(depositor, seed)
	require.NoError(t, err)

	// find a lower bump that still yields an off-curve address
	for b := int(canonical) - 1; b >= 0; b-- {
		addr, err := d.AddressWithBump(depositor, seed, uint8(b))
		if err != nil {
			continue
		}
		claimed := uint8(b)
		got, err := d.Verify(addr, depositor, seed, &claimed)
		require.NoError(t, err)
		assert.Equal(t, claimed, got)

		_, err = d.Verify(addr, depositor, seed, nil)
		assert.ErrorIs(t, err, common.ErrAddressMismatch, "search only accepts the canonical address")
		return
	}
	t.Skip("no off-curve bump below canonical for these seeds")
}

func TestCreateProgramAddress_Limits(t *testing.T) {
	long := make([]byte, MaxSeedLen+1)
	_, err := CreateProgramAddress([][]byte{long}, DefaultProgramID)
	assert.ErrorIs(t, err, common.ErrInvalidSeeds)

	many := make([][]byte, MaxSeeds+1)
	for i := range many {
		many[i] = []byte{byte(i)}
	}
	_, err = CreateProgramAddress(many, DefaultProgramID)
	assert.ErrorIs(t, err, common.ErrInvalidSeeds)

	_, _, err = FindProgramAddress(many[:MaxSeeds], DefaultProgramID)
	assert.ErrorIs(t, err, common.ErrInvalidSeeds, "bump needs a free seed slot")

	_, _, err = FindProgramAddress([][]byte{long}, DefaultProgramID)
	assert.ErrorIs(t, err, common.ErrInvalidSeeds)
}
