// Package keys defines the 32-byte account identity used across the ledger:
// ed25519 public keys for signers and off-curve derived addresses for vaults.
// The text form is base58, the same alphabet wallets use for these keys.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Size is the byte length of a PublicKey.
const Size = 32

// ErrInvalidKey is returned when a textual or binary key has the wrong shape.
var ErrInvalidKey = errors.New("invalid public key")

// PublicKey is an account address. It is either an ed25519 public key
// (a point on the curve) or a program derived address (deliberately off it).
type PublicKey [Size]byte

// Zero is the all-zero key. It is never a valid signer.
var Zero PublicKey

// String returns the base58 encoding of k.
func (k PublicKey) String() string {
	return base58.Encode(k[:])
}

// Bytes returns a copy of the raw key bytes.
func (k PublicKey) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, k[:])
	return b
}

// IsZero reports whether k is the all-zero key.
func (k PublicKey) IsZero() bool {
	return k == Zero
}

// IsOnCurve reports whether k decodes to a valid ed25519 point, that is,
// whether some private key could in principle sign for it.
func (k PublicKey) IsOnCurve() bool {
	return IsOnCurve(k[:])
}

// MarshalText implements encoding.TextMarshaler.
func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// IsOnCurve reports whether b is the canonical encoding of an ed25519 point.
func IsOnCurve(b []byte) bool {
	if len(b) != Size {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// Parse decodes a base58 key.
func Parse(s string) (PublicKey, error) {
	var k PublicKey
	if s == "" {
		return k, fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return k, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return FromBytes(raw)
}

// MustParse is like Parse but panics on error. Intended for constants.
func MustParse(s string) PublicKey {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

// FromBytes copies a 32-byte slice into a PublicKey.
func FromBytes(b []byte) (PublicKey, error) {
	var k PublicKey
	if len(b) != Size {
		return k, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, Size, len(b))
	}
	copy(k[:], b)
	return k, nil
}

// Keypair is an ed25519 signing identity.
type Keypair struct {
	Public  PublicKey
	Private ed25519.PrivateKey
}

// NewKeypair generates a fresh random keypair.
func NewKeypair() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	var k PublicKey
	copy(k[:], pub)
	return &Keypair{Public: k, Private: priv}, nil
}

// KeypairFromSeed rebuilds a keypair from a 32-byte ed25519 seed.
func KeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed must be %d bytes", ErrInvalidKey, ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	var k PublicKey
	copy(k[:], priv.Public().(ed25519.PublicKey))
	return &Keypair{Public: k, Private: priv}, nil
}

// Ed25519 returns k as a verification key. Only meaningful for on-curve keys.
func (k PublicKey) Ed25519() ed25519.PublicKey {
	return ed25519.PublicKey(k.Bytes())
}

// NewRandom returns a random 32-byte value usable as an extra seed.
// It is not guaranteed to be on the curve and has no private key.
func NewRandom() (PublicKey, error) {
	var k PublicKey
	if _, err := rand.Read(k[:]); err != nil {
		return k, err
	}
	return k, nil
}
