// Package cryptox protects wallet key material at rest: a password is
// stretched with argon2id and the secret is sealed with AES-256-GCM.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/seedvault/internal/common"
)

const (
	SaltSize = 16
	KeySize  = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// ErrWrongPassword is returned by Open when the password does not match.
var ErrWrongPassword = errors.New("wrong password")

// Sealed is an encrypted secret plus everything needed to open it again
// except the password.
type Sealed struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
	Verifier   []byte `json:"verifier"`
}

// DeriveMasterKey stretches password into a 32-byte AES key.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, KeySize)
}

// MakeVerifier hashes the master key so a wrong password can be told apart
// from a corrupted file.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts secret under a key derived from password and a fresh salt.
func Seal(secret, password []byte) (*Sealed, error) {
	salt := common.GenerateRandByteArray(SaltSize)
	key := DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(aead.NonceSize())

	return &Sealed{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, secret, salt),
		Verifier:   MakeVerifier(key),
	}, nil
}

// Open reverses Seal. The caller owns the returned slice and should wipe it
// once done.
func Open(s *Sealed, password []byte) ([]byte, error) {
	if s == nil || len(s.Salt) == 0 {
		return nil, errors.New("sealed secret is empty")
	}
	key := DeriveMasterKey(password, s.Salt)
	defer common.WipeByteArray(key)

	if subtle.ConstantTimeCompare(MakeVerifier(key), s.Verifier) != 1 {
		return nil, ErrWrongPassword
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	plain, err := aead.Open(nil, s.Nonce, s.Ciphertext, s.Salt)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plain, nil
}
