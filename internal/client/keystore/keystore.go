// Package keystore keeps the wallet's ed25519 identity on disk, encrypted
// under the user's password.
package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/seedvault/internal/common"
	"github.com/dmitrijs2005/seedvault/internal/cryptox"
	"github.com/dmitrijs2005/seedvault/internal/filex"
	"github.com/dmitrijs2005/seedvault/internal/keys"
)

const fileVersion = 1

// ErrNoKeystore is returned by Load when the file does not exist yet.
var ErrNoKeystore = errors.New("no keystore")

// File is the on-disk form. The public key is kept in clear so the wallet
// can show its address before it is unlocked.
type File struct {
	Version int            `json:"version"`
	Public  keys.PublicKey `json:"public"`
	Secret  cryptox.Sealed `json:"secret"`
}

// Create generates a new identity, seals it under password and writes it
// to path. An existing file is never overwritten.
func Create(path string, password []byte) (*keys.Keypair, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("keystore %s already exists", path)
	}
	kp, err := keys.NewKeypair()
	if err != nil {
		return nil, err
	}
	if err := Save(path, kp, password); err != nil {
		return nil, err
	}
	return kp, nil
}

// Save seals kp's seed and writes it to path with owner-only permissions.
func Save(path string, kp *keys.Keypair, password []byte) error {
	seed := kp.Private.Seed()
	defer common.WipeByteArray(seed)

	sealed, err := cryptox.Seal(seed, password)
	if err != nil {
		return fmt.Errorf("seal key: %w", err)
	}
	data, err := json.MarshalIndent(File{Version: fileVersion, Public: kp.Public, Secret: *sealed}, "", "  ")
	if err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("write keystore: %w", err)
	}
	return nil
}

// Load reads the keystore at path without decrypting it.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s", ErrNoKeystore, path)
	}
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("keystore %s: %w", path, err)
	}
	if f.Version != fileVersion {
		return nil, fmt.Errorf("keystore %s: unsupported version %d", path, f.Version)
	}
	return &f, nil
}

// Unlock decrypts the identity. A wrong password is cryptox.ErrWrongPassword.
func (f *File) Unlock(password []byte) (*keys.Keypair, error) {
	seed, err := cryptox.Open(&f.Secret, password)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(seed)

	kp, err := keys.KeypairFromSeed(seed)
	if err != nil {
		return nil, err
	}
	if kp.Public != f.Public {
		return nil, fmt.Errorf("keystore public key does not match its secret")
	}
	return kp, nil
}
