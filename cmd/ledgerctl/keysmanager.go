package main

// keysmanager.go re-scopes original_source/iroha-cli/impl/keys_manager_impl.cpp's
// KeysManagerImpl to this core's Ed25519 signatories: load(account) reads a
// hex-encoded keypair from <account>.pub/<account>.priv, create(account,
// passphrase) derives a deterministic keypair from the passphrase and
// refuses to overwrite existing keys only when *both* files are already
// present, exactly mirroring the C++ `if (pb_file && pr_file) return false`.

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrKeysExist = errors.New("ledgerctl: both key files already exist")

// KeysManager loads and creates Ed25519 keypairs for a named account,
// persisted as hex text in <dir>/<accountName>.{pub,priv}.
type KeysManager struct {
	dir         string
	accountName string
}

func NewKeysManager(dir, accountName string) *KeysManager {
	return &KeysManager{dir: dir, accountName: accountName}
}

func (m *KeysManager) pubPath() string  { return filepath.Join(m.dir, m.accountName+".pub") }
func (m *KeysManager) privPath() string { return filepath.Join(m.dir, m.accountName+".priv") }

// Load reads an existing keypair from disk.
func (m *KeysManager) Load() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pubHex, err := os.ReadFile(m.pubPath())
	if err != nil {
		return nil, nil, fmt.Errorf("load public key: %w", err)
	}
	privHex, err := os.ReadFile(m.privPath())
	if err != nil {
		return nil, nil, fmt.Errorf("load private key: %w", err)
	}
	pub, err := hex.DecodeString(string(pubHex))
	if err != nil {
		return nil, nil, fmt.Errorf("decode public key: %w", err)
	}
	priv, err := hex.DecodeString(string(privHex))
	if err != nil {
		return nil, nil, fmt.Errorf("decode private key: %w", err)
	}
	return ed25519.PublicKey(pub), ed25519.PrivateKey(priv), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Create derives a deterministic Ed25519 keypair from passPhrase (the seed
// is sha256(passPhrase), matching the original's create_seed(pass_phrase))
// and writes both files. If both key files already exist, nothing is
// written and ErrKeysExist is returned.
func (m *KeysManager) Create(passPhrase string) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	if fileExists(m.pubPath()) && fileExists(m.privPath()) {
		return nil, nil, ErrKeysExist
	}
	seed := sha256.Sum256([]byte(passPhrase))
	priv := ed25519.NewKeyFromSeed(seed[:])
	pub := priv.Public().(ed25519.PublicKey)

	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(m.pubPath(), []byte(hex.EncodeToString(pub)), 0o600); err != nil {
		return nil, nil, fmt.Errorf("write public key: %w", err)
	}
	if err := os.WriteFile(m.privPath(), []byte(hex.EncodeToString(priv)), 0o600); err != nil {
		return nil, nil, fmt.Errorf("write private key: %w", err)
	}
	return pub, priv, nil
}
