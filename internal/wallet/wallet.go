// Package wallet creates the EVM identities that get registered.
package wallet

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"WalletReg/internal/crypto"
	"WalletReg/internal/mnemonic"
)

// Identity is immutable once created. PrivateKey and Mnemonic are secrets.
type Identity struct {
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
	Mnemonic   string `json:"mnemonic,omitempty"`
}

// InvalidKeyError is returned by FromPrivateKey for keys that do not parse.
type InvalidKeyError struct {
	Err error
}

func (e *InvalidKeyError) Error() string { return "invalid private key: " + e.Err.Error() }
func (e *InvalidKeyError) Unwrap() error { return e.Err }

// Generate creates a fresh 12-word mnemonic and the first account derived from it.
func Generate() (Identity, error) {
	mn, err := mnemonic.NewMnemonic(128)
	if err != nil {
		return Identity{}, fmt.Errorf("mnemonic generate: %w", err)
	}
	d, err := mnemonic.Derive(mn, mnemonic.DefaultPath)
	if err != nil {
		return Identity{}, fmt.Errorf("mnemonic derive: %w", err)
	}
	return Identity{
		Address:    d.Address,
		PrivateKey: crypto.PrivToHex(d.Priv),
		Mnemonic:   d.Mnemonic,
	}, nil
}

// FromPrivateKey wraps an existing key. The result has no mnemonic.
func FromPrivateKey(key string) (Identity, error) {
	priv, err := crypto.ParsePrivKey(key)
	if err != nil {
		return Identity{}, &InvalidKeyError{Err: err}
	}
	return Identity{
		Address:    crypto.AddressHex(priv),
		PrivateKey: crypto.PrivToHex(priv),
	}, nil
}

// LoadPrivateKeys reads one key per line; blank lines and # comments are skipped.
func LoadPrivateKeys(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keys file: %w", err)
	}
	defer f.Close()

	var keys []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		keys = append(keys, raw)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan keys file: %w", err)
	}
	if len(keys) == 0 {
		return nil, errors.New("keys file is empty")
	}
	return keys, nil
}
