package mnemonic

import (
	"crypto/ecdsa"
	"fmt"

	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
	bip39 "github.com/tyler-smith/go-bip39"
)

// DefaultPath is the first account of the standard Ethereum BIP-44 branch.
const DefaultPath = "m/44'/60'/0'/0/0"

type Derived struct {
	Mnemonic string
	Path     string
	Priv     *ecdsa.PrivateKey
	Address  string
}

func NewMnemonic(strength int) (string, error) {
	if strength == 0 {
		strength = 128 // 12 words
	}
	entropy, err := bip39.NewEntropy(strength)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// Derive returns the account at path for mn (empty BIP-39 passphrase).
func Derive(mn, path string) (*Derived, error) {
	if !bip39.IsMnemonicValid(mn) {
		return nil, fmt.Errorf("invalid mnemonic")
	}
	if path == "" {
		path = DefaultPath
	}
	w, err := hdwallet.NewFromSeed(bip39.NewSeed(mn, ""))
	if err != nil {
		return nil, err
	}
	dp, err := hdwallet.ParseDerivationPath(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	acct, err := w.Derive(dp, false)
	if err != nil {
		return nil, err
	}
	priv, err := w.PrivateKey(acct)
	if err != nil {
		return nil, err
	}
	return &Derived{
		Mnemonic: mn,
		Path:     path,
		Priv:     priv,
		Address:  acct.Address.Hex(),
	}, nil
}
