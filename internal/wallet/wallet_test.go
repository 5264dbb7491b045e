package wallet

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	bip39 "github.com/tyler-smith/go-bip39"
)

const (
	knownKey     = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	knownAddress = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
)

func TestGenerate(t *testing.T) {
	w, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !common.IsHexAddress(w.Address) {
		t.Errorf("bad address %q", w.Address)
	}
	if len(w.PrivateKey) != 66 || !strings.HasPrefix(w.PrivateKey, "0x") {
		t.Errorf("bad private key length %d", len(w.PrivateKey))
	}
	if !bip39.IsMnemonicValid(w.Mnemonic) || len(strings.Fields(w.Mnemonic)) != 12 {
		t.Errorf("bad mnemonic %q", w.Mnemonic)
	}

	again, err := FromPrivateKey(w.PrivateKey)
	if err != nil {
		t.Fatalf("from private key: %v", err)
	}
	if again.Address != w.Address {
		t.Errorf("key and address disagree: %s vs %s", again.Address, w.Address)
	}

	other, _ := Generate()
	if other.Address == w.Address {
		t.Error("two generated wallets share an address")
	}
}

func TestFromPrivateKey(t *testing.T) {
	for _, key := range []string{knownKey, strings.TrimPrefix(knownKey, "0x"), "  " + knownKey + "\n"} {
		w, err := FromPrivateKey(key)
		if err != nil {
			t.Fatalf("FromPrivateKey(%q): %v", key, err)
		}
		if w.Address != knownAddress || w.PrivateKey != knownKey || w.Mnemonic != "" {
			t.Errorf("unexpected identity %+v", w)
		}
	}
}

func TestFromPrivateKey_Invalid(t *testing.T) {
	for _, key := range []string{"", "0x1234", "zz" + strings.Repeat("0", 62)} {
		_, err := FromPrivateKey(key)
		var ike *InvalidKeyError
		if !errors.As(err, &ike) {
			t.Errorf("FromPrivateKey(%q): expected InvalidKeyError, got %v", key, err)
		}
	}
}

func TestLoadPrivateKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "privates.txt")
	if err := os.WriteFile(path, []byte("# keys\n\n"+knownKey+"\n  abc  \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	keys, err := LoadPrivateKeys(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(keys) != 2 || keys[0] != knownKey || keys[1] != "abc" {
		t.Errorf("unexpected keys %v", keys)
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	_ = os.WriteFile(empty, []byte("# nothing\n"), 0o600)
	if _, err := LoadPrivateKeys(empty); err == nil {
		t.Error("expected error for empty key file")
	}
}
