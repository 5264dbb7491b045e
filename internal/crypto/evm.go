package crypto

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// ParsePrivKey accepts a 64-char hex key with or without the 0x prefix.
func ParsePrivKey(s string) (*ecdsa.PrivateKey, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	return gethcrypto.HexToECDSA(raw)
}

func PrivToHex(priv *ecdsa.PrivateKey) string {
	return "0x" + fmt.Sprintf("%x", gethcrypto.FromECDSA(priv))
}

func AddressHex(priv *ecdsa.PrivateKey) string {
	return gethcrypto.PubkeyToAddress(priv.PublicKey).Hex()
}
