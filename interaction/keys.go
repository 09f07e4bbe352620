package interaction

import (
	"fmt"

	"github.com/ElrondNetwork/elrond-sdk-erdgo"
)

// LoadSigningKey reads the adapter's private key from a PEM file and derives its address.
func LoadSigningKey(pemPath string) ([]byte, string, error) {
	if pemPath == "" {
		return nil, "", ErrMissingPemPath
	}
	sk, err := erdgo.LoadPrivateKeyFromPemFile(pemPath)
	if err != nil {
		return nil, "", fmt.Errorf("load %s: %w", pemPath, err)
	}
	address, err := erdgo.GetAddressFromPrivateKey(sk)
	if err != nil {
		return nil, "", fmt.Errorf("derive address: %w", err)
	}
	return sk, address, nil
}
