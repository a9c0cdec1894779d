package solana_helpers

import (
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// LoadFeePayer loads the custodial fee payer key. A base64 encoded key takes
// precedence over the keypair file so that deployments can avoid mounting
// key material on disk.
func LoadFeePayer(encoded, file string) (solana.PrivateKey, error) {
	if encoded != "" {
		b, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 fee payer key: %w", err)
		}
		if len(b) != 64 {
			return nil, fmt.Errorf("invalid fee payer key: expected 64 bytes, got %d", len(b))
		}
		return solana.PrivateKey(b), nil
	}

	key, err := solana.PrivateKeyFromSolanaKeygenFile(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read fee payer keypair file: %w", err)
	}
	return key, nil
}
