package solana_helpers

import (
	"crypto/sha256"
)

// Discriminator returns the 8-byte method discriminator for an Anchor-style
// program method: the first 8 bytes of sha256("global:" + method). The
// on-chain program performs the same computation to route the call, so this
// must stay bit-for-bit reproducible.
func Discriminator(method string) []byte {
	h := sha256.Sum256([]byte("global:" + method))
	d := make([]byte, 8)
	copy(d, h[:8])
	return d
}
