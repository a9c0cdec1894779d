// Package solana_helpers provides convenience functions for Solana
// interaction: program-derived addresses, instruction discriminators and
// transaction submission helpers.
package solana_helpers

import (
	"github.com/gagliardetto/solana-go"

	"github.com/stablevault/solana-vault-api/errors"
)

// Fixed seed tags used by the vault program. These must match the on-chain
// program byte for byte.
const (
	VaultSeed          = "vault"
	VaultAuthoritySeed = "vault_authority"
)

// VaultAddress derives the per-owner vault address and its bump seed.
func VaultAddress(owner, program solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(VaultSeed), owner.Bytes()}, program)
}

// VaultAuthorityAddress derives the singular vault authority address and its
// bump seed.
func VaultAuthorityAddress(program solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(VaultAuthoritySeed)}, program)
}

// AssociatedTokenAddress derives the associated token account for a wallet
// and mint.
func AssociatedTokenAddress(wallet, mint solana.PublicKey) (solana.PublicKey, error) {
	a, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	return a, err
}

// ValidateAddress parses a base58 address, converting parse failures into a
// request error.
func ValidateAddress(address string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, errors.InvalidInput(`not a valid address: "%s"`, address)
	}
	return pk, nil
}
