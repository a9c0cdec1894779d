package solana_helpers

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/google/go-cmp/cmp"
)

func TestVaultAddressIsDeterministic(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	program := solana.NewWallet().PublicKey()

	a1, bump1, err := VaultAddress(owner, program)
	if err != nil {
		t.Fatal(err)
	}
	a2, bump2, err := VaultAddress(owner, program)
	if err != nil {
		t.Fatal(err)
	}

	if !a1.Equals(a2) || bump1 != bump2 {
		t.Errorf("expected identical derivations, got %s/%d and %s/%d", a1, bump1, a2, bump2)
	}

	other, _, err := VaultAddress(solana.NewWallet().PublicKey(), program)
	if err != nil {
		t.Fatal(err)
	}
	if a1.Equals(other) {
		t.Error("different owners derived the same vault address")
	}
}

func TestVaultAuthorityAddressIsDeterministic(t *testing.T) {
	program := solana.NewWallet().PublicKey()

	a1, bump1, err := VaultAuthorityAddress(program)
	if err != nil {
		t.Fatal(err)
	}
	a2, bump2, err := VaultAuthorityAddress(program)
	if err != nil {
		t.Fatal(err)
	}

	if !a1.Equals(a2) || bump1 != bump2 {
		t.Error("expected identical derivations for the vault authority")
	}
}

func TestDiscriminatorIsStable(t *testing.T) {
	d1 := Discriminator("deposit")
	d2 := Discriminator("deposit")

	if len(d1) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(d1))
	}
	if !bytes.Equal(d1, d2) {
		t.Error("expected identical discriminators across calls")
	}
	if bytes.Equal(d1, Discriminator("withdraw")) {
		t.Error(`expected "deposit" and "withdraw" discriminators to differ`)
	}
}

func TestValidateAddress(t *testing.T) {
	valid := solana.NewWallet().PublicKey().String()
	if _, err := ValidateAddress(valid); err != nil {
		t.Errorf("expected %q to be valid: %v", valid, err)
	}
	if _, err := ValidateAddress("not-an-address"); err == nil {
		t.Error("expected an error for a malformed address")
	}
}

func TestDecodeVaultAccount(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	tokenAccount := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	yieldProgram := solana.NewWallet().PublicKey()
	signers := []solana.PublicKey{
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
	}

	buf := &bytes.Buffer{}
	buf.Write(Discriminator("collateral_vault"))
	buf.Write(owner.Bytes())
	buf.Write(tokenAccount.Bytes())
	buf.Write(mint.Bytes())
	for _, u := range []uint64{100000, 30000, 70000, 150000, 50000, 0, 0} {
		if err := binary.Write(buf, binary.LittleEndian, u); err != nil {
			t.Fatal(err)
		}
	}
	binary.Write(buf, binary.LittleEndian, int64(0)) // last compounded at
	buf.Write(yieldProgram.Bytes())
	binary.Write(buf, binary.LittleEndian, int64(1700000000)) // created at
	buf.WriteByte(254)                                        // bump
	buf.WriteByte(2)                                          // threshold
	binary.Write(buf, binary.LittleEndian, uint32(len(signers)))
	for _, s := range signers {
		buf.Write(s.Bytes())
	}

	v, err := decodeVaultAccount(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}

	if !v.Owner.Equals(owner) {
		t.Errorf("expected owner %s, got %s", owner, v.Owner)
	}
	if v.TotalBalance != 100000 || v.LockedBalance != 30000 || v.AvailableBalance != 70000 {
		t.Errorf("unexpected balances: %d/%d/%d", v.TotalBalance, v.LockedBalance, v.AvailableBalance)
	}
	if v.MultisigThreshold != 2 {
		t.Errorf("expected threshold 2, got %d", v.MultisigThreshold)
	}
	if diff := cmp.Diff(signers, v.MultisigSigners); diff != "" {
		t.Errorf("signer list mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeVaultAccountTooSmall(t *testing.T) {
	if _, err := decodeVaultAccount(make([]byte, 16)); err == nil {
		t.Error("expected an error for a truncated account")
	}
}
