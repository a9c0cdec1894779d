package instructions

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/stablevault/solana-vault-api/solana_helpers"
)

func assertMeta(t *testing.T, got *solana.AccountMeta, key solana.PublicKey, writable, signer bool) {
	t.Helper()
	if !got.PublicKey.Equals(key) {
		t.Errorf("expected account %s, got %s", key, got.PublicKey)
	}
	if got.IsWritable != writable {
		t.Errorf("account %s: expected writable=%t", key, writable)
	}
	if got.IsSigner != signer {
		t.Errorf("account %s: expected signer=%t", key, signer)
	}
}

func assertDiscriminator(t *testing.T, data []byte, method string) {
	t.Helper()
	if !bytes.Equal(data[:8], solana_helpers.Discriminator(method)) {
		t.Errorf("expected %q discriminator prefix", method)
	}
}

func amountAt(data []byte, offset int) uint64 {
	return binary.LittleEndian.Uint64(data[offset : offset+8])
}

func TestInitializeVaultAccountOrder(t *testing.T) {
	p := InitializeVaultParams{
		ProgramID: solana.NewWallet().PublicKey(),
		Owner:     solana.NewWallet().PublicKey(),
		Mint:      solana.NewWallet().PublicKey(),
	}

	ix, err := InitializeVault(p)
	if err != nil {
		t.Fatal(err)
	}

	vault, _, _ := solana_helpers.VaultAddress(p.Owner, p.ProgramID)
	vaultATA, _ := solana_helpers.AssociatedTokenAddress(vault, p.Mint)

	accounts := ix.Accounts()
	if len(accounts) != 8 {
		t.Fatalf("expected 8 accounts, got %d", len(accounts))
	}
	assertMeta(t, accounts[0], p.Owner, true, true)
	assertMeta(t, accounts[1], vault, true, false)
	assertMeta(t, accounts[2], vaultATA, true, false)
	assertMeta(t, accounts[3], p.Mint, false, false)
	assertMeta(t, accounts[4], solana.SystemProgramID, false, false)
	assertMeta(t, accounts[5], solana.TokenProgramID, false, false)
	assertMeta(t, accounts[6], solana.SPLAssociatedTokenAccountProgramID, false, false)
	assertMeta(t, accounts[7], solana.SysVarRentPubkey, false, false)

	data, err := ix.Data()
	if err != nil {
		t.Fatal(err)
	}
	assertDiscriminator(t, data, "initialize_vault")
	if len(data) != 8 {
		t.Errorf("expected no arguments, got %d bytes", len(data))
	}
}

func TestDepositAmountEncoding(t *testing.T) {
	p := DepositParams{
		ProgramID: solana.NewWallet().PublicKey(),
		Owner:     solana.NewWallet().PublicKey(),
		Mint:      solana.NewWallet().PublicKey(),
		Amount:    42,
	}

	ix, err := Deposit(p)
	if err != nil {
		t.Fatal(err)
	}

	vault, _, _ := solana_helpers.VaultAddress(p.Owner, p.ProgramID)
	ownerATA, _ := solana_helpers.AssociatedTokenAddress(p.Owner, p.Mint)
	vaultATA, _ := solana_helpers.AssociatedTokenAddress(vault, p.Mint)

	accounts := ix.Accounts()
	if len(accounts) != 6 {
		t.Fatalf("expected 6 accounts, got %d", len(accounts))
	}
	assertMeta(t, accounts[0], p.Owner, true, true)
	assertMeta(t, accounts[1], p.Owner, false, false)
	assertMeta(t, accounts[2], vault, true, false)
	assertMeta(t, accounts[3], ownerATA, true, false)
	assertMeta(t, accounts[4], vaultATA, true, false)
	assertMeta(t, accounts[5], solana.TokenProgramID, false, false)

	data, err := ix.Data()
	if err != nil {
		t.Fatal(err)
	}
	assertDiscriminator(t, data, "deposit")
	if amountAt(data, 8) != 42 {
		t.Errorf("expected amount 42, got %d", amountAt(data, 8))
	}
}

func TestWithdrawVaultAccountPrecedesOwner(t *testing.T) {
	p := WithdrawParams{
		ProgramID: solana.NewWallet().PublicKey(),
		Owner:     solana.NewWallet().PublicKey(),
		Mint:      solana.NewWallet().PublicKey(),
		Amount:    77,
	}

	ix, err := Withdraw(p)
	if err != nil {
		t.Fatal(err)
	}

	vault, _, _ := solana_helpers.VaultAddress(p.Owner, p.ProgramID)
	ownerATA, _ := solana_helpers.AssociatedTokenAddress(p.Owner, p.Mint)
	vaultATA, _ := solana_helpers.AssociatedTokenAddress(vault, p.Mint)

	accounts := ix.Accounts()
	if len(accounts) != 6 {
		t.Fatalf("expected 6 accounts, got %d", len(accounts))
	}
	assertMeta(t, accounts[3], vaultATA, true, false)
	assertMeta(t, accounts[4], ownerATA, true, false)

	data, _ := ix.Data()
	assertDiscriminator(t, data, "withdraw")
	if amountAt(data, 8) != 77 {
		t.Errorf("expected amount 77, got %d", amountAt(data, 8))
	}
}

func TestWithdrawMultisigExcludesAuthorityFromCosigners(t *testing.T) {
	authority := solana.NewWallet().PublicKey()
	cosigner := solana.NewWallet().PublicKey()

	p := WithdrawMultisigParams{
		ProgramID:    solana.NewWallet().PublicKey(),
		Owner:        solana.NewWallet().PublicKey(),
		Authority:    authority,
		Amount:       500,
		OtherSigners: []solana.PublicKey{authority, cosigner},
	}

	ix, err := WithdrawMultisig(p)
	if err != nil {
		t.Fatal(err)
	}

	accounts := ix.Accounts()
	if len(accounts) != 3 {
		t.Fatalf("expected 3 accounts (authority listed once), got %d", len(accounts))
	}
	assertMeta(t, accounts[0], authority, true, true)
	assertMeta(t, accounts[1], p.Owner, false, false)
	assertMeta(t, accounts[2], cosigner, false, true)
}

func TestTransferCollateralAccountOrder(t *testing.T) {
	p := TransferCollateralParams{
		ProgramID:     solana.NewWallet().PublicKey(),
		CallerProgram: solana.NewWallet().PublicKey(),
		FromOwner:     solana.NewWallet().PublicKey(),
		ToOwner:       solana.NewWallet().PublicKey(),
		Mint:          solana.NewWallet().PublicKey(),
		Amount:        123,
	}

	ix, err := TransferCollateral(p)
	if err != nil {
		t.Fatal(err)
	}

	fromVault, _, _ := solana_helpers.VaultAddress(p.FromOwner, p.ProgramID)
	toVault, _, _ := solana_helpers.VaultAddress(p.ToOwner, p.ProgramID)
	authority, _, _ := solana_helpers.VaultAuthorityAddress(p.ProgramID)
	fromATA, _ := solana_helpers.AssociatedTokenAddress(fromVault, p.Mint)
	toATA, _ := solana_helpers.AssociatedTokenAddress(toVault, p.Mint)

	accounts := ix.Accounts()
	if len(accounts) != 8 {
		t.Fatalf("expected 8 accounts, got %d", len(accounts))
	}
	assertMeta(t, accounts[0], p.CallerProgram, false, false)
	assertMeta(t, accounts[1], authority, false, false)
	assertMeta(t, accounts[2], solana.SysVarInstructionsPubkey, false, false)
	assertMeta(t, accounts[3], fromVault, true, false)
	assertMeta(t, accounts[4], toVault, true, false)
	assertMeta(t, accounts[5], fromATA, true, false)
	assertMeta(t, accounts[6], toATA, true, false)
	assertMeta(t, accounts[7], solana.TokenProgramID, false, false)

	data, _ := ix.Data()
	assertDiscriminator(t, data, "transfer_collateral")
	if amountAt(data, 8) != 123 {
		t.Errorf("expected amount 123, got %d", amountAt(data, 8))
	}
}

func TestYieldBuilders(t *testing.T) {
	p := YieldParams{
		ProgramID:    solana.NewWallet().PublicKey(),
		Owner:        solana.NewWallet().PublicKey(),
		Amount:       10,
		YieldProgram: solana.NewWallet().PublicKey(),
	}

	cases := []struct {
		method string
		build  func(YieldParams) (solana.Instruction, error)
	}{
		{"yield_deposit", YieldDeposit},
		{"yield_withdraw", YieldWithdraw},
		{"compound_yield", CompoundYield},
	}

	for _, c := range cases {
		ix, err := c.build(p)
		if err != nil {
			t.Fatal(err)
		}
		accounts := ix.Accounts()
		if len(accounts) != 5 {
			t.Fatalf("%s: expected 5 accounts, got %d", c.method, len(accounts))
		}
		if !accounts[0].IsSigner {
			t.Errorf("%s: expected owner to sign", c.method)
		}
		if !accounts[4].PublicKey.Equals(p.YieldProgram) {
			t.Errorf("%s: expected yield program last", c.method)
		}
		data, _ := ix.Data()
		assertDiscriminator(t, data, c.method)
		if amountAt(data, 8) != p.Amount {
			t.Errorf("%s: expected amount %d, got %d", c.method, p.Amount, amountAt(data, 8))
		}
	}
}

func TestPositionManagerOpcodes(t *testing.T) {
	p := PositionManagerParams{
		PositionManagerProgramID: solana.NewWallet().PublicKey(),
		VaultProgramID:           solana.NewWallet().PublicKey(),
		Owner:                    solana.NewWallet().PublicKey(),
		Amount:                   5,
	}

	lock, err := PositionManagerLock(p)
	if err != nil {
		t.Fatal(err)
	}
	p.Amount = 6
	unlock, err := PositionManagerUnlock(p)
	if err != nil {
		t.Fatal(err)
	}

	lockData, _ := lock.Data()
	unlockData, _ := unlock.Data()

	if lockData[0] != 10 || unlockData[0] != 11 {
		t.Errorf("expected opcodes 10/11, got %d/%d", lockData[0], unlockData[0])
	}
	if amountAt(lockData, 1) != 5 || amountAt(unlockData, 1) != 6 {
		t.Error("unexpected amount encoding after opcode byte")
	}
	if !lock.ProgramID().Equals(p.PositionManagerProgramID) {
		t.Error("lock must target the position manager program")
	}
}

func TestScheduleTimelockPayload(t *testing.T) {
	p := ScheduleTimelockParams{
		ProgramID:       solana.NewWallet().PublicKey(),
		Owner:           solana.NewWallet().PublicKey(),
		Amount:          1000,
		DurationSeconds: 3600,
	}

	ix, err := ScheduleTimelock(p)
	if err != nil {
		t.Fatal(err)
	}

	data, _ := ix.Data()
	if data[0] != 20 {
		t.Errorf("expected opcode 20, got %d", data[0])
	}
	if amountAt(data, 1) != 1000 {
		t.Error("unexpected amount encoding")
	}
	if int64(amountAt(data, 9)) != 3600 {
		t.Error("unexpected duration encoding")
	}
}

func TestComputeBudgetPair(t *testing.T) {
	ixs := ComputeBudget(1_400_000, 1_000)
	if len(ixs) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(ixs))
	}
	for _, ix := range ixs {
		if ix.ProgramID().String() != "ComputeBudget111111111111111111111111111111" {
			t.Errorf("unexpected program id %s", ix.ProgramID())
		}
	}
}

func TestSetRiskLevelPayload(t *testing.T) {
	p := SetRiskLevelParams{
		ProgramID:  solana.NewWallet().PublicKey(),
		Governance: solana.NewWallet().PublicKey(),
		RiskLevel:  3,
	}

	ix, err := SetRiskLevel(p)
	if err != nil {
		t.Fatal(err)
	}

	data, _ := ix.Data()
	assertDiscriminator(t, data, "set_risk_level")
	if len(data) != 9 || data[8] != 3 {
		t.Errorf("expected single risk level byte 3, got %v", data[8:])
	}
}
