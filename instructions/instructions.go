// Package instructions builds the binary instructions accepted by the vault
// program: for every supported operation the exact ordered account list and
// a payload of an 8-byte method discriminator followed by little-endian
// encoded arguments.
package instructions

import (
	"github.com/gagliardetto/solana-go"

	"github.com/stablevault/solana-vault-api/solana_helpers"
)

type InitializeVaultParams struct {
	ProgramID solana.PublicKey
	Owner     solana.PublicKey
	Mint      solana.PublicKey
}

// InitializeVault creates the owner's vault account and its token account.
func InitializeVault(p InitializeVaultParams) (solana.Instruction, error) {
	vault, _, err := solana_helpers.VaultAddress(p.Owner, p.ProgramID)
	if err != nil {
		return nil, err
	}
	vaultATA, err := solana_helpers.AssociatedTokenAddress(vault, p.Mint)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(p.Owner).WRITE().SIGNER(),
		solana.Meta(vault).WRITE(),
		solana.Meta(vaultATA).WRITE(),
		solana.Meta(p.Mint),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SPLAssociatedTokenAccountProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	}

	return solana.NewInstruction(p.ProgramID, accounts, payload("initialize_vault")), nil
}

type DepositParams struct {
	ProgramID solana.PublicKey
	Owner     solana.PublicKey
	Mint      solana.PublicKey
	Amount    uint64
}

func Deposit(p DepositParams) (solana.Instruction, error) {
	vault, _, err := solana_helpers.VaultAddress(p.Owner, p.ProgramID)
	if err != nil {
		return nil, err
	}
	ownerATA, err := solana_helpers.AssociatedTokenAddress(p.Owner, p.Mint)
	if err != nil {
		return nil, err
	}
	vaultATA, err := solana_helpers.AssociatedTokenAddress(vault, p.Mint)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(p.Owner).WRITE().SIGNER(),
		solana.Meta(p.Owner),
		solana.Meta(vault).WRITE(),
		solana.Meta(ownerATA).WRITE(),
		solana.Meta(vaultATA).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}

	return solana.NewInstruction(p.ProgramID, accounts, payload("deposit", u64le(p.Amount))), nil
}

type WithdrawParams struct {
	ProgramID solana.PublicKey
	Owner     solana.PublicKey
	Mint      solana.PublicKey
	Amount    uint64
}

// Withdraw builds the single-authority withdraw. Note the vault token
// account precedes the owner's, the reverse of deposit.
func Withdraw(p WithdrawParams) (solana.Instruction, error) {
	vault, _, err := solana_helpers.VaultAddress(p.Owner, p.ProgramID)
	if err != nil {
		return nil, err
	}
	ownerATA, err := solana_helpers.AssociatedTokenAddress(p.Owner, p.Mint)
	if err != nil {
		return nil, err
	}
	vaultATA, err := solana_helpers.AssociatedTokenAddress(vault, p.Mint)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(p.Owner).WRITE().SIGNER(),
		solana.Meta(p.Owner),
		solana.Meta(vault).WRITE(),
		solana.Meta(vaultATA).WRITE(),
		solana.Meta(ownerATA).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}

	return solana.NewInstruction(p.ProgramID, accounts, payload("withdraw", u64le(p.Amount))), nil
}

type WithdrawMultisigParams struct {
	ProgramID solana.PublicKey
	Owner     solana.PublicKey
	// Authority is the approving signer designated to initiate the
	// transaction.
	Authority solana.PublicKey
	Amount    uint64
	// OtherSigners are the remaining approvers that must co-sign.
	OtherSigners []solana.PublicKey
}

// WithdrawMultisig builds the threshold withdraw variant. The remaining
// approvers are appended as signer accounts so the program can verify the
// threshold on-chain.
func WithdrawMultisig(p WithdrawMultisigParams) (solana.Instruction, error) {
	accounts := solana.AccountMetaSlice{
		solana.Meta(p.Authority).WRITE().SIGNER(),
		solana.Meta(p.Owner),
	}
	for _, s := range p.OtherSigners {
		if s.Equals(p.Authority) {
			continue
		}
		accounts = append(accounts, solana.Meta(s).SIGNER())
	}

	return solana.NewInstruction(p.ProgramID, accounts, payload("withdraw", u64le(p.Amount))), nil
}

type ScheduleTimelockParams struct {
	ProgramID       solana.PublicKey
	Owner           solana.PublicKey
	Amount          uint64
	DurationSeconds int64
}

// ScheduleTimelock locks an amount until the duration elapses. The timelock
// handler predates the discriminator scheme and still routes on a 1-byte
// opcode.
func ScheduleTimelock(p ScheduleTimelockParams) (solana.Instruction, error) {
	accounts := solana.AccountMetaSlice{
		solana.Meta(p.Owner).WRITE().SIGNER(),
		solana.Meta(p.Owner),
	}

	data := append([]byte{opScheduleTimelock}, u64le(p.Amount)...)
	data = append(data, i64le(p.DurationSeconds)...)

	return solana.NewInstruction(p.ProgramID, accounts, data), nil
}

type RequestWithdrawParams struct {
	ProgramID solana.PublicKey
	Owner     solana.PublicKey
	Amount    uint64
}

// RequestWithdraw records a withdraw intent subject to the configured
// minimum delay.
func RequestWithdraw(p RequestWithdrawParams) (solana.Instruction, error) {
	vault, _, err := solana_helpers.VaultAddress(p.Owner, p.ProgramID)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(p.Owner).WRITE().SIGNER(),
		solana.Meta(vault).WRITE(),
	}

	return solana.NewInstruction(p.ProgramID, accounts, payload("request_withdraw", u64le(p.Amount))), nil
}

type EmergencyWithdrawParams struct {
	ProgramID solana.PublicKey
	// Authority signs the instruction; owner or governance.
	Authority solana.PublicKey
	// Owner is the vault owner used for address derivation.
	Owner  solana.PublicKey
	Mint   solana.PublicKey
	Amount uint64
}

func EmergencyWithdraw(p EmergencyWithdrawParams) (solana.Instruction, error) {
	vault, _, err := solana_helpers.VaultAddress(p.Owner, p.ProgramID)
	if err != nil {
		return nil, err
	}
	authority, _, err := solana_helpers.VaultAuthorityAddress(p.ProgramID)
	if err != nil {
		return nil, err
	}
	vaultATA, err := solana_helpers.AssociatedTokenAddress(vault, p.Mint)
	if err != nil {
		return nil, err
	}
	ownerATA, err := solana_helpers.AssociatedTokenAddress(p.Owner, p.Mint)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(p.Authority).WRITE().SIGNER(),
		solana.Meta(p.Owner),
		solana.Meta(vault).WRITE(),
		solana.Meta(authority),
		solana.Meta(vaultATA).WRITE(),
		solana.Meta(ownerATA).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}

	return solana.NewInstruction(p.ProgramID, accounts, payload("emergency_withdraw", u64le(p.Amount))), nil
}
