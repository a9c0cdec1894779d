package instructions

import (
	"github.com/gagliardetto/solana-go"

	"github.com/stablevault/solana-vault-api/solana_helpers"
)

type TransferCollateralParams struct {
	ProgramID solana.PublicKey
	// CallerProgram is the allowlisted program on whose behalf the transfer
	// runs; the on-chain program verifies it against the instructions sysvar.
	CallerProgram solana.PublicKey
	FromOwner     solana.PublicKey
	ToOwner       solana.PublicKey
	Mint          solana.PublicKey
	Amount        uint64
}

// TransferCollateral moves collateral between two vaults. Privileged:
// callers must hold a seat on the caller-program allowlist.
func TransferCollateral(p TransferCollateralParams) (solana.Instruction, error) {
	fromVault, _, err := solana_helpers.VaultAddress(p.FromOwner, p.ProgramID)
	if err != nil {
		return nil, err
	}
	toVault, _, err := solana_helpers.VaultAddress(p.ToOwner, p.ProgramID)
	if err != nil {
		return nil, err
	}
	authority, _, err := solana_helpers.VaultAuthorityAddress(p.ProgramID)
	if err != nil {
		return nil, err
	}
	fromVaultATA, err := solana_helpers.AssociatedTokenAddress(fromVault, p.Mint)
	if err != nil {
		return nil, err
	}
	toVaultATA, err := solana_helpers.AssociatedTokenAddress(toVault, p.Mint)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(p.CallerProgram),
		solana.Meta(authority),
		solana.Meta(solana.SysVarInstructionsPubkey),
		solana.Meta(fromVault).WRITE(),
		solana.Meta(toVault).WRITE(),
		solana.Meta(fromVaultATA).WRITE(),
		solana.Meta(toVaultATA).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}

	return solana.NewInstruction(p.ProgramID, accounts, payload("transfer_collateral", u64le(p.Amount))), nil
}

// Position manager lock/unlock use 1-byte opcodes.
const (
	opPositionManagerLock   = 10
	opPositionManagerUnlock = 11
	opScheduleTimelock      = 20
)

type PositionManagerParams struct {
	PositionManagerProgramID solana.PublicKey
	VaultProgramID           solana.PublicKey
	Owner                    solana.PublicKey
	Amount                   uint64
}

// PositionManagerLock builds the position manager's lock call, which
// reserves vault collateral against an open position.
func PositionManagerLock(p PositionManagerParams) (solana.Instruction, error) {
	return positionManagerOp(p, opPositionManagerLock)
}

func PositionManagerUnlock(p PositionManagerParams) (solana.Instruction, error) {
	return positionManagerOp(p, opPositionManagerUnlock)
}

func positionManagerOp(p PositionManagerParams, op byte) (solana.Instruction, error) {
	accounts := solana.AccountMetaSlice{
		solana.Meta(p.Owner).WRITE().SIGNER(),
		solana.Meta(p.VaultProgramID),
	}
	data := append([]byte{op}, u64le(p.Amount)...)
	return solana.NewInstruction(p.PositionManagerProgramID, accounts, data), nil
}
