package instructions

import (
	"github.com/gagliardetto/solana-go"

	"github.com/stablevault/solana-vault-api/solana_helpers"
)

type YieldParams struct {
	ProgramID    solana.PublicKey
	Owner        solana.PublicKey
	Amount       uint64
	YieldProgram solana.PublicKey
}

// Yield operations all address the same account set: owner, vault, vault
// authority and the target yield program.
func yieldAccounts(p YieldParams) (solana.AccountMetaSlice, error) {
	vault, _, err := solana_helpers.VaultAddress(p.Owner, p.ProgramID)
	if err != nil {
		return nil, err
	}
	authority, _, err := solana_helpers.VaultAuthorityAddress(p.ProgramID)
	if err != nil {
		return nil, err
	}
	return solana.AccountMetaSlice{
		solana.Meta(p.Owner).WRITE().SIGNER(),
		solana.Meta(p.Owner),
		solana.Meta(vault).WRITE(),
		solana.Meta(authority),
		solana.Meta(p.YieldProgram),
	}, nil
}

func YieldDeposit(p YieldParams) (solana.Instruction, error) {
	accounts, err := yieldAccounts(p)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(p.ProgramID, accounts, payload("yield_deposit", u64le(p.Amount))), nil
}

func YieldWithdraw(p YieldParams) (solana.Instruction, error) {
	accounts, err := yieldAccounts(p)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(p.ProgramID, accounts, payload("yield_withdraw", u64le(p.Amount))), nil
}

func CompoundYield(p YieldParams) (solana.Instruction, error) {
	accounts, err := yieldAccounts(p)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(p.ProgramID, accounts, payload("compound_yield", u64le(p.Amount))), nil
}

type GovernanceYieldProgramParams struct {
	ProgramID    solana.PublicKey
	Governance   solana.PublicKey
	YieldProgram solana.PublicKey
}

func governanceAccounts(programID, governance solana.PublicKey) (solana.AccountMetaSlice, error) {
	authority, _, err := solana_helpers.VaultAuthorityAddress(programID)
	if err != nil {
		return nil, err
	}
	return solana.AccountMetaSlice{
		solana.Meta(governance).WRITE().SIGNER(),
		solana.Meta(authority).WRITE(),
	}, nil
}

func AddYieldProgram(p GovernanceYieldProgramParams) (solana.Instruction, error) {
	accounts, err := governanceAccounts(p.ProgramID, p.Governance)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(p.ProgramID, accounts, payload("add_yield_program", p.YieldProgram.Bytes())), nil
}

func RemoveYieldProgram(p GovernanceYieldProgramParams) (solana.Instruction, error) {
	accounts, err := governanceAccounts(p.ProgramID, p.Governance)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(p.ProgramID, accounts, payload("remove_yield_program", p.YieldProgram.Bytes())), nil
}

type SetRiskLevelParams struct {
	ProgramID  solana.PublicKey
	Governance solana.PublicKey
	RiskLevel  uint8
}

func SetRiskLevel(p SetRiskLevelParams) (solana.Instruction, error) {
	accounts, err := governanceAccounts(p.ProgramID, p.Governance)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(p.ProgramID, accounts, payload("set_risk_level", []byte{p.RiskLevel})), nil
}
