package instructions

import (
	"github.com/gagliardetto/solana-go"

	"github.com/stablevault/solana-vault-api/solana_helpers"
)

// Withdraw policy instructions share a minimal owner + vault account pair.
func policyAccounts(programID, owner solana.PublicKey) (solana.AccountMetaSlice, error) {
	vault, _, err := solana_helpers.VaultAddress(owner, programID)
	if err != nil {
		return nil, err
	}
	return solana.AccountMetaSlice{
		solana.Meta(owner).WRITE().SIGNER(),
		solana.Meta(vault).WRITE(),
	}, nil
}

type SetWithdrawMinDelayParams struct {
	ProgramID solana.PublicKey
	Owner     solana.PublicKey
	Seconds   int64
}

func SetWithdrawMinDelay(p SetWithdrawMinDelayParams) (solana.Instruction, error) {
	accounts, err := policyAccounts(p.ProgramID, p.Owner)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(p.ProgramID, accounts, payload("set_withdraw_min_delay", i64le(p.Seconds))), nil
}

type SetWithdrawRateLimitParams struct {
	ProgramID     solana.PublicKey
	Owner         solana.PublicKey
	WindowSeconds uint32
	MaxAmount     uint64
}

func SetWithdrawRateLimit(p SetWithdrawRateLimitParams) (solana.Instruction, error) {
	accounts, err := policyAccounts(p.ProgramID, p.Owner)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(p.ProgramID, accounts,
		payload("set_withdraw_rate_limit", u32le(p.WindowSeconds), u64le(p.MaxAmount))), nil
}

type WithdrawWhitelistParams struct {
	ProgramID solana.PublicKey
	Owner     solana.PublicKey
	Address   solana.PublicKey
}

func AddWithdrawWhitelist(p WithdrawWhitelistParams) (solana.Instruction, error) {
	accounts, err := policyAccounts(p.ProgramID, p.Owner)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(p.ProgramID, accounts, payload("add_withdraw_whitelist", p.Address.Bytes())), nil
}

func RemoveWithdrawWhitelist(p WithdrawWhitelistParams) (solana.Instruction, error) {
	accounts, err := policyAccounts(p.ProgramID, p.Owner)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(p.ProgramID, accounts, payload("remove_withdraw_whitelist", p.Address.Bytes())), nil
}
