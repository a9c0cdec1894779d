package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/gagliardetto/solana-go"

	"github.com/stablevault/solana-vault-api/vaults"
)

// Instructions builds unsigned vault program instructions for callers that
// sign and submit on their own. The configured program and mint are baked
// in so clients only supply operation arguments.
type Instructions struct {
	service   *vaults.Service
	programID solana.PublicKey
	mint      solana.PublicKey
}

func NewInstructions(service *vaults.Service, programID, mint solana.PublicKey) *Instructions {
	return &Instructions{service, programID, mint}
}

type jsonAccountMeta struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

type jsonInstruction struct {
	ProgramID string            `json:"programId"`
	Accounts  []jsonAccountMeta `json:"accounts"`
	Data      string            `json:"data"`
}

func marshalInstruction(ix solana.Instruction) (jsonInstruction, error) {
	data, err := ix.Data()
	if err != nil {
		return jsonInstruction{}, err
	}

	accounts := make([]jsonAccountMeta, 0, len(ix.Accounts()))
	for _, a := range ix.Accounts() {
		accounts = append(accounts, jsonAccountMeta{
			Pubkey:     a.PublicKey.String(),
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		})
	}

	return jsonInstruction{
		ProgramID: ix.ProgramID().String(),
		Accounts:  accounts,
		Data:      base64.StdEncoding.EncodeToString(data),
	}, nil
}

func respondInstruction(rw http.ResponseWriter, r *http.Request, ix solana.Instruction, err error) {
	if err != nil {
		handleError(rw, r, err)
		return
	}

	res, err := marshalInstruction(ix)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusOK, res)
}

func (s *Instructions) InitializeVault() http.Handler {
	h := http.HandlerFunc(s.InitializeVaultFunc)
	return UseJson(h)
}

func (s *Instructions) Deposit() http.Handler {
	h := http.HandlerFunc(s.DepositFunc)
	return UseJson(h)
}

func (s *Instructions) Withdraw() http.Handler {
	h := http.HandlerFunc(s.WithdrawFunc)
	return UseJson(h)
}

func (s *Instructions) RequestWithdraw() http.Handler {
	h := http.HandlerFunc(s.RequestWithdrawFunc)
	return UseJson(h)
}

func (s *Instructions) TransferCollateral() http.Handler {
	h := http.HandlerFunc(s.TransferCollateralFunc)
	return UseJson(h)
}

func (s *Instructions) Yield() http.Handler {
	h := http.HandlerFunc(s.YieldFunc)
	return UseJson(h)
}

func (s *Instructions) Policy() http.Handler {
	h := http.HandlerFunc(s.PolicyFunc)
	return UseJson(h)
}

func (s *Instructions) Governance() http.Handler {
	h := http.HandlerFunc(s.GovernanceFunc)
	return UseJson(h)
}
