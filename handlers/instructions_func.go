package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/mux"

	"github.com/stablevault/solana-vault-api/errors"
	"github.com/stablevault/solana-vault-api/instructions"
	"github.com/stablevault/solana-vault-api/solana_helpers"
)

type buildOwnerBody struct {
	Owner  string `json:"owner"`
	Amount uint64 `json:"amount"`
}

type buildTransferBody struct {
	CallerProgram string `json:"callerProgram"`
	FromOwner     string `json:"fromOwner"`
	ToOwner       string `json:"toOwner"`
	Amount        uint64 `json:"amount"`
}

type buildYieldBody struct {
	Owner        string `json:"owner"`
	Amount       uint64 `json:"amount"`
	YieldProgram string `json:"yieldProgram"`
}

type buildPolicyBody struct {
	Owner         string `json:"owner"`
	Seconds       int64  `json:"seconds"`
	WindowSeconds uint32 `json:"windowSeconds"`
	MaxAmount     uint64 `json:"maxAmount"`
	Address       string `json:"address"`
}

type buildGovernanceBody struct {
	Governance   string `json:"governance"`
	YieldProgram string `json:"yieldProgram"`
	RiskLevel    uint8  `json:"riskLevel"`
}

func decodeBuildBody(rw http.ResponseWriter, r *http.Request, body interface{}) bool {
	if err := checkNonEmptyBody(r); err != nil {
		handleError(rw, r, err)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		handleError(rw, r, InvalidBodyError)
		return false
	}
	return true
}

func (s *Instructions) InitializeVaultFunc(rw http.ResponseWriter, r *http.Request) {
	var body buildOwnerBody
	if !decodeBuildBody(rw, r, &body) {
		return
	}

	owner, err := solana_helpers.ValidateAddress(body.Owner)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	ix, err := instructions.InitializeVault(instructions.InitializeVaultParams{
		ProgramID: s.programID,
		Owner:     owner,
		Mint:      s.mint,
	})
	respondInstruction(rw, r, ix, err)
}

func (s *Instructions) DepositFunc(rw http.ResponseWriter, r *http.Request) {
	var body buildOwnerBody
	if !decodeBuildBody(rw, r, &body) {
		return
	}

	owner, err := solana_helpers.ValidateAddress(body.Owner)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	ix, err := instructions.Deposit(instructions.DepositParams{
		ProgramID: s.programID,
		Owner:     owner,
		Mint:      s.mint,
		Amount:    body.Amount,
	})
	respondInstruction(rw, r, ix, err)
}

func (s *Instructions) WithdrawFunc(rw http.ResponseWriter, r *http.Request) {
	var body buildOwnerBody
	if !decodeBuildBody(rw, r, &body) {
		return
	}

	owner, err := solana_helpers.ValidateAddress(body.Owner)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	ix, err := instructions.Withdraw(instructions.WithdrawParams{
		ProgramID: s.programID,
		Owner:     owner,
		Mint:      s.mint,
		Amount:    body.Amount,
	})
	respondInstruction(rw, r, ix, err)
}

func (s *Instructions) RequestWithdrawFunc(rw http.ResponseWriter, r *http.Request) {
	var body buildOwnerBody
	if !decodeBuildBody(rw, r, &body) {
		return
	}

	owner, err := solana_helpers.ValidateAddress(body.Owner)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	ix, err := instructions.RequestWithdraw(instructions.RequestWithdrawParams{
		ProgramID: s.programID,
		Owner:     owner,
		Amount:    body.Amount,
	})
	respondInstruction(rw, r, ix, err)
}

func (s *Instructions) TransferCollateralFunc(rw http.ResponseWriter, r *http.Request) {
	var body buildTransferBody
	if !decodeBuildBody(rw, r, &body) {
		return
	}

	ix, err := s.service.BuildTransferCollateral(body.CallerProgram, body.FromOwner, body.ToOwner, body.Amount)
	respondInstruction(rw, r, ix, err)
}

func (s *Instructions) YieldFunc(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var body buildYieldBody
	if !decodeBuildBody(rw, r, &body) {
		return
	}

	owner, err := solana_helpers.ValidateAddress(body.Owner)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	yieldProgram, err := solana_helpers.ValidateAddress(body.YieldProgram)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	p := instructions.YieldParams{
		ProgramID:    s.programID,
		Owner:        owner,
		Amount:       body.Amount,
		YieldProgram: yieldProgram,
	}

	var ix solana.Instruction
	switch vars["op"] {
	case "deposit":
		ix, err = instructions.YieldDeposit(p)
	case "withdraw":
		ix, err = instructions.YieldWithdraw(p)
	case "compound":
		ix, err = instructions.CompoundYield(p)
	default:
		handleError(rw, r, errors.InvalidInput("unknown yield operation: %s", vars["op"]))
		return
	}
	respondInstruction(rw, r, ix, err)
}

func (s *Instructions) PolicyFunc(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var body buildPolicyBody
	if !decodeBuildBody(rw, r, &body) {
		return
	}

	owner, err := solana_helpers.ValidateAddress(body.Owner)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	var ix solana.Instruction
	switch vars["op"] {
	case "min-delay":
		ix, err = instructions.SetWithdrawMinDelay(instructions.SetWithdrawMinDelayParams{
			ProgramID: s.programID,
			Owner:     owner,
			Seconds:   body.Seconds,
		})
	case "rate-limit":
		ix, err = instructions.SetWithdrawRateLimit(instructions.SetWithdrawRateLimitParams{
			ProgramID:     s.programID,
			Owner:         owner,
			WindowSeconds: body.WindowSeconds,
			MaxAmount:     body.MaxAmount,
		})
	case "whitelist-add", "whitelist-remove":
		address, aerr := solana_helpers.ValidateAddress(body.Address)
		if aerr != nil {
			handleError(rw, r, aerr)
			return
		}
		p := instructions.WithdrawWhitelistParams{
			ProgramID: s.programID,
			Owner:     owner,
			Address:   address,
		}
		if vars["op"] == "whitelist-add" {
			ix, err = instructions.AddWithdrawWhitelist(p)
		} else {
			ix, err = instructions.RemoveWithdrawWhitelist(p)
		}
	default:
		handleError(rw, r, errors.InvalidInput("unknown policy operation: %s", vars["op"]))
		return
	}
	respondInstruction(rw, r, ix, err)
}

func (s *Instructions) GovernanceFunc(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var body buildGovernanceBody
	if !decodeBuildBody(rw, r, &body) {
		return
	}

	governance, err := solana_helpers.ValidateAddress(body.Governance)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	var ix solana.Instruction
	switch vars["op"] {
	case "add-yield-program", "remove-yield-program":
		yieldProgram, perr := solana_helpers.ValidateAddress(body.YieldProgram)
		if perr != nil {
			handleError(rw, r, perr)
			return
		}
		p := instructions.GovernanceYieldProgramParams{
			ProgramID:    s.programID,
			Governance:   governance,
			YieldProgram: yieldProgram,
		}
		if vars["op"] == "add-yield-program" {
			ix, err = instructions.AddYieldProgram(p)
		} else {
			ix, err = instructions.RemoveYieldProgram(p)
		}
	case "risk-level":
		ix, err = instructions.SetRiskLevel(instructions.SetRiskLevelParams{
			ProgramID:  s.programID,
			Governance: governance,
			RiskLevel:  body.RiskLevel,
		})
	default:
		handleError(rw, r, errors.InvalidInput("unknown governance operation: %s", vars["op"]))
		return
	}
	respondInstruction(rw, r, ix, err)
}
