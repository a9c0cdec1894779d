package handlers

import (
	"net/http"

	"github.com/stablevault/solana-vault-api/transactions"
	"github.com/stablevault/solana-vault-api/vaults"
)

// Vaults is a HTTP server for vault state and settlement operations.
type Vaults struct {
	service   *vaults.Service
	txService *transactions.Service
}

func NewVaults(service *vaults.Service, txService *transactions.Service) *Vaults {
	return &Vaults{service, txService}
}

func (s *Vaults) List() http.Handler {
	return http.HandlerFunc(s.ListFunc)
}

func (s *Vaults) Details() http.Handler {
	return http.HandlerFunc(s.DetailsFunc)
}

func (s *Vaults) TVL() http.Handler {
	return http.HandlerFunc(s.TVLFunc)
}

func (s *Vaults) ChainBalance() http.Handler {
	return http.HandlerFunc(s.ChainBalanceFunc)
}

func (s *Vaults) Transactions() http.Handler {
	return http.HandlerFunc(s.TransactionsFunc)
}

func (s *Vaults) Link() http.Handler {
	h := http.HandlerFunc(s.LinkFunc)
	return UseJson(h)
}

func (s *Vaults) Initialize() http.Handler {
	h := http.HandlerFunc(s.InitializeFunc)
	return UseJson(h)
}

func (s *Vaults) Lock() http.Handler {
	h := http.HandlerFunc(s.LockFunc)
	return UseJson(h)
}

func (s *Vaults) Unlock() http.Handler {
	h := http.HandlerFunc(s.UnlockFunc)
	return UseJson(h)
}

func (s *Vaults) Withdraw() http.Handler {
	h := http.HandlerFunc(s.WithdrawFunc)
	return UseJson(h)
}

func (s *Vaults) ScheduleWithdraw() http.Handler {
	h := http.HandlerFunc(s.ScheduleWithdrawFunc)
	return UseJson(h)
}

func (s *Vaults) EmergencyWithdraw() http.Handler {
	h := http.HandlerFunc(s.EmergencyWithdrawFunc)
	return UseJson(h)
}

func (s *Vaults) AuthorizedPrograms() http.Handler {
	return http.HandlerFunc(s.AuthorizedProgramsFunc)
}

func (s *Vaults) AddAuthorizedProgram() http.Handler {
	h := http.HandlerFunc(s.AddAuthorizedProgramFunc)
	return UseJson(h)
}

func (s *Vaults) RemoveAuthorizedProgram() http.Handler {
	return http.HandlerFunc(s.RemoveAuthorizedProgramFunc)
}
