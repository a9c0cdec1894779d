package handlers

import (
	"net/http"

	"github.com/stablevault/solana-vault-api/transactions"
)

// Transactions is a HTTP server for the settlement ledger.
type Transactions struct {
	service *transactions.Service
}

func NewTransactions(service *transactions.Service) *Transactions {
	return &Transactions{service}
}

func (s *Transactions) List() http.Handler {
	return http.HandlerFunc(s.ListFunc)
}

func (s *Transactions) Details() http.Handler {
	return http.HandlerFunc(s.DetailsFunc)
}
