package handlers

import (
	"net/http"

	"github.com/stablevault/solana-vault-api/multisig"
)

// Multisig is a HTTP server for withdrawal proposals and approvals.
type Multisig struct {
	service *multisig.Service
}

func NewMultisig(service *multisig.Service) *Multisig {
	return &Multisig{service}
}

func (s *Multisig) List() http.Handler {
	return http.HandlerFunc(s.ListFunc)
}

func (s *Multisig) Propose() http.Handler {
	h := http.HandlerFunc(s.ProposeFunc)
	return UseJson(h)
}

func (s *Multisig) Approve() http.Handler {
	h := http.HandlerFunc(s.ApproveFunc)
	return UseJson(h)
}

func (s *Multisig) Status() http.Handler {
	return http.HandlerFunc(s.StatusFunc)
}
