package handlers

import (
	"net/http"

	"github.com/stablevault/solana-vault-api/errors"
	"github.com/stablevault/solana-vault-api/yield_protocols"
)

// Rates is a HTTP server for yield protocol rate queries.
type Rates struct {
	registry *yield_protocols.Registry
}

func NewRates(registry *yield_protocols.Registry) *Rates {
	return &Rates{registry}
}

func (s *Rates) List() http.Handler {
	return http.HandlerFunc(s.ListFunc)
}

func (s *Rates) Best() http.Handler {
	return http.HandlerFunc(s.BestFunc)
}

func (s *Rates) ListFunc(rw http.ResponseWriter, r *http.Request) {
	handleJsonResponse(rw, http.StatusOK, s.registry.Rates(r.Context()))
}

func (s *Rates) BestFunc(rw http.ResponseWriter, r *http.Request) {
	best, ok := s.registry.Best(r.Context())
	if !ok {
		handleError(rw, r, errors.NotFound("no yield protocol is currently quoting a positive rate"))
		return
	}

	handleJsonResponse(rw, http.StatusOK, best)
}
