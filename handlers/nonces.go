package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/stablevault/solana-vault-api/nonces"
)

// Nonces is a HTTP server for single-use request nonces.
type Nonces struct {
	service *nonces.Service
}

func NewNonces(service *nonces.Service) *Nonces {
	return &Nonces{service}
}

type nonceBody struct {
	Owner string `json:"owner"`
	Nonce string `json:"nonce"`
}

func (s *Nonces) Issue() http.Handler {
	h := http.HandlerFunc(s.IssueFunc)
	return UseJson(h)
}

func (s *Nonces) Consume() http.Handler {
	h := http.HandlerFunc(s.ConsumeFunc)
	return UseJson(h)
}

func (s *Nonces) IssueFunc(rw http.ResponseWriter, r *http.Request) {
	if err := checkNonEmptyBody(r); err != nil {
		handleError(rw, r, err)
		return
	}

	var body nonceBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handleError(rw, r, InvalidBodyError)
		return
	}

	res, err := s.service.Issue(body.Owner)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusCreated, res)
}

func (s *Nonces) ConsumeFunc(rw http.ResponseWriter, r *http.Request) {
	if err := checkNonEmptyBody(r); err != nil {
		handleError(rw, r, err)
		return
	}

	var body nonceBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handleError(rw, r, InvalidBodyError)
		return
	}

	if err := s.service.Consume(body.Nonce, body.Owner); err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusOK, map[string]bool{"consumed": true})
}
