package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type proposeBody struct {
	Owner     string   `json:"owner"`
	Amount    uint64   `json:"amount"`
	Threshold int      `json:"threshold"`
	Signers   []string `json:"signers"`
}

type approveBody struct {
	Signer    string `json:"signer"`
	Signature string `json:"signature"`
}

func (s *Multisig) ListFunc(rw http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.FormValue("limit"))
	if err != nil {
		limit = 0
	}

	offset, err := strconv.Atoi(r.FormValue("offset"))
	if err != nil {
		offset = 0
	}

	res, err := s.service.List(limit, offset)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusOK, res)
}

func (s *Multisig) ProposeFunc(rw http.ResponseWriter, r *http.Request) {
	if err := checkNonEmptyBody(r); err != nil {
		handleError(rw, r, err)
		return
	}

	var body proposeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handleError(rw, r, InvalidBodyError)
		return
	}

	res, err := s.service.CreateProposal(r.Context(), body.Owner, body.Amount, body.Threshold, body.Signers)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusCreated, res)
}

func (s *Multisig) ApproveFunc(rw http.ResponseWriter, r *http.Request) {
	if err := checkNonEmptyBody(r); err != nil {
		handleError(rw, r, err)
		return
	}

	vars := mux.Vars(r)

	var body approveBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handleError(rw, r, InvalidBodyError)
		return
	}

	res, err := s.service.Approve(r.Context(), vars["proposalId"], body.Signer, body.Signature)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusOK, res)
}

func (s *Multisig) StatusFunc(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	res, err := s.service.Status(vars["proposalId"])
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusOK, res)
}
