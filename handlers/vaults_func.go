package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/stablevault/solana-vault-api/transactions"
)

type amountBody struct {
	Amount uint64 `json:"amount"`
}

type linkBody struct {
	SettlementAccount string `json:"settlementAccount"`
}

type scheduleBody struct {
	Amount          uint64 `json:"amount"`
	DurationSeconds int64  `json:"durationSeconds"`
}

type authorizedProgramBody struct {
	ProgramID string `json:"programId"`
	Label     string `json:"label"`
}

func (s *Vaults) ListFunc(rw http.ResponseWriter, r *http.Request) {
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

func (s *Vaults) DetailsFunc(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	res, err := s.service.Details(vars["owner"])
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusOK, res)
}

func (s *Vaults) TVLFunc(rw http.ResponseWriter, r *http.Request) {
	tvl, err := s.service.TVL()
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusOK, map[string]int64{"tvl": tvl})
}

func (s *Vaults) ChainBalanceFunc(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	balance, err := s.service.ChainBalance(r.Context(), vars["owner"])
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusOK, map[string]uint64{"balance": balance})
}

func (s *Vaults) TransactionsFunc(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	limit, err := strconv.Atoi(r.FormValue("limit"))
	if err != nil {
		limit = 0
	}

	offset, err := strconv.Atoi(r.FormValue("offset"))
	if err != nil {
		offset = 0
	}

	res, err := s.txService.ListForOwner(vars["owner"], limit, offset)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusOK, res)
}

func (s *Vaults) LinkFunc(rw http.ResponseWriter, r *http.Request) {
	if err := checkNonEmptyBody(r); err != nil {
		handleError(rw, r, err)
		return
	}

	vars := mux.Vars(r)

	var body linkBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handleError(rw, r, InvalidBodyError)
		return
	}

	res, err := s.service.LinkSettlementAccount(vars["owner"], body.SettlementAccount)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusCreated, res)
}

func (s *Vaults) InitializeFunc(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	res, err := s.service.Initialize(r.Context(), vars["owner"])
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusCreated, res)
}

func (s *Vaults) LockFunc(rw http.ResponseWriter, r *http.Request) {
	s.amountOperation(rw, r, s.service.Lock)
}

func (s *Vaults) UnlockFunc(rw http.ResponseWriter, r *http.Request) {
	s.amountOperation(rw, r, s.service.Unlock)
}

// WithdrawFunc queues the send on the worker pool unless the caller asks
// for a synchronous submission with the Use-Sync header.
func (s *Vaults) WithdrawFunc(rw http.ResponseWriter, r *http.Request) {
	op := s.service.SubmitWithdrawAsync
	if r.Header.Get(SyncHeader) != "" {
		op = s.service.SubmitWithdraw
	}
	s.amountOperation(rw, r, op)
}

func (s *Vaults) EmergencyWithdrawFunc(rw http.ResponseWriter, r *http.Request) {
	s.amountOperation(rw, r, s.service.EmergencyWithdraw)
}

func (s *Vaults) ScheduleWithdrawFunc(rw http.ResponseWriter, r *http.Request) {
	if err := checkNonEmptyBody(r); err != nil {
		handleError(rw, r, err)
		return
	}

	vars := mux.Vars(r)

	var body scheduleBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handleError(rw, r, InvalidBodyError)
		return
	}

	res, err := s.service.ScheduleWithdraw(
		r.Context(),
		vars["owner"],
		body.Amount,
		time.Duration(body.DurationSeconds)*time.Second,
	)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusCreated, res)
}

func (s *Vaults) AuthorizedProgramsFunc(rw http.ResponseWriter, r *http.Request) {
	res, err := s.service.AuthorizedPrograms()
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusOK, res)
}

func (s *Vaults) AddAuthorizedProgramFunc(rw http.ResponseWriter, r *http.Request) {
	if err := checkNonEmptyBody(r); err != nil {
		handleError(rw, r, err)
		return
	}

	var body authorizedProgramBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handleError(rw, r, InvalidBodyError)
		return
	}

	if err := s.service.AddAuthorizedProgram(body.ProgramID, body.Label); err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusCreated, body)
}

func (s *Vaults) RemoveAuthorizedProgramFunc(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := s.service.RemoveAuthorizedProgram(vars["programId"]); err != nil {
		handleError(rw, r, err)
		return
	}

	rw.WriteHeader(http.StatusNoContent)
}

type amountOperationFunc func(ctx context.Context, owner string, amount uint64) (*transactions.Transaction, error)

func (s *Vaults) amountOperation(rw http.ResponseWriter, r *http.Request, op amountOperationFunc) {
	if err := checkNonEmptyBody(r); err != nil {
		handleError(rw, r, err)
		return
	}

	vars := mux.Vars(r)

	var body amountBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handleError(rw, r, InvalidBodyError)
		return
	}

	res, err := op(r.Context(), vars["owner"], body.Amount)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusCreated, res)
}
