package handlers

import (
	"net/http"

	"github.com/stablevault/solana-vault-api/jobs"
	"github.com/stablevault/solana-vault-api/reconciliation"
	"github.com/stablevault/solana-vault-api/vaults"
)

// Ops is a HTTP server for operator maintenance actions. Each action runs
// as a background job so the request returns as soon as the job is queued.
type Ops struct {
	wp *jobs.WorkerPool
}

func NewOps(wp *jobs.WorkerPool) *Ops {
	return &Ops{wp}
}

func (s *Ops) StartReconciliation() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		s.schedule(rw, r, reconciliation.RunJobType)
	})
}

func (s *Ops) StartBalanceRefresh() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		s.schedule(rw, r, vaults.RefreshJobType)
	})
}

func (s *Ops) schedule(rw http.ResponseWriter, r *http.Request, jobType string) {
	job, err := s.wp.CreateJob(jobType, "")
	if err != nil {
		handleError(rw, r, err)
		return
	}

	if err := s.wp.Schedule(job); err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusCreated, job.ToJSONResponse())
}
