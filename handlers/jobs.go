package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/stablevault/solana-vault-api/jobs"
)

// Jobs is a HTTP server for background job state.
type Jobs struct {
	service *jobs.Service
	wp      *jobs.WorkerPool
}

func NewJobs(service *jobs.Service, wp *jobs.WorkerPool) *Jobs {
	return &Jobs{service, wp}
}

func (s *Jobs) List() http.Handler {
	return http.HandlerFunc(s.ListFunc)
}

func (s *Jobs) Details() http.Handler {
	return http.HandlerFunc(s.DetailsFunc)
}

func (s *Jobs) Status() http.Handler {
	return http.HandlerFunc(s.StatusFunc)
}

func (s *Jobs) ListFunc(rw http.ResponseWriter, r *http.Request) {
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

func (s *Jobs) DetailsFunc(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	res, err := s.service.Details(vars["jobId"])
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusOK, res.ToJSONResponse())
}

func (s *Jobs) StatusFunc(rw http.ResponseWriter, r *http.Request) {
	res, err := s.wp.Status()
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusOK, res)
}
