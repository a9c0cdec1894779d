// Package handlers provides HTTP handlers for different services across
// the application.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/stablevault/solana-vault-api/errors"
)

// SyncHeader opts a request out of the queued send path.
const SyncHeader = "Use-Sync"

var InvalidBodyError = &errors.RequestError{
	StatusCode: http.StatusBadRequest,
	Err:        stderrors.New("invalid body"),
}

// handleError is a helper function for unified HTTP error handling.
func handleError(rw http.ResponseWriter, r *http.Request, err error) {
	log.
		WithFields(log.Fields{"error": err, "path": r.URL.Path}).
		Warn("Request error")

	var reqErr *errors.RequestError
	if stderrors.As(err, &reqErr) {
		http.Error(rw, reqErr.Error(), reqErr.StatusCode)
		return
	}

	http.Error(rw, "Error", http.StatusInternalServerError)
}

// handleJsonResponse is a helper function for unified JSON response handling.
func handleJsonResponse(rw http.ResponseWriter, status int, res interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(res); err != nil {
		log.
			WithFields(log.Fields{"error": err}).
			Warn("Could not encode JSON response")
	}
}

func checkNonEmptyBody(r *http.Request) error {
	if r.Body == nil || r.ContentLength == 0 {
		return InvalidBodyError
	}
	return nil
}
