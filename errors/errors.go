// Package errors provides an API for errors across the application.
package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// RequestError carries the HTTP status code the routing layer should
// translate the error to.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// InvalidInput is a validation failure, rejected before any side effect.
func InvalidInput(format string, a ...interface{}) *RequestError {
	return &RequestError{StatusCode: http.StatusBadRequest, Err: fmt.Errorf(format, a...)}
}

// NotAllowed is an authorization failure, rejected before any side effect.
func NotAllowed(format string, a ...interface{}) *RequestError {
	return &RequestError{StatusCode: http.StatusForbidden, Err: fmt.Errorf(format, a...)}
}

func NotFound(format string, a ...interface{}) *RequestError {
	return &RequestError{StatusCode: http.StatusNotFound, Err: fmt.Errorf(format, a...)}
}

// Conflict is used when a resource exists but is no longer in a state that
// permits the requested mutation.
func Conflict(format string, a ...interface{}) *RequestError {
	return &RequestError{StatusCode: http.StatusConflict, Err: fmt.Errorf(format, a...)}
}

// ChainGateway wraps a transient chain error after retries have been
// exhausted.
func ChainGateway(err error) *RequestError {
	return &RequestError{StatusCode: http.StatusBadGateway, Err: err}
}

var transientFragments = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"context deadline exceeded",
	"too many requests",
	"blockhash not found",
	"node is behind",
	"unexpected eof",
}

// IsChainConnectionError reports whether err looks like a transient
// RPC/network failure worth retrying. The RPC client does not expose a
// stable error type for these, so this matches on message fragments.
func IsChainConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, f := range transientFragments {
		if strings.Contains(msg, f) {
			return true
		}
	}
	return false
}
