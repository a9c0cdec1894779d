package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestRequestErrorStatusCodes(t *testing.T) {
	if got := InvalidInput("bad owner").StatusCode; got != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, got)
	}
	if got := NotAllowed("not a signer").StatusCode; got != http.StatusForbidden {
		t.Errorf("expected %d, got %d", http.StatusForbidden, got)
	}
	if got := NotFound("no such proposal").StatusCode; got != http.StatusNotFound {
		t.Errorf("expected %d, got %d", http.StatusNotFound, got)
	}
	if got := Conflict("proposal already approved").StatusCode; got != http.StatusConflict {
		t.Errorf("expected %d, got %d", http.StatusConflict, got)
	}
}

func TestIsChainConnectionError(t *testing.T) {
	transient := []error{
		fmt.Errorf("rpc call failed: connection refused"),
		fmt.Errorf("Post \"https://api.devnet.solana.com\": i/o timeout"),
		fmt.Errorf("Blockhash not found"),
	}
	for _, err := range transient {
		if !IsChainConnectionError(err) {
			t.Errorf("expected %q to be transient", err)
		}
	}

	permanent := []error{
		nil,
		fmt.Errorf("Transaction simulation failed: custom program error: 0x1"),
		fmt.Errorf("invalid param: wrong size"),
	}
	for _, err := range permanent {
		if IsChainConnectionError(err) {
			t.Errorf("expected %v not to be transient", err)
		}
	}
}
