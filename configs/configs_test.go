package configs

import (
	"testing"
	"time"
)

func TestParseConfig(t *testing.T) {
	t.Setenv("VAULT_API_VAULT_PROGRAM_ID", "VAULTprogk7kXdEBgWK7eFVcQzWzzGFwzzzQhTzzVau1")
	t.Setenv("VAULT_API_COLLATERAL_MINT", "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
	t.Setenv("VAULT_API_WORKER_COUNT", "1")
	t.Setenv("VAULT_API_RECONCILIATION_THRESHOLD", "1000")

	cfg, err := Parse()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.VaultProgramID != "VAULTprogk7kXdEBgWK7eFVcQzWzzGFwzzzQhTzzVau1" {
		t.Errorf(`unexpected "VaultProgramID": %s`, cfg.VaultProgramID)
	}

	if cfg.WorkerCount != 1 {
		t.Errorf(`expected "WorkerCount" to equal 1, got %d`, cfg.WorkerCount)
	}

	if cfg.ReconciliationThreshold != 1000 {
		t.Errorf(`expected "ReconciliationThreshold" to equal 1000, got %d`, cfg.ReconciliationThreshold)
	}

	if cfg.ReconciliationInterval != 60*time.Second {
		t.Errorf(`expected default "ReconciliationInterval" of 60s, got %s`, cfg.ReconciliationInterval)
	}

	if cfg.TransactionSendRetries != 3 {
		t.Errorf(`expected default "TransactionSendRetries" of 3, got %d`, cfg.TransactionSendRetries)
	}

	if cfg.ChainEventsReconnectDelay != 5*time.Second {
		t.Errorf(`expected default "ChainEventsReconnectDelay" of 5s, got %s`, cfg.ChainEventsReconnectDelay)
	}
}

func TestParseConfigMissingRequired(t *testing.T) {
	t.Setenv("VAULT_API_VAULT_PROGRAM_ID", "")
	t.Setenv("VAULT_API_COLLATERAL_MINT", "")

	if _, err := Parse(); err == nil {
		t.Error("expected an error for missing required variables")
	}
}
