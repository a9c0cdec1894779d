package nonces

import (
	"path/filepath"
	"testing"

	gorm_store "github.com/stablevault/solana-vault-api/datastore/gorm"
)

func testService(t *testing.T) *Service {
	t.Helper()
	t.Setenv("VAULT_API_DATABASE_DSN", filepath.Join(t.TempDir(), "test.db"))
	t.Setenv("VAULT_API_DATABASE_TYPE", "sqlite")
	db, err := gorm_store.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { gorm_store.Close(db) })
	return NewService(NewGormStore(db))
}

func TestNonceSingleUse(t *testing.T) {
	svc := testService(t)

	n, err := svc.Issue("alice")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Consume(n.Nonce, "alice"); err != nil {
		t.Fatalf("first consumption must succeed: %v", err)
	}
	if err := svc.Consume(n.Nonce, "alice"); err == nil {
		t.Error("second consumption must fail")
	}
}

func TestNonceBoundToOwner(t *testing.T) {
	svc := testService(t)

	n, err := svc.Issue("alice")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Consume(n.Nonce, "mallory"); err == nil {
		t.Error("consumption by another owner must fail")
	}
	if err := svc.Consume(n.Nonce, "alice"); err != nil {
		t.Errorf("owner consumption must still succeed: %v", err)
	}
}

func TestUnknownNonceFails(t *testing.T) {
	svc := testService(t)

	if err := svc.Consume("no-such-nonce", "alice"); err == nil {
		t.Error("unknown nonce must fail")
	}
}
