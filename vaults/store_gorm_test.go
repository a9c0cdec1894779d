package vaults

import (
	"path/filepath"
	"testing"
	"time"

	gorm_store "github.com/stablevault/solana-vault-api/datastore/gorm"
)

func testStore(t *testing.T) Store {
	t.Helper()
	t.Setenv("VAULT_API_DATABASE_DSN", filepath.Join(t.TempDir(), "test.db"))
	t.Setenv("VAULT_API_DATABASE_TYPE", "sqlite")
	db, err := gorm_store.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { gorm_store.Close(db) })
	return NewGormStore(db)
}

func TestAdjustLockedKeepsAvailableDerived(t *testing.T) {
	store := testStore(t)

	if _, err := store.EnsureVault("alice"); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateSnapshot("alice", 100_000); err != nil {
		t.Fatal(err)
	}

	v, err := store.AdjustLocked("alice", 30_000)
	if err != nil {
		t.Fatal(err)
	}
	if v.LockedBalance != 30_000 || v.AvailableBalance != 70_000 {
		t.Errorf("after lock: locked=%d available=%d", v.LockedBalance, v.AvailableBalance)
	}

	v, err = store.AdjustLocked("alice", -10_000)
	if err != nil {
		t.Fatal(err)
	}
	if v.LockedBalance != 20_000 || v.AvailableBalance != 80_000 {
		t.Errorf("after unlock: locked=%d available=%d", v.LockedBalance, v.AvailableBalance)
	}
}

func TestAdjustLockedRejectsOverlock(t *testing.T) {
	store := testStore(t)

	if _, err := store.EnsureVault("bob"); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateSnapshot("bob", 1_000); err != nil {
		t.Fatal(err)
	}

	if _, err := store.AdjustLocked("bob", 2_000); err == nil {
		t.Error("expected lock above total balance to fail")
	}
	if _, err := store.AdjustLocked("bob", -1); err == nil {
		t.Error("expected unlock below zero to fail")
	}

	v, err := store.Vault("bob")
	if err != nil {
		t.Fatal(err)
	}
	if v.LockedBalance != 0 || v.AvailableBalance != 1_000 {
		t.Errorf("failed adjustments must not change state: locked=%d available=%d", v.LockedBalance, v.AvailableBalance)
	}
}

func TestSnapshotClampsLockedBalance(t *testing.T) {
	store := testStore(t)

	if _, err := store.EnsureVault("carol"); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateSnapshot("carol", 500); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AdjustLocked("carol", 400); err != nil {
		t.Fatal(err)
	}

	// Chain reports a smaller total than what is locked locally.
	if err := store.UpdateSnapshot("carol", 300); err != nil {
		t.Fatal(err)
	}

	v, err := store.Vault("carol")
	if err != nil {
		t.Fatal(err)
	}
	if v.LockedBalance != 300 || v.AvailableBalance != 0 {
		t.Errorf("expected locked clamped to total: locked=%d available=%d", v.LockedBalance, v.AvailableBalance)
	}
}

func TestTVLSumsActiveVaults(t *testing.T) {
	store := testStore(t)

	for owner, balance := range map[string]int64{"a": 10, "b": 20, "c": 30} {
		if _, err := store.EnsureVault(owner); err != nil {
			t.Fatal(err)
		}
		if err := store.UpdateSnapshot(owner, balance); err != nil {
			t.Fatal(err)
		}
	}

	tvl, err := store.TVL()
	if err != nil {
		t.Fatal(err)
	}
	if tvl != 60 {
		t.Errorf("expected TVL 60, got %d", tvl)
	}
}

func TestDueTimelocksHonorsWindow(t *testing.T) {
	store := testStore(t)

	now := time.Now()
	if err := store.InsertTimelock(&Timelock{Owner: "a", Amount: 1, ReleaseAt: now.Add(time.Minute)}); err != nil {
		t.Fatal(err)
	}
	if err := store.InsertTimelock(&Timelock{Owner: "b", Amount: 2, ReleaseAt: now.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}

	due, err := store.DueTimelocks(5 * time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].Owner != "a" {
		t.Fatalf("expected only the due-soon timelock, got %d rows", len(due))
	}

	if err := store.MarkTimelockNotified(due[0].ID); err != nil {
		t.Fatal(err)
	}
	due, err = store.DueTimelocks(5 * time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Error("notified timelocks must not be returned again")
	}
}

func TestAuthorizedProgramAllowlist(t *testing.T) {
	store := testStore(t)

	program := "ProgramAddress111"
	if err := store.InsertAuthorizedProgram(&AuthorizedProgram{ProgramID: program, Label: "perps"}); err != nil {
		t.Fatal(err)
	}
	// Duplicate insert is a no-op.
	if err := store.InsertAuthorizedProgram(&AuthorizedProgram{ProgramID: program}); err != nil {
		t.Fatal(err)
	}

	ok, err := store.IsAuthorizedProgram(program)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected program to be allowlisted")
	}

	if err := store.DeleteAuthorizedProgram(program); err != nil {
		t.Fatal(err)
	}
	ok, err = store.IsAuthorizedProgram(program)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected program to be removed from allowlist")
	}
}
