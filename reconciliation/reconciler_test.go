package reconciliation

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	gorm_store "github.com/stablevault/solana-vault-api/datastore/gorm"
	"github.com/stablevault/solana-vault-api/events"
	"github.com/stablevault/solana-vault-api/system"
	"github.com/stablevault/solana-vault-api/vaults"
)

type staticReader struct {
	balances map[string]uint64
}

func (r *staticReader) ChainBalance(ctx context.Context, owner string) (uint64, error) {
	return r.balances[owner], nil
}

func testReconciler(t *testing.T, threshold int64, reader BalanceReader) (*Reconciler, Store, vaults.Store) {
	t.Helper()
	t.Setenv("VAULT_API_DATABASE_DSN", filepath.Join(t.TempDir(), "test.db"))
	t.Setenv("VAULT_API_DATABASE_TYPE", "sqlite")

	db, err := gorm_store.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { gorm_store.Close(db) })

	store := NewGormStore(db)
	vaultStore := vaults.NewGormStore(db)
	systemService := system.NewService(system.NewGormStore(db))

	r := NewReconciler(store, vaultStore, reader, events.NewBroker(8), systemService, time.Minute, threshold)
	return r, store, vaultStore
}

func linkVault(t *testing.T, store vaults.Store, owner string, balance int64) {
	t.Helper()
	if err := store.UpsertSettlementAccount(owner, "settlement-"+owner); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateSnapshot(owner, balance); err != nil {
		t.Fatal(err)
	}
}

func TestDiscrepancyAtThresholdDoesNotLog(t *testing.T) {
	reader := &staticReader{balances: map[string]uint64{"alice": 1_010}}
	r, store, vaultStore := testReconciler(t, 10, reader)

	linkVault(t, vaultStore, "alice", 1_000)

	r.Run(context.Background())

	logs, err := store.Logs(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 0 {
		t.Errorf("discrepancy equal to threshold must not log, got %d rows", len(logs))
	}
}

func TestDiscrepancyAboveThresholdLogsSignedValue(t *testing.T) {
	reader := &staticReader{balances: map[string]uint64{"alice": 1_011, "bob": 989}}
	r, store, vaultStore := testReconciler(t, 10, reader)

	linkVault(t, vaultStore, "alice", 1_000)
	linkVault(t, vaultStore, "bob", 1_000)

	r.Run(context.Background())

	for owner, want := range map[string]int64{"alice": 11, "bob": -11} {
		logs, err := store.LogsForOwner(owner, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(logs) != 1 {
			t.Fatalf("%s: expected one log row, got %d", owner, len(logs))
		}
		if logs[0].Discrepancy != want {
			t.Errorf("%s: expected signed discrepancy %d, got %d", owner, want, logs[0].Discrepancy)
		}
		if logs[0].Threshold != 10 {
			t.Errorf("%s: expected threshold 10, got %d", owner, logs[0].Threshold)
		}
	}
}

func TestReconcilerStartStopLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Setenv("VAULT_API_DATABASE_DSN", filepath.Join(t.TempDir(), "test.db"))
	t.Setenv("VAULT_API_DATABASE_TYPE", "sqlite")

	db, err := gorm_store.New()
	if err != nil {
		t.Fatal(err)
	}
	// Closed before the leak check runs so the sql pool goroutine is gone.
	defer gorm_store.Close(db)

	reader := &staticReader{balances: map[string]uint64{}}
	r := NewReconciler(
		NewGormStore(db),
		vaults.NewGormStore(db),
		reader,
		events.NewBroker(8),
		system.NewService(system.NewGormStore(db)),
		10*time.Millisecond,
		0,
	)

	r.Start()
	time.Sleep(50 * time.Millisecond)
	r.Stop()
}

func TestExceedsThresholdBoundary(t *testing.T) {
	cases := []struct {
		discrepancy int64
		threshold   int64
		want        bool
	}{
		{0, 0, false},
		{1, 0, true},
		{-1, 0, true},
		{10, 10, false},
		{11, 10, true},
		{-10, 10, false},
		{-11, 10, true},
	}
	for _, c := range cases {
		if got := exceedsThreshold(c.discrepancy, c.threshold); got != c.want {
			t.Errorf("exceedsThreshold(%d, %d) = %t, want %t", c.discrepancy, c.threshold, got, c.want)
		}
	}
}
