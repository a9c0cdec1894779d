package multisig

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"

	gorm_store "github.com/stablevault/solana-vault-api/datastore/gorm"
	e "github.com/stablevault/solana-vault-api/errors"
	"github.com/stablevault/solana-vault-api/events"
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

	feePayer := solana.NewWallet().PrivateKey
	programID := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	return NewService(
		NewGormStore(db),
		nil,
		events.NewBroker(8),
		feePayer,
		programID,
		mint,
		WithBlockhashProvider(func(ctx context.Context) (solana.Hash, error) {
			return solana.Hash{}, nil
		}),
	)
}

func signerSet(n int) []string {
	signers := make([]string, 0, n)
	for i := 0; i < n; i++ {
		signers = append(signers, solana.NewWallet().PublicKey().String())
	}
	return signers
}

func TestCreateProposalRejectsThresholdAboveSignerCount(t *testing.T) {
	svc := testService(t)
	owner := solana.NewWallet().PublicKey().String()

	_, err := svc.CreateProposal(context.Background(), owner, 100, 3, signerSet(2))
	if err == nil {
		t.Fatal("expected rejection")
	}
	var reqErr *e.RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != 400 {
		t.Errorf("expected 400 request error, got %v", err)
	}

	// Rejected proposals must not be persisted.
	pp, err := svc.List(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pp) != 0 {
		t.Errorf("expected no persisted proposals, got %d", len(pp))
	}
}

func TestCreateProposalRejectsDuplicateSigner(t *testing.T) {
	svc := testService(t)
	owner := solana.NewWallet().PublicKey().String()
	signer := solana.NewWallet().PublicKey().String()

	_, err := svc.CreateProposal(context.Background(), owner, 100, 2, []string{signer, signer})
	if err == nil {
		t.Fatal("expected duplicate signer rejection")
	}
}

func TestApprovalThresholdEdge(t *testing.T) {
	svc := testService(t)
	owner := solana.NewWallet().PublicKey().String()
	signers := signerSet(3)

	proposal, err := svc.CreateProposal(context.Background(), owner, 1_000, 2, signers)
	if err != nil {
		t.Fatal(err)
	}

	first, err := svc.Approve(context.Background(), proposal.ID.String(), signers[0], "sig0")
	if err != nil {
		t.Fatal(err)
	}
	if first.Ready || first.Approvals != 1 {
		t.Errorf("expected pending after first approval, got ready=%t approvals=%d", first.Ready, first.Approvals)
	}

	second, err := svc.Approve(context.Background(), proposal.ID.String(), signers[1], "sig1")
	if err != nil {
		t.Fatal(err)
	}
	if !second.Ready {
		t.Fatal("expected ready after threshold crossed")
	}
	if second.Transaction == "" {
		t.Error("expected non-empty partial transaction")
	}
	if second.Authority != signers[1] {
		t.Errorf("expected most recent approver as authority, got %s", second.Authority)
	}
	for _, co := range second.CoSigners {
		if co == second.Authority {
			t.Error("co-signer list must exclude the initiating authority")
		}
	}
	if len(second.CoSigners) != 1 || second.CoSigners[0] != signers[0] {
		t.Errorf("expected co-signers [%s], got %v", signers[0], second.CoSigners)
	}

	status, err := svc.Status(proposal.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if status.Status != StatusApproved {
		t.Errorf("expected approved status, got %s", status.Status)
	}
}

func TestApprovalIsIdempotentPerSigner(t *testing.T) {
	svc := testService(t)
	owner := solana.NewWallet().PublicKey().String()
	signers := signerSet(3)

	proposal, err := svc.CreateProposal(context.Background(), owner, 1_000, 2, signers)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Approve(context.Background(), proposal.ID.String(), signers[0], "sig0"); err != nil {
		t.Fatal(err)
	}

	again, err := svc.Approve(context.Background(), proposal.ID.String(), signers[0], "sig0-repeat")
	if err != nil {
		t.Fatal(err)
	}
	if !again.Duplicate {
		t.Error("expected duplicate flag on repeated approval")
	}
	if again.Approvals != 1 {
		t.Errorf("expected exactly one approval row, got %d", again.Approvals)
	}
	if again.Ready {
		t.Error("duplicate approval must not cross the threshold")
	}
}

func TestApprovalRejectsUnknownSigner(t *testing.T) {
	svc := testService(t)
	owner := solana.NewWallet().PublicKey().String()

	proposal, err := svc.CreateProposal(context.Background(), owner, 1_000, 2, signerSet(3))
	if err != nil {
		t.Fatal(err)
	}

	outsider := solana.NewWallet().PublicKey().String()
	_, err = svc.Approve(context.Background(), proposal.ID.String(), outsider, "sig")
	if err == nil {
		t.Fatal("expected rejection for signer outside the set")
	}
	var reqErr *e.RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != 403 {
		t.Errorf("expected 403 request error, got %v", err)
	}
}

func TestApprovalOnApprovedProposalReportsReady(t *testing.T) {
	svc := testService(t)
	owner := solana.NewWallet().PublicKey().String()
	signers := signerSet(3)

	proposal, err := svc.CreateProposal(context.Background(), owner, 1_000, 1, signers)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Approve(context.Background(), proposal.ID.String(), signers[0], "sig0"); err != nil {
		t.Fatal(err)
	}

	late, err := svc.Approve(context.Background(), proposal.ID.String(), signers[1], "sig1")
	if err != nil {
		t.Fatal(err)
	}
	if !late.Ready || !late.Duplicate {
		t.Errorf("expected ready+duplicate on approved proposal, got %+v", late)
	}
}
