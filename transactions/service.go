package transactions

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"

	"github.com/stablevault/solana-vault-api/datastore"
	"github.com/stablevault/solana-vault-api/errors"
	"github.com/stablevault/solana-vault-api/instructions"
	"github.com/stablevault/solana-vault-api/jobs"
	"github.com/stablevault/solana-vault-api/solana_helpers"
)

const (
	submitComputeUnits  = 1_400_000
	submitPriorityPrice = 1_000

	defaultConfirmWait = 30 * time.Second
)

// Service signs and submits built instructions as the fee payer and
// records every submission in the ledger as pending.
type Service struct {
	store         Store
	client        *rpc.Client
	feePayer      solana.PrivateKey
	txRatelimiter ratelimit.Limiter
	sendRetries   int
	confirmWait   time.Duration
	wp            *jobs.WorkerPool
}

func NewService(store Store, client *rpc.Client, feePayer solana.PrivateKey, opts ...ServiceOption) *Service {
	svc := &Service{
		store:         store,
		client:        client,
		feePayer:      feePayer,
		txRatelimiter: ratelimit.NewUnlimited(),
		sendRetries:   solana_helpers.DefaultSendRetries,
		confirmWait:   defaultConfirmWait,
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.wp != nil {
		svc.wp.RegisterExecutor(SendJobType, svc.executeSendJob)
	}

	return svc
}

func (s *Service) FeePayer() solana.PublicKey {
	return s.feePayer.PublicKey()
}

// buildSigned prepends the compute budget and signs as fee payer.
func (s *Service) buildSigned(ctx context.Context, ixs []solana.Instruction) (*solana.Transaction, error) {
	if len(ixs) == 0 {
		return nil, errors.InvalidInput("no instructions to submit")
	}

	all := append(instructions.ComputeBudget(submitComputeUnits, submitPriorityPrice), ixs...)

	blockhash, err := solana_helpers.LatestBlockhash(ctx, s.client)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(all, blockhash, solana.TransactionPayer(s.feePayer.PublicKey()))
	if err != nil {
		return nil, err
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.feePayer.PublicKey()) {
			return &s.feePayer
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return tx, nil
}

// Submit signs, sends the transaction and inserts a pending ledger row
// for it.
func (s *Service) Submit(ctx context.Context, kind Kind, owner string, amount int64, ixs ...solana.Instruction) (*Transaction, error) {
	tx, err := s.buildSigned(ctx, ixs)
	if err != nil {
		return nil, err
	}

	s.txRatelimiter.Take()

	sig, err := solana_helpers.SendWithRetries(ctx, s.client, tx, s.sendRetries)
	if err != nil {
		return nil, err
	}

	t := &Transaction{
		Signature: sig.String(),
		Owner:     owner,
		Amount:    amount,
		Kind:      kind,
		Status:    StatusPending,
	}

	if _, err := s.store.InsertTransaction(t); err != nil {
		// The transaction is on chain at this point; the indexer will
		// repair the ledger row when the confirmation event arrives.
		log.
			WithFields(log.Fields{"error": err, "signature": t.Signature}).
			Error("Transaction sent but ledger insert failed")
		return t, err
	}

	// Sync submissions report back only once the cluster has confirmed.
	// A wait that times out leaves the row pending for the indexer.
	if err := solana_helpers.WaitForConfirmation(ctx, s.client, sig, s.confirmWait); err != nil {
		log.
			WithFields(log.Fields{"error": err, "signature": t.Signature}).
			Warn("Confirmation wait ended without a confirmed status")
		return t, nil
	}

	if err := s.store.ConfirmTransaction(t.Signature); err != nil {
		log.
			WithFields(log.Fields{"error": err, "signature": t.Signature}).
			Warn("Could not confirm transaction row")
	} else {
		t.Status = StatusConfirmed
	}

	log.
		WithFields(log.Fields{"signature": t.Signature, "kind": kind, "owner": owner}).
		Info("Transaction submitted")

	return t, nil
}

// SubmitAsync signs the transaction, records it pending with the raw
// payload attached and queues the send on the worker pool. The signature
// is known from signing so callers can poll the ledger row immediately.
func (s *Service) SubmitAsync(ctx context.Context, kind Kind, owner string, amount int64, ixs ...solana.Instruction) (*Transaction, *jobs.Job, error) {
	if s.wp == nil {
		return nil, nil, errors.InvalidInput("async submission is not configured")
	}

	tx, err := s.buildSigned(ctx, ixs)
	if err != nil {
		return nil, nil, err
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}

	t := &Transaction{
		Signature: tx.Signatures[0].String(),
		Owner:     owner,
		Amount:    amount,
		Kind:      kind,
		Status:    StatusPending,
		Raw:       raw,
	}

	if _, err := s.store.InsertTransaction(t); err != nil {
		return nil, nil, err
	}

	job, err := s.wp.CreateJob(SendJobType, t.Signature)
	if err != nil {
		return nil, nil, err
	}

	if err := s.wp.Schedule(job); err != nil {
		return nil, nil, err
	}

	return t, job, nil
}

func (s *Service) List(limit, offset int) ([]Transaction, error) {
	o := datastore.ParseListOptions(limit, offset)
	return s.store.Transactions(o)
}

func (s *Service) ListForOwner(owner string, limit, offset int) ([]Transaction, error) {
	if _, err := solana_helpers.ValidateAddress(owner); err != nil {
		return nil, err
	}
	o := datastore.ParseListOptions(limit, offset)
	return s.store.TransactionsForOwner(owner, o)
}

func (s *Service) Details(signature string) (Transaction, error) {
	t, err := s.store.Transaction(signature)
	if err != nil && err.Error() == "record not found" {
		return Transaction{}, errors.NotFound("transaction not found")
	}
	return t, err
}
