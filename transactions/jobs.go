package transactions

import (
	"context"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"

	"github.com/stablevault/solana-vault-api/errors"
	"github.com/stablevault/solana-vault-api/jobs"
	"github.com/stablevault/solana-vault-api/solana_helpers"
)

const SendJobType = "transaction_send"

// executeSendJob sends a queued transaction. Transient chain errors are
// returned as-is so the pool retries the job; anything else fails the
// send permanently and marks the ledger row failed.
func (s *Service) executeSendJob(ctx context.Context, j *jobs.Job) error {
	if j.Type != SendJobType {
		return jobs.ErrInvalidJobType
	}

	t, err := s.store.Transaction(j.Signature)
	if err != nil {
		return err
	}

	if t.Status != StatusPending {
		// Resolved in the meantime, by the indexer or a prior attempt.
		return nil
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(t.Raw))
	if err != nil {
		return jobs.PermanentFailure(err)
	}

	s.txRatelimiter.Take()

	if _, err := solana_helpers.SendWithRetries(ctx, s.client, tx, s.sendRetries); err != nil {
		if errors.IsChainConnectionError(err) {
			return err
		}
		if markErr := s.store.MarkFailed(t.Signature); markErr != nil {
			log.
				WithFields(log.Fields{"error": markErr, "signature": t.Signature}).
				Warn("Could not mark transaction failed")
		}
		return jobs.PermanentFailure(err)
	}

	log.
		WithFields(log.Fields{"signature": t.Signature, "jobID": j.ID}).
		Info("Queued transaction sent")

	return nil
}
