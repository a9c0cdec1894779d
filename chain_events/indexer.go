// Package chain_events subscribes to program logs over websocket and
// keeps the ledger in sync with confirmed on-chain settlement activity.
package chain_events

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	log "github.com/sirupsen/logrus"

	"github.com/stablevault/solana-vault-api/events"
	"github.com/stablevault/solana-vault-api/solana_helpers"
	"github.com/stablevault/solana-vault-api/system"
	"github.com/stablevault/solana-vault-api/transactions"
	"github.com/stablevault/solana-vault-api/vaults"
)

type Indexer struct {
	client        *rpc.Client
	wsURL         string
	programID     solana.PublicKey
	mint          solana.PublicKey
	txStore       transactions.Store
	vaultStore    vaults.Store
	broker        *events.Broker
	systemService *system.Service

	// reconnectDelay is deliberately a short fixed pause. The indexer is
	// the only catch-up mechanism, so reconnect attempts never back off.
	reconnectDelay time.Duration
	cancel         context.CancelFunc
	done           chan struct{}
}

func NewIndexer(
	client *rpc.Client,
	wsURL string,
	programID, mint solana.PublicKey,
	txStore transactions.Store,
	vaultStore vaults.Store,
	broker *events.Broker,
	systemService *system.Service,
	reconnectDelay time.Duration,
) *Indexer {
	return &Indexer{
		client:         client,
		wsURL:          wsURL,
		programID:      programID,
		mint:           mint,
		txStore:        txStore,
		vaultStore:     vaultStore,
		broker:         broker,
		systemService:  systemService,
		reconnectDelay: reconnectDelay,
		done:           make(chan struct{}),
	}
}

func (i *Indexer) Start() *Indexer {
	if i.cancel != nil {
		return i
	}

	ctx, cancel := context.WithCancel(context.Background())
	i.cancel = cancel

	go func() {
		defer close(i.done)
		for {
			if ctx.Err() != nil {
				return
			}

			if err := i.subscribe(ctx); err != nil && ctx.Err() == nil {
				log.
					WithFields(log.Fields{"error": err, "retryIn": i.reconnectDelay}).
					Warn("Log subscription dropped, reconnecting")
				select {
				case <-ctx.Done():
					return
				case <-time.After(i.reconnectDelay):
				}
			}
		}
	}()

	return i
}

func (i *Indexer) Stop() {
	if i.cancel == nil {
		return
	}
	i.cancel()
	<-i.done
	i.cancel = nil
}

func (i *Indexer) subscribe(ctx context.Context) error {
	conn, err := ws.Connect(ctx, i.wsURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub, err := conn.LogsSubscribeMentions(i.programID, rpc.CommitmentFinalized)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	log.
		WithFields(log.Fields{"program": i.programID}).
		Info("Subscribed to program logs")

	for {
		msg, err := sub.Recv(ctx)
		if err != nil {
			return err
		}
		if msg == nil {
			continue
		}
		i.handle(ctx, msg.Value.Signature, msg.Value.Logs, msg.Value.Err != nil)
	}
}

func (i *Indexer) handle(ctx context.Context, sig solana.Signature, logs []string, failed bool) {
	if halted, err := i.systemService.IsHalted(); err != nil || halted {
		if halted {
			log.
				WithFields(log.Fields{"signature": sig}).
				Debug("System halted, skipping chain event")
		}
		return
	}

	kind := Classify(logs)
	if kind == transactions.KindUnknown {
		return
	}

	if failed {
		if err := i.txStore.MarkFailed(sig.String()); err != nil {
			log.
				WithFields(log.Fields{"error": err, "signature": sig}).
				Warn("Could not mark transaction failed")
		}
		return
	}

	owner, amount, err := i.resolveTransaction(ctx, sig)
	if err != nil {
		log.
			WithFields(log.Fields{"error": err, "signature": sig}).
			Warn("Could not resolve transaction details")
		return
	}

	t := &transactions.Transaction{
		Signature: sig.String(),
		Owner:     owner,
		Amount:    int64(amount),
		Kind:      kind,
		Status:    transactions.StatusConfirmed,
	}

	created, err := i.txStore.InsertTransaction(t)
	if err != nil {
		log.
			WithFields(log.Fields{"error": err, "signature": sig}).
			Error("Ledger insert failed for confirmed transaction")
		return
	}
	if !created {
		// The submitter recorded this one as pending; promote it.
		if err := i.txStore.ConfirmTransaction(sig.String()); err != nil {
			log.
				WithFields(log.Fields{"error": err, "signature": sig}).
				Warn("Could not confirm pending transaction")
		}
	}

	if _, err := i.vaultStore.EnsureVault(owner); err != nil {
		log.
			WithFields(log.Fields{"error": err, "owner": owner}).
			Warn("Could not ensure vault row")
		return
	}

	switch kind {
	case transactions.KindDeposit:
		err = i.vaultStore.IncrementDeposited(owner, int64(amount))
	case transactions.KindWithdraw, transactions.KindEmergencyWithdraw:
		err = i.vaultStore.IncrementWithdrawn(owner, int64(amount))
	}
	if err != nil {
		log.
			WithFields(log.Fields{"error": err, "owner": owner, "kind": kind}).
			Warn("Could not update vault aggregates")
	}

	i.refreshSnapshot(ctx, owner, kind, amount)

	i.broker.Publish(events.Event{
		Type: events.BalanceUpdate,
		Payload: map[string]interface{}{
			"owner":     owner,
			"kind":      kind,
			"amount":    amount,
			"signature": sig.String(),
		},
	})
}

// refreshSnapshot prefers the authoritative token balance; when the read
// fails it falls back to applying the event delta to the stored total.
func (i *Indexer) refreshSnapshot(ctx context.Context, owner string, kind transactions.Kind, amount uint64) {
	ownerPk, err := solana_helpers.ValidateAddress(owner)
	if err != nil {
		return
	}

	vault, _, err := solana_helpers.VaultAddress(ownerPk, i.programID)
	if err == nil {
		if ata, err := solana_helpers.AssociatedTokenAddress(vault, i.mint); err == nil {
			if balance, err := solana_helpers.TokenBalance(ctx, i.client, ata); err == nil {
				if err := i.vaultStore.UpdateSnapshot(owner, int64(balance)); err != nil {
					log.
						WithFields(log.Fields{"error": err, "owner": owner}).
						Warn("Could not update balance snapshot")
				}
				return
			}
		}
	}

	v, err := i.vaultStore.Vault(owner)
	if err != nil {
		return
	}

	total := v.TotalBalance
	switch kind {
	case transactions.KindDeposit:
		total += int64(amount)
	case transactions.KindWithdraw, transactions.KindEmergencyWithdraw:
		total -= int64(amount)
		if total < 0 {
			total = 0
		}
	default:
		return
	}

	if err := i.vaultStore.UpdateSnapshot(owner, total); err != nil {
		log.
			WithFields(log.Fields{"error": err, "owner": owner}).
			Warn("Could not update balance snapshot from delta")
	}
}

func (i *Indexer) resolveTransaction(ctx context.Context, sig solana.Signature) (string, uint64, error) {
	maxVersion := uint64(0)
	out, err := i.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentFinalized,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		return "", 0, err
	}

	tx, err := out.Transaction.GetTransaction()
	if err != nil {
		return "", 0, err
	}

	msg := tx.Message
	for _, ix := range msg.Instructions {
		program, err := msg.Program(ix.ProgramIDIndex)
		if err != nil || !program.Equals(i.programID) {
			continue
		}
		if len(ix.Accounts) == 0 {
			continue
		}
		ownerIdx := ix.Accounts[0]
		if int(ownerIdx) >= len(msg.AccountKeys) {
			continue
		}
		return msg.AccountKeys[ownerIdx].String(), decodeAmount(ix.Data), nil
	}

	return "", 0, errNoProgramInstruction
}

// decodeAmount reads the little-endian amount argument. Discriminator
// payloads carry it at offset 8, opcode payloads at offset 1.
func decodeAmount(data []byte) uint64 {
	if len(data) >= 16 {
		return binary.LittleEndian.Uint64(data[8:16])
	}
	if len(data) >= 9 {
		return binary.LittleEndian.Uint64(data[1:9])
	}
	return 0
}
