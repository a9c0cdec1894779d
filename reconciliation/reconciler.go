package reconciliation

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/stablevault/solana-vault-api/events"
	"github.com/stablevault/solana-vault-api/system"
	"github.com/stablevault/solana-vault-api/vaults"
)

// RunJobType identifies on-demand reconciliation passes scheduled through
// the worker pool.
const RunJobType = "reconciliation_run"

// BalanceReader reads the authoritative chain balance for a vault owner.
type BalanceReader interface {
	ChainBalance(ctx context.Context, owner string) (uint64, error)
}

// Reconciler is the drift detection loop. A discrepancy strictly greater
// than the threshold produces a log row and a drift alert.
type Reconciler struct {
	ticker        *time.Ticker
	done          chan bool
	store         Store
	vaultStore    vaults.Store
	reader        BalanceReader
	broker        *events.Broker
	systemService *system.Service
	interval      time.Duration
	threshold     int64
}

func NewReconciler(
	store Store,
	vaultStore vaults.Store,
	reader BalanceReader,
	broker *events.Broker,
	systemService *system.Service,
	interval time.Duration,
	threshold int64,
) *Reconciler {
	return &Reconciler{
		done:          make(chan bool),
		store:         store,
		vaultStore:    vaultStore,
		reader:        reader,
		broker:        broker,
		systemService: systemService,
		interval:      interval,
		threshold:     threshold,
	}
}

func (r *Reconciler) Start() *Reconciler {
	if r.ticker != nil {
		return r
	}

	r.ticker = time.NewTicker(r.interval)

	go func() {
		ctx := context.Background()
		for {
			select {
			case <-r.done:
				return
			case <-r.ticker.C:
				r.Run(ctx)
			}
		}
	}()

	return r
}

func (r *Reconciler) Stop() {
	r.ticker.Stop()
	r.done <- true
	r.ticker = nil
}

// Run performs one reconciliation pass over all linked vaults.
func (r *Reconciler) Run(ctx context.Context) {
	if halted, err := r.systemService.IsHalted(); err != nil || halted {
		return
	}

	vv, err := r.vaultStore.VaultsWithSettlementAccount()
	if err != nil {
		log.
			WithFields(log.Fields{"error": err}).
			Warn("Reconciler could not list vaults")
		return
	}

	for _, v := range vv {
		chainBalance, err := r.reader.ChainBalance(ctx, v.Owner)
		if err != nil {
			log.
				WithFields(log.Fields{"error": err, "owner": v.Owner}).
				Warn("Reconciler could not fetch chain balance")
			continue
		}

		discrepancy := int64(chainBalance) - v.TotalBalance
		if !exceedsThreshold(discrepancy, r.threshold) {
			continue
		}

		entry := &Log{
			VaultOwner:        v.Owner,
			SettlementAccount: v.SettlementAccount,
			DBBalance:         v.TotalBalance,
			ChainBalance:      int64(chainBalance),
			Discrepancy:       discrepancy,
			Threshold:         r.threshold,
		}
		if err := r.store.InsertLog(entry); err != nil {
			log.
				WithFields(log.Fields{"error": err, "owner": v.Owner}).
				Error("Could not insert reconciliation log")
			continue
		}

		log.
			WithFields(log.Fields{
				"owner":        v.Owner,
				"dbBalance":    v.TotalBalance,
				"chainBalance": chainBalance,
				"discrepancy":  discrepancy,
			}).
			Warn("Balance drift detected")

		r.broker.Publish(events.Event{
			Type: events.DriftAlert,
			Payload: map[string]interface{}{
				"owner":        v.Owner,
				"dbBalance":    v.TotalBalance,
				"chainBalance": chainBalance,
				"discrepancy":  discrepancy,
			},
		})
	}
}

// exceedsThreshold is strict: a discrepancy exactly at the threshold is
// tolerated.
func exceedsThreshold(discrepancy, threshold int64) bool {
	abs := discrepancy
	if abs < 0 {
		abs = -abs
	}
	return abs > threshold
}
