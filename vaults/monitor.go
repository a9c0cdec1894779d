package vaults

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/stablevault/solana-vault-api/events"
)

// RefreshJobType identifies on-demand balance refresh passes scheduled
// through the worker pool.
const RefreshJobType = "balance_refresh"

// Monitor periodically refreshes vault balances from chain and raises an
// alert when a linked vault drops below the configured threshold.
type Monitor struct {
	ticker       *time.Ticker
	done         chan bool
	service      *Service
	broker       *events.Broker
	interval     time.Duration
	lowThreshold uint64
}

func NewMonitor(service *Service, broker *events.Broker, interval time.Duration, lowThreshold uint64) *Monitor {
	return &Monitor{
		done:         make(chan bool),
		service:      service,
		broker:       broker,
		interval:     interval,
		lowThreshold: lowThreshold,
	}
}

func (m *Monitor) Start() *Monitor {
	if m.ticker != nil {
		return m
	}

	m.ticker = time.NewTicker(m.interval)

	go func() {
		ctx := context.Background()
		for {
			select {
			case <-m.done:
				return
			case <-m.ticker.C:
				m.run(ctx)
			}
		}
	}()

	return m
}

func (m *Monitor) Stop() {
	m.ticker.Stop()
	m.done <- true
	m.ticker = nil
}

// Refresh performs one balance refresh pass outside the ticker schedule.
func (m *Monitor) Refresh(ctx context.Context) {
	m.run(ctx)
}

func (m *Monitor) run(ctx context.Context) {
	vv, err := m.service.store.VaultsWithSettlementAccount()
	if err != nil {
		log.
			WithFields(log.Fields{"error": err}).
			Warn("Balance monitor could not list vaults")
		return
	}

	for _, v := range vv {
		balance, err := m.service.ChainBalance(ctx, v.Owner)
		if err != nil {
			log.
				WithFields(log.Fields{"error": err, "owner": v.Owner}).
				Warn("Balance monitor could not fetch chain balance")
			continue
		}

		if err := m.service.store.UpdateSnapshot(v.Owner, int64(balance)); err != nil {
			log.
				WithFields(log.Fields{"error": err, "owner": v.Owner}).
				Warn("Balance monitor could not update snapshot")
			continue
		}

		if int64(balance) != v.TotalBalance {
			m.broker.Publish(events.Event{
				Type: events.BalanceUpdate,
				Payload: map[string]interface{}{
					"owner":   v.Owner,
					"balance": balance,
				},
			})
		}

		if balance < m.lowThreshold {
			m.broker.Publish(events.Event{
				Type: events.LowBalanceAlert,
				Payload: map[string]interface{}{
					"owner":     v.Owner,
					"balance":   balance,
					"threshold": m.lowThreshold,
				},
			})
		}
	}
}
