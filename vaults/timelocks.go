package vaults

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/stablevault/solana-vault-api/events"
)

// TimelockSweeper flags timelocks whose release time falls inside the
// due-soon window so downstream consumers can act before funds unlock.
type TimelockSweeper struct {
	ticker   *time.Ticker
	done     chan bool
	store    Store
	broker   *events.Broker
	interval time.Duration
	window   time.Duration
}

func NewTimelockSweeper(store Store, broker *events.Broker, interval, window time.Duration) *TimelockSweeper {
	return &TimelockSweeper{
		done:     make(chan bool),
		store:    store,
		broker:   broker,
		interval: interval,
		window:   window,
	}
}

func (s *TimelockSweeper) Start() *TimelockSweeper {
	if s.ticker != nil {
		return s
	}

	s.ticker = time.NewTicker(s.interval)

	go func() {
		for {
			select {
			case <-s.done:
				return
			case <-s.ticker.C:
				s.run()
			}
		}
	}()

	return s
}

func (s *TimelockSweeper) Stop() {
	s.ticker.Stop()
	s.done <- true
	s.ticker = nil
}

func (s *TimelockSweeper) run() {
	due, err := s.store.DueTimelocks(s.window)
	if err != nil {
		log.
			WithFields(log.Fields{"error": err}).
			Warn("Timelock sweep could not list due timelocks")
		return
	}

	for _, t := range due {
		s.broker.Publish(events.Event{
			Type: events.TimelockAvailable,
			Payload: map[string]interface{}{
				"owner":     t.Owner,
				"amount":    t.Amount,
				"releaseAt": t.ReleaseAt,
			},
		})

		if err := s.store.MarkTimelockNotified(t.ID); err != nil {
			log.
				WithFields(log.Fields{"error": err, "timelockID": t.ID}).
				Warn("Could not mark timelock notified")
		}
	}
}
