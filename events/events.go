// Package events distributes internal notifications to in-process
// subscribers without blocking the producers.
package events

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

type Type string

const (
	BalanceUpdate       Type = "balance_update"
	WithdrawalSubmitted Type = "withdrawal_submitted"
	ProposalCreated     Type = "proposal_created"
	ApprovalRecorded    Type = "approval_recorded"
	DriftAlert          Type = "drift_alert"
	LowBalanceAlert     Type = "low_balance_alert"
	TimelockAvailable   Type = "timelock_available"
)

type Event struct {
	Type    Type                   `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

// Broker fans events out to subscriber channels. Publish never blocks;
// events to a full subscriber are dropped.
type Broker struct {
	mu         sync.RWMutex
	subs       []chan Event
	bufferSize int
}

func NewBroker(bufferSize int) *Broker {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Broker{bufferSize: bufferSize}
}

func (b *Broker) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, b.bufferSize)
	b.subs = append(b.subs, ch)
	return ch
}

func (b *Broker) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			log.
				WithFields(log.Fields{"type": event.Type}).
				Warn("Event subscriber buffer full, dropping event")
		}
	}
}
