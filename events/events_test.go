package events

import "testing"

func TestBrokerDeliversToAllSubscribers(t *testing.T) {
	b := NewBroker(4)
	a := b.Subscribe()
	c := b.Subscribe()

	b.Publish(Event{Type: BalanceUpdate, Payload: map[string]interface{}{"owner": "x"}})

	for _, ch := range []<-chan Event{a, c} {
		select {
		case e := <-ch:
			if e.Type != BalanceUpdate {
				t.Errorf("expected %s, got %s", BalanceUpdate, e.Type)
			}
		default:
			t.Error("expected a buffered event")
		}
	}
}

func TestBrokerPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	b := NewBroker(1)
	ch := b.Subscribe()

	b.Publish(Event{Type: DriftAlert})
	b.Publish(Event{Type: DriftAlert})

	if len(ch) != 1 {
		t.Errorf("expected exactly one buffered event, got %d", len(ch))
	}
}
