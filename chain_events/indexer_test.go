package chain_events

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/goleak"

	"github.com/stablevault/solana-vault-api/events"
)

func TestIndexerStartStopLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	// The websocket endpoint is unreachable, so the loop cycles through
	// failed connects and the fixed reconnect delay. The stores are never
	// touched without a live subscription.
	i := NewIndexer(
		rpc.New("http://127.0.0.1:0"),
		"ws://127.0.0.1:0",
		solana.SystemProgramID,
		solana.SystemProgramID,
		nil,
		nil,
		events.NewBroker(8),
		nil,
		10*time.Millisecond,
	)

	i.Start()
	time.Sleep(50 * time.Millisecond)
	i.Stop()

	// Stop is idempotent.
	i.Stop()
}
