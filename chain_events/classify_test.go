package chain_events

import (
	"encoding/binary"
	"testing"

	"github.com/stablevault/solana-vault-api/transactions"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		logs []string
		want transactions.Kind
	}{
		{
			name: "deposit",
			logs: []string{"Program log: Instruction: Deposit", "Program log: amount=100"},
			want: transactions.KindDeposit,
		},
		{
			name: "withdraw",
			logs: []string{"Program log: Instruction: Withdraw"},
			want: transactions.KindWithdraw,
		},
		{
			// "unlock" contains "lock"; ordering matters.
			name: "unlock not shadowed by lock",
			logs: []string{"Program log: Instruction: Unlock"},
			want: transactions.KindUnlock,
		},
		{
			name: "lock",
			logs: []string{"Program log: Instruction: Lock collateral"},
			want: transactions.KindLock,
		},
		{
			// "emergency_withdraw" contains "withdraw"; ordering matters.
			name: "emergency withdraw not shadowed",
			logs: []string{"Program log: Instruction: emergency_withdraw"},
			want: transactions.KindEmergencyWithdraw,
		},
		{
			name: "yield deposit not shadowed by deposit",
			logs: []string{"Program log: Instruction: yield_deposit"},
			want: transactions.KindYieldDeposit,
		},
		{
			name: "unrelated logs",
			logs: []string{"Program log: hello"},
			want: transactions.KindUnknown,
		},
		{
			name: "empty",
			logs: nil,
			want: transactions.KindUnknown,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Classify(c.logs); got != c.want {
				t.Errorf("expected %s, got %s", c.want, got)
			}
		})
	}
}

func TestDecodeAmount(t *testing.T) {
	discPayload := make([]byte, 16)
	binary.LittleEndian.PutUint64(discPayload[8:], 4242)
	if got := decodeAmount(discPayload); got != 4242 {
		t.Errorf("discriminator payload: expected 4242, got %d", got)
	}

	opPayload := make([]byte, 9)
	opPayload[0] = 10
	binary.LittleEndian.PutUint64(opPayload[1:], 77)
	if got := decodeAmount(opPayload); got != 77 {
		t.Errorf("opcode payload: expected 77, got %d", got)
	}

	if got := decodeAmount([]byte{1, 2}); got != 0 {
		t.Errorf("short payload: expected 0, got %d", got)
	}
}
