package transactions

import "strings"

type Kind string

const (
	KindUnknown           Kind = "unknown"
	KindDeposit           Kind = "deposit"
	KindWithdraw          Kind = "withdraw"
	KindLock              Kind = "lock"
	KindUnlock            Kind = "unlock"
	KindEmergencyWithdraw Kind = "emergency_withdraw"
	KindYieldDeposit      Kind = "yield_deposit"
	KindYieldWithdraw     Kind = "yield_withdraw"
)

type Status string

const (
	StatusUnknown   Status = "unknown"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

func StatusFromText(text string) Status {
	switch strings.ToLower(text) {
	default:
		return StatusUnknown
	case "pending":
		return StatusPending
	case "confirmed":
		return StatusConfirmed
	case "failed":
		return StatusFailed
	}
}
