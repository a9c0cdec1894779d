package chain_events

import (
	"strings"

	"github.com/stablevault/solana-vault-api/transactions"
)

// Classify maps program log lines to a settlement kind. Substring checks
// run from most to least specific: "unlock" and "emergency_withdraw"
// would otherwise be shadowed by "lock" and "withdraw".
func Classify(logs []string) transactions.Kind {
	joined := strings.ToLower(strings.Join(logs, "\n"))

	switch {
	case strings.Contains(joined, "emergency_withdraw"):
		return transactions.KindEmergencyWithdraw
	case strings.Contains(joined, "unlock"):
		return transactions.KindUnlock
	case strings.Contains(joined, "lock"):
		return transactions.KindLock
	case strings.Contains(joined, "yield_deposit"):
		return transactions.KindYieldDeposit
	case strings.Contains(joined, "yield_withdraw"):
		return transactions.KindYieldWithdraw
	case strings.Contains(joined, "withdraw"):
		return transactions.KindWithdraw
	case strings.Contains(joined, "deposit"):
		return transactions.KindDeposit
	default:
		return transactions.KindUnknown
	}
}
