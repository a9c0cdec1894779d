package transactions

import (
	"time"

	"go.uber.org/ratelimit"

	"github.com/stablevault/solana-vault-api/jobs"
)

type ServiceOption func(*Service)

// WithTxRatelimiter caps outgoing sends per second towards the RPC node.
func WithTxRatelimiter(rps int) ServiceOption {
	return func(svc *Service) {
		if rps > 0 {
			svc.txRatelimiter = ratelimit.New(rps)
		}
	}
}

func WithSendRetries(attempts int) ServiceOption {
	return func(svc *Service) {
		if attempts > 0 {
			svc.sendRetries = attempts
		}
	}
}

// WithConfirmationWait bounds how long a sync submission waits for the
// cluster to confirm before handing off to the indexer.
func WithConfirmationWait(d time.Duration) ServiceOption {
	return func(svc *Service) {
		if d > 0 {
			svc.confirmWait = d
		}
	}
}

// WithWorkerPool enables queued sends through SubmitAsync.
func WithWorkerPool(wp *jobs.WorkerPool) ServiceOption {
	return func(svc *Service) {
		svc.wp = wp
	}
}
