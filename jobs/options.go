package jobs

import (
	"time"

	"github.com/stablevault/solana-vault-api/system"
)

type WorkerPoolOption func(*WorkerPool)

func WithDBJobPollInterval(interval time.Duration) WorkerPoolOption {
	return func(wp *WorkerPool) {
		if interval > 0 {
			wp.dbJobPollInterval = interval
		}
	}
}

func WithSystemService(svc *system.Service) WorkerPoolOption {
	return func(wp *WorkerPool) {
		wp.systemService = svc
	}
}
