package system

import (
	"time"
)

type ServiceOption func(*Service)

func WithPauseDuration(duration time.Duration) ServiceOption {
	return func(svc *Service) {
		if duration > 0 {
			svc.pauseDuration = duration
		}
	}
}
