package jobs

import (
	"time"

	"github.com/google/uuid"

	"github.com/stablevault/solana-vault-api/datastore"
)

// Store manages data regarding jobs.
type Store interface {
	Jobs(datastore.ListOptions) ([]Job, error)
	Job(id uuid.UUID) (Job, error)
	InsertJob(*Job) error
	UpdateJob(*Job) error
	IncreaseExecCount(*Job) error
	SchedulableJobs(acceptedGracePeriod, reSchedulableGracePeriod time.Duration, o datastore.ListOptions) ([]Job, error)
	Status() ([]StatusQuery, error)
}

type StatusQuery struct {
	State State
	Count int
}
