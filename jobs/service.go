package jobs

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/stablevault/solana-vault-api/datastore"
	"github.com/stablevault/solana-vault-api/errors"
)

// Service defines the API for job HTTP handlers.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store}
}

func (s *Service) List(limit, offset int) ([]Job, error) {
	o := datastore.ParseListOptions(limit, offset)
	return s.store.Jobs(o)
}

// Details returns a specific job.
func (s *Service) Details(jobID string) (Job, error) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		return Job{}, &errors.RequestError{
			StatusCode: http.StatusBadRequest,
			Err:        fmt.Errorf("invalid job id"),
		}
	}

	job, err := s.store.Job(id)
	if err != nil && err.Error() == "record not found" {
		return Job{}, &errors.RequestError{
			StatusCode: http.StatusNotFound,
			Err:        fmt.Errorf("job not found"),
		}
	}

	return job, err
}
