package jobs

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stablevault/solana-vault-api/datastore"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &GormStore{db}
}

func (s *GormStore) Jobs(o datastore.ListOptions) (jobs []Job, err error) {
	err = s.db.
		Order("created_at desc").
		Limit(o.Limit).
		Offset(o.Offset).
		Find(&jobs).Error
	return
}

func (s *GormStore) Job(id uuid.UUID) (job Job, err error) {
	err = s.db.First(&job, "id = ?", id).Error
	return
}

func (s *GormStore) InsertJob(job *Job) error {
	return s.db.Create(job).Error
}

func (s *GormStore) UpdateJob(job *Job) error {
	return s.db.Save(job).Error
}

// IncreaseExecCount claims a job for execution. The state guard keeps two
// workers from processing the same database-scheduled job.
func (s *GormStore) IncreaseExecCount(job *Job) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(job).
			Where("exec_count = ?", job.ExecCount).
			Updates(map[string]interface{}{
				"state":      Accepted,
				"exec_count": gorm.Expr("exec_count + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("job %s already claimed", job.ID)
		}
		job.State = Accepted
		job.ExecCount++
		return nil
	})
}

func (s *GormStore) SchedulableJobs(acceptedGracePeriod, reSchedulableGracePeriod time.Duration, o datastore.ListOptions) (jobs []Job, err error) {
	now := time.Now()
	err = s.db.
		Where("state in ? AND updated_at < ?", []State{Init, Accepted}, now.Add(-acceptedGracePeriod)).
		Or("state in ? AND updated_at < ?", []State{NoAvailableWorkers, Error}, now.Add(-reSchedulableGracePeriod)).
		Order("created_at asc").
		Limit(o.Limit).
		Offset(o.Offset).
		Find(&jobs).Error
	return
}

func (s *GormStore) Status() (result []StatusQuery, err error) {
	err = s.db.
		Model(&Job{}).
		Select("state, count(*) as count").
		Group("state").
		Find(&result).Error
	return
}
