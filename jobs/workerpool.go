package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/stablevault/solana-vault-api/datastore"
	"github.com/stablevault/solana-vault-api/system"
)

// maxJobErrorCount bounds how many times a job is retried before it is
// marked failed for good.
const maxJobErrorCount = 10

var (
	ErrInvalidJobType   = errors.New("invalid job type")
	ErrPermanentFailure = errors.New("permanent failure")

	defaultDBJobPollInterval = 30 * time.Second

	// Jobs stuck in INIT or ACCEPTED are picked up again after this
	// grace period. They belong to an executor that was disrupted
	// mid-run.
	acceptedGracePeriod = 3 * time.Minute

	// Jobs in NO_AVAILABLE_WORKERS or ERROR wait this long before the
	// database scheduler retries them.
	reSchedulableGracePeriod = 1 * time.Minute
)

// ExecutorFunc runs one job. Returning an error wrapping
// ErrPermanentFailure stops further retries.
type ExecutorFunc func(ctx context.Context, j *Job) error

// WorkerPool runs persisted jobs on a fixed set of workers. Jobs that
// cannot be enqueued immediately are stored and picked up later by the
// database scheduler, so a restart never loses work.
type WorkerPool struct {
	wg        sync.WaitGroup
	queue     chan *Job
	done      chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	executors map[string]ExecutorFunc

	store             Store
	capacity          uint
	workerCount       uint
	dbJobPollInterval time.Duration

	systemService *system.Service
}

type JobQueueStatus struct {
	JobsInit        int `json:"jobsInit"`
	JobsAccepted    int `json:"jobsAccepted"`
	JobsNotAccepted int `json:"jobsNotAccepted"`
	JobsErrored     int `json:"jobsErrored"`
	JobsFailed      int `json:"jobsFailed"`
	JobsCompleted   int `json:"jobsCompleted"`
}

type WorkerPoolStatus struct {
	JobQueueStatus
	Capacity    int `json:"poolCapacity"`
	WorkerCount int `json:"workerCount"`
}

func NewWorkerPool(store Store, capacity uint, workerCount uint, opts ...WorkerPoolOption) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	wp := &WorkerPool{
		queue:     make(chan *Job, capacity),
		done:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
		executors: make(map[string]ExecutorFunc),

		store:             store,
		capacity:          capacity,
		workerCount:       workerCount,
		dbJobPollInterval: defaultDBJobPollInterval,
	}

	for _, opt := range opts {
		opt(wp)
	}

	wp.startWorkers()
	wp.startDBJobScheduler()

	return wp
}

// Status reports per-state job counts alongside the pool dimensions.
func (wp *WorkerPool) Status() (WorkerPoolStatus, error) {
	var status WorkerPoolStatus

	rows, err := wp.store.Status()
	if err != nil {
		return status, err
	}

	for _, r := range rows {
		switch r.State {
		case Init:
			status.JobsInit = r.Count
		case NoAvailableWorkers:
			status.JobsNotAccepted = r.Count
		case Accepted:
			status.JobsAccepted = r.Count
		case Error:
			status.JobsErrored = r.Count
		case Failed:
			status.JobsFailed = r.Count
		case Complete:
			status.JobsCompleted = r.Count
		}
	}

	status.Capacity = int(wp.capacity)
	status.WorkerCount = int(wp.workerCount)

	return status, nil
}

// CreateJob persists a new job of the given type, ready for Schedule.
func (wp *WorkerPool) CreateJob(jobType, signature string) (*Job, error) {
	job := &Job{
		State:     Init,
		Type:      jobType,
		Signature: signature,
	}

	if err := wp.store.InsertJob(job); err != nil {
		return nil, err
	}

	return job, nil
}

func (wp *WorkerPool) RegisterExecutor(jobType string, executor ExecutorFunc) {
	wp.executors[jobType] = executor
}

// Schedule offers the job to the worker queue without blocking. A full
// queue parks the job in NO_AVAILABLE_WORKERS for the database
// scheduler to retry.
func (wp *WorkerPool) Schedule(j *Job) error {
	if wp.paused() {
		// The database scheduler picks this job up once the pause ends.
		return nil
	}

	if !wp.tryEnqueue(j, false) {
		j.State = NoAvailableWorkers
		if err := wp.store.UpdateJob(j); err != nil {
			return err
		}
	}

	return nil
}

func (wp *WorkerPool) Stop() {
	close(wp.done)
	close(wp.queue)
	wp.cancel()
	wp.wg.Wait()
}

func (wp *WorkerPool) Capacity() uint {
	return wp.capacity
}

func (wp *WorkerPool) QueueSize() uint {
	return uint(len(wp.queue))
}

func (wp *WorkerPool) paused() bool {
	return wp.systemService != nil && wp.systemService.IsMaintenanceMode()
}

// accept claims the job by bumping its execution count. A claim that
// cannot be recorded means another instance may own the job.
func (wp *WorkerPool) accept(job *Job) bool {
	if err := wp.store.IncreaseExecCount(job); err != nil {
		log.
			WithFields(log.Fields{"error": err, "jobID": job.ID}).
			Warn("Failed to claim job")
		return false
	}
	return true
}

func (wp *WorkerPool) startDBJobScheduler() {
	go func() {
		var rest time.Duration

		for {
			select {
			case <-time.After(rest):
			case <-wp.done:
				return
			}

			if wp.paused() {
				rest = wp.dbJobPollInterval
				continue
			}

			begin := time.Now()

			schedulable, err := wp.store.SchedulableJobs(
				acceptedGracePeriod, reSchedulableGracePeriod,
				datastore.ParseListOptions(0, 0),
			)
			if err != nil {
				log.
					WithFields(log.Fields{"error": err}).
					Warn("Could not list schedulable jobs")
				rest = wp.dbJobPollInterval
				continue
			}

			for i := range schedulable {
				wp.tryEnqueue(&schedulable[i], true)
			}

			rest = wp.dbJobPollInterval - time.Since(begin)
		}
	}()
}

func (wp *WorkerPool) startWorkers() {
	for i := uint(0); i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go func() {
			defer wp.wg.Done()
			for job := range wp.queue {
				if job == nil {
					return
				}
				wp.process(job)
			}
		}()
	}
}

func (wp *WorkerPool) tryEnqueue(job *Job, block bool) bool {
	if block {
		wp.queue <- job
		return true
	}

	select {
	case wp.queue <- job:
		return true
	default:
		return false
	}
}

func (wp *WorkerPool) process(job *Job) {
	if !wp.accept(job) {
		return
	}

	executor, ok := wp.executors[job.Type]
	if !ok {
		log.
			WithFields(log.Fields{"jobID": job.ID, "jobType": job.Type}).
			Warn("No registered executor for job type")
		job.State = NoAvailableWorkers
		if err := wp.store.UpdateJob(job); err != nil {
			log.
				WithFields(log.Fields{"error": err, "jobID": job.ID}).
				Warn("Could not update job")
		}
		return
	}

	if err := executor(wp.ctx, job); err != nil {
		if job.ExecCount > maxJobErrorCount || errors.Is(err, ErrPermanentFailure) {
			job.State = Failed
		} else {
			job.State = Error
		}
		job.Error = err.Error()
		// Error keeps the latest message, Errors the whole attempt history.
		job.Errors = append(job.Errors, err.Error())
		log.
			WithFields(log.Fields{"error": err, "jobID": job.ID, "jobType": job.Type}).
			Warn("Job execution resulted with error")
	} else {
		job.State = Complete
		job.Error = ""
	}

	if err := wp.store.UpdateJob(job); err != nil {
		log.
			WithFields(log.Fields{"error": err, "jobID": job.ID, "jobType": job.Type}).
			Warn("Could not update job")
	}
}

// PermanentFailure marks err as non-retryable.
func PermanentFailure(err error) error {
	return fmt.Errorf("%w: %s", ErrPermanentFailure, err.Error())
}
