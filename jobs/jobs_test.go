package jobs

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stablevault/solana-vault-api/datastore"
)

type memoryStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*Job
}

func newMemoryStore() *memoryStore {
	return &memoryStore{jobs: make(map[uuid.UUID]*Job)}
}

func (s *memoryStore) Jobs(datastore.ListOptions) ([]Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		result = append(result, *j)
	}
	return result, nil
}

func (s *memoryStore) Job(id uuid.UUID) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		return *j, nil
	}
	return Job{}, fmt.Errorf("record not found")
}

func (s *memoryStore) InsertJob(j *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	copy := *j
	s.jobs[j.ID] = &copy
	return nil
}

func (s *memoryStore) UpdateJob(j *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *j
	s.jobs[j.ID] = &copy
	return nil
}

func (s *memoryStore) IncreaseExecCount(j *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j.ExecCount++
	j.State = Accepted
	copy := *j
	s.jobs[j.ID] = &copy
	return nil
}

func (s *memoryStore) SchedulableJobs(time.Duration, time.Duration, datastore.ListOptions) ([]Job, error) {
	return nil, nil
}

func (s *memoryStore) Status() ([]StatusQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[State]int)
	for _, j := range s.jobs {
		counts[j.State]++
	}
	result := make([]StatusQuery, 0, len(counts))
	for state, count := range counts {
		result = append(result, StatusQuery{State: state, Count: count})
	}
	return result, nil
}

func waitForState(t *testing.T, store *memoryStore, id uuid.UUID, want State) Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.Job(id)
		if err == nil && job.State == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	job, _ := store.Job(id)
	t.Fatalf("job never reached state %s, last state %s", want, job.State)
	return Job{}
}

func TestWorkerPoolExecutesJob(t *testing.T) {
	store := newMemoryStore()
	pool := NewWorkerPool(store, 10, 1)
	defer pool.Stop()

	done := make(chan struct{})
	pool.RegisterExecutor("test", func(ctx context.Context, j *Job) error {
		j.Result = "ok"
		close(done)
		return nil
	})

	job, err := pool.CreateJob("test", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := pool.Schedule(job); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("executor never ran")
	}

	final := waitForState(t, store, job.ID, Complete)
	if final.Result != "ok" {
		t.Errorf("expected result ok, got %q", final.Result)
	}
}

func TestWorkerPoolMarksErroredJob(t *testing.T) {
	store := newMemoryStore()
	pool := NewWorkerPool(store, 10, 1)
	defer pool.Stop()

	pool.RegisterExecutor("flaky", func(ctx context.Context, j *Job) error {
		return fmt.Errorf("transient boom")
	})

	job, err := pool.CreateJob("flaky", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := pool.Schedule(job); err != nil {
		t.Fatal(err)
	}

	final := waitForState(t, store, job.ID, Error)
	if final.Error == "" {
		t.Error("expected error message on job")
	}
}

func TestWorkerPoolMarksPermanentFailure(t *testing.T) {
	store := newMemoryStore()
	pool := NewWorkerPool(store, 10, 1)
	defer pool.Stop()

	pool.RegisterExecutor("doomed", func(ctx context.Context, j *Job) error {
		return PermanentFailure(fmt.Errorf("bad input"))
	})

	job, err := pool.CreateJob("doomed", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := pool.Schedule(job); err != nil {
		t.Fatal(err)
	}

	waitForState(t, store, job.ID, Failed)
}

func TestJobKeepsErrorHistoryAcrossAttempts(t *testing.T) {
	store := newMemoryStore()
	pool := NewWorkerPool(store, 10, 1)
	defer pool.Stop()

	var attempt int
	pool.RegisterExecutor("retried", func(ctx context.Context, j *Job) error {
		attempt++
		return fmt.Errorf("attempt %d failed", attempt)
	})

	job, err := pool.CreateJob("retried", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := pool.Schedule(job); err != nil {
		t.Fatal(err)
	}
	first := waitForState(t, store, job.ID, Error)

	if err := pool.Schedule(&first); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	var second Job
	for time.Now().Before(deadline) {
		second, _ = store.Job(job.ID)
		if len(second.Errors) == 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	want := []string{"attempt 1 failed", "attempt 2 failed"}
	if len(second.Errors) != len(want) {
		t.Fatalf("expected %d recorded errors, got %v", len(want), second.Errors)
	}
	for i, msg := range want {
		if second.Errors[i] != msg {
			t.Errorf("error %d: expected %q, got %q", i, msg, second.Errors[i])
		}
	}
	if second.Error != want[len(want)-1] {
		t.Errorf("expected latest error %q, got %q", want[len(want)-1], second.Error)
	}
}

func TestStateTextRoundTrip(t *testing.T) {
	for _, s := range []State{Init, Accepted, NoAvailableWorkers, Error, Failed, Complete} {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got State
		if err := got.UnmarshalText(text); err != nil {
			t.Fatal(err)
		}
		if got != s {
			t.Errorf("expected %s, got %s", s, got)
		}
	}
}
