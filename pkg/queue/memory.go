package queue

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-process implementation of EnqueuerRepository and
// WorkerRepository for tests and single-node deployments. Expired locks are
// recovered lazily during ClaimJob, so no background goroutine is needed.
type MemoryStorage struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*Job

	byRoute  map[string][]uuid.UUID
	byStatus map[JobStatus][]uuid.UUID
}

// NewMemoryStorage creates an empty in-memory queue store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		jobs:     make(map[uuid.UUID]*Job),
		byRoute:  make(map[string][]uuid.UUID),
		byStatus: make(map[JobStatus][]uuid.UUID),
	}
}

// CreateJob implements EnqueuerRepository.
func (ms *MemoryStorage) CreateJob(ctx context.Context, job *Job) error {
	if job == nil {
		return ErrPayloadNil
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	clone := *job
	ms.jobs[job.ID] = &clone
	ms.byRoute[job.Route] = append(ms.byRoute[job.Route], job.ID)
	ms.byStatus[job.Status] = append(ms.byStatus[job.Status], job.ID)
	return nil
}

// ClaimJob implements WorkerRepository. The earliest-due pending job on the
// requested routes wins; ties break by creation time.
func (ms *MemoryStorage) ClaimJob(ctx context.Context, workerID uuid.UUID, routes []string, lockFor time.Duration) (*Job, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	ms.recoverExpiredLocks(now)

	var best *Job
	for _, id := range ms.byStatus[JobStatusPending] {
		job := ms.jobs[id]
		if !slices.Contains(routes, job.Route) {
			continue
		}
		if job.ScheduledAt.After(now) {
			continue
		}
		if best == nil ||
			job.ScheduledAt.Before(best.ScheduledAt) ||
			(job.ScheduledAt.Equal(best.ScheduledAt) && job.CreatedAt.Before(best.CreatedAt)) {
			best = job
		}
	}
	if best == nil {
		return nil, ErrNoJobToClaim
	}

	lockUntil := now.Add(lockFor)
	best.Status = JobStatusProcessing
	best.LockedUntil = &lockUntil
	best.LockedBy = &workerID
	ms.moveStatus(best.ID, JobStatusPending, JobStatusProcessing)

	clone := *best
	return &clone, nil
}

// CompleteJob implements WorkerRepository.
func (ms *MemoryStorage) CompleteJob(ctx context.Context, jobID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, ok := ms.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}

	now := time.Now()
	from := job.Status
	job.Status = JobStatusCompleted
	job.ProcessedAt = &now
	job.LockedUntil = nil
	job.LockedBy = nil
	ms.moveStatus(jobID, from, JobStatusCompleted)
	return nil
}

// FailJob implements WorkerRepository. While attempts remain the job is
// rescheduled with a linear backoff (30s per attempt); afterwards it is
// parked as failed.
func (ms *MemoryStorage) FailJob(ctx context.Context, jobID uuid.UUID, errorMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, ok := ms.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}

	from := job.Status
	job.Attempts++
	job.Error = &errorMsg
	job.LockedUntil = nil
	job.LockedBy = nil

	if job.Attempts >= job.MaxAttempts {
		job.Status = JobStatusFailed
		ms.moveStatus(jobID, from, JobStatusFailed)
		return nil
	}

	job.Status = JobStatusPending
	job.ScheduledAt = time.Now().Add(time.Duration(job.Attempts) * 30 * time.Second)
	ms.moveStatus(jobID, from, JobStatusPending)
	return nil
}

// Jobs returns a snapshot of every stored job, useful in tests.
func (ms *MemoryStorage) Jobs() []Job {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	out := make([]Job, 0, len(ms.jobs))
	for _, job := range ms.jobs {
		out = append(out, *job)
	}
	return out
}

// recoverExpiredLocks resets processing jobs whose lock has lapsed back to
// pending so another worker can claim them. Must be called with mu held.
func (ms *MemoryStorage) recoverExpiredLocks(now time.Time) {
	for _, id := range slices.Clone(ms.byStatus[JobStatusProcessing]) {
		job := ms.jobs[id]
		if job.LockedUntil != nil && job.LockedUntil.Before(now) {
			job.Status = JobStatusPending
			job.LockedUntil = nil
			job.LockedBy = nil
			ms.moveStatus(id, JobStatusProcessing, JobStatusPending)
		}
	}
}

func (ms *MemoryStorage) moveStatus(id uuid.UUID, from, to JobStatus) {
	ms.byStatus[from] = slices.DeleteFunc(ms.byStatus[from], func(v uuid.UUID) bool {
		return v == id
	})
	ms.byStatus[to] = append(ms.byStatus[to], id)
}
