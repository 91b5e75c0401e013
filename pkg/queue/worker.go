package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// WorkerRepository is the storage capability the Worker depends on.
type WorkerRepository interface {
	// ClaimJob atomically claims the next due job on one of the routes,
	// locking it for lockFor. It returns ErrNoJobToClaim when nothing is due.
	ClaimJob(ctx context.Context, workerID uuid.UUID, routes []string, lockFor time.Duration) (*Job, error)

	// CompleteJob marks a claimed job as completed.
	CompleteJob(ctx context.Context, jobID uuid.UUID) error

	// FailJob records a failed attempt. The storage reschedules the job with
	// backoff while attempts remain and parks it as failed afterwards.
	FailJob(ctx context.Context, jobID uuid.UUID, errorMsg string) error
}

// Worker polls for due jobs on its routes and dispatches them to registered
// handlers. A handler panic is contained and counted as a failed attempt.
type Worker struct {
	repo     WorkerRepository
	handlers map[string]Handler
	routes   []string
	workerID uuid.UUID
	sem      chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopMu   sync.Mutex
	stopping atomic.Bool

	pullInterval time.Duration
	lockTimeout  time.Duration
	logger       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWorker creates a worker claiming jobs from repo.
func NewWorker(repo WorkerRepository, opts ...WorkerOption) (*Worker, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	options := &workerOptions{
		routes:       []string{DefaultRoute},
		pullInterval: 5 * time.Second,
		lockTimeout:  5 * time.Minute,
		concurrency:  1,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		repo:         repo,
		handlers:     make(map[string]Handler),
		routes:       options.routes,
		workerID:     uuid.New(),
		sem:          make(chan struct{}, options.concurrency),
		pullInterval: options.pullInterval,
		lockTimeout:  options.lockTimeout,
		logger:       options.logger,
	}, nil
}

// RegisterHandlers adds handlers to the worker's dispatch table. A handler
// registered for an already-known name replaces the previous one.
func (w *Worker) RegisterHandlers(handlers ...Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, h := range handlers {
		if h != nil {
			w.handlers[h.Name()] = h
		}
	}
}

// Start begins polling in the background until Stop or ctx cancellation.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return fmt.Errorf("queue: worker already started")
	}
	if len(w.handlers) == 0 {
		w.mu.Unlock()
		return ErrNoHandlers
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.stopping.Store(false)
	go w.run()

	w.logger.Info("queue worker started",
		slog.String("worker_id", w.workerID.String()),
		slog.Any("routes", w.routes))
	return nil
}

// Stop cancels polling and waits for in-flight jobs to finish.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return fmt.Errorf("queue: worker not started")
	}

	w.stopMu.Lock()
	w.stopping.Store(true)
	w.stopMu.Unlock()

	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()

	w.logger.Info("queue worker stopped", slog.String("worker_id", w.workerID.String()))
	return nil
}

// Run returns a closure suitable for errgroup.Group.Go: it starts the worker,
// blocks until ctx is done, then stops it.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return w.Stop()
	}
}

func (w *Worker) run() {
	ticker := time.NewTicker(w.pullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			select {
			case w.sem <- struct{}{}:
				w.stopMu.Lock()
				if w.stopping.Load() {
					w.stopMu.Unlock()
					<-w.sem
					return
				}
				w.wg.Add(1)
				w.stopMu.Unlock()

				go func() {
					defer w.wg.Done()
					defer func() { <-w.sem }()
					if err := w.pullAndProcess(); err != nil && !errors.Is(err, ErrHandlerNotFound) {
						w.logger.Error("queue: process job",
							slog.String("worker_id", w.workerID.String()),
							slog.String("error", err.Error()))
					}
				}()
			default:
				// All slots busy; next tick will retry.
			}
		}
	}
}

func (w *Worker) pullAndProcess() error {
	job, err := w.repo.ClaimJob(w.ctx, w.workerID, w.routes, w.lockTimeout)
	if err != nil {
		if errors.Is(err, ErrNoJobToClaim) {
			return nil
		}
		return fmt.Errorf("queue: claim job: %w", err)
	}
	if job == nil {
		return nil
	}
	return w.process(job)
}

func (w *Worker) process(job *Job) (retErr error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("queue: panic in handler: %v", r)
			w.logger.Error("job handler panicked",
				slog.String("job_id", job.ID.String()),
				slog.String("job_name", job.Name),
				slog.Any("panic", r))
			_ = w.repo.FailJob(w.ctx, job.ID, retErr.Error())
		}
	}()

	w.mu.RLock()
	handler, ok := w.handlers[job.Name]
	w.mu.RUnlock()

	if !ok {
		msg := "no handler registered for job name: " + job.Name
		if err := w.repo.FailJob(w.ctx, job.ID, msg); err != nil {
			return fmt.Errorf("queue: mark job %s failed: %w", job.ID, err)
		}
		w.logger.Error("unhandled job", slog.String("job_name", job.Name))
		return ErrHandlerNotFound
	}

	// Jobs keep running through graceful shutdown, bounded by the lock window
	// rather than the worker's lifecycle context.
	ctx, cancel := context.WithTimeout(context.Background(), w.lockTimeout)
	defer cancel()

	if err := handler.Handle(ctx, job.Payload); err != nil {
		if ferr := w.repo.FailJob(w.ctx, job.ID, err.Error()); ferr != nil {
			return fmt.Errorf("queue: mark job %s failed: %w", job.ID, ferr)
		}
		w.logger.Error("job failed",
			slog.String("job_id", job.ID.String()),
			slog.String("job_name", job.Name),
			slog.Int("attempts", int(job.Attempts)+1),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return nil
	}

	if err := w.repo.CompleteJob(w.ctx, job.ID); err != nil {
		return fmt.Errorf("queue: mark job %s completed: %w", job.ID, err)
	}
	w.logger.Info("job completed",
		slog.String("job_id", job.ID.String()),
		slog.String("job_name", job.Name),
		slog.String("route", job.Route),
		slog.Duration("duration", time.Since(start)))
	return nil
}
