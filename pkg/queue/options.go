package queue

import (
	"log/slog"
	"time"
)

// EnqueuerOption configures an Enqueuer.
type EnqueuerOption func(*enqueuerOptions)

type enqueuerOptions struct {
	defaultRoute string
}

// WithDefaultRoute sets the route used when Enqueue is called without one.
func WithDefaultRoute(route string) EnqueuerOption {
	return func(o *enqueuerOptions) {
		if route != "" {
			o.defaultRoute = route
		}
	}
}

// EnqueueOption configures a single Enqueue call.
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	route       string
	maxAttempts int8
	delay       time.Duration
	scheduledAt *time.Time
	name        string
}

// WithRoute targets the job at a named route.
func WithRoute(route string) EnqueueOption {
	return func(o *enqueueOptions) {
		if route != "" {
			o.route = route
		}
	}
}

// WithDelay makes the job due only after the given delay has elapsed.
func WithDelay(delay time.Duration) EnqueueOption {
	return func(o *enqueueOptions) {
		if delay > 0 {
			o.delay = delay
		}
	}
}

// WithScheduledAt makes the job due at an absolute time, overriding WithDelay.
func WithScheduledAt(at time.Time) EnqueueOption {
	return func(o *enqueueOptions) {
		o.scheduledAt = &at
	}
}

// WithJobName overrides the job name derived from the payload type.
func WithJobName(name string) EnqueueOption {
	return func(o *enqueueOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithMaxAttempts sets the attempt budget (1-10).
func WithMaxAttempts(n int8) EnqueueOption {
	return func(o *enqueueOptions) {
		if n >= 1 && n <= 10 {
			o.maxAttempts = n
		}
	}
}

// WorkerOption configures a Worker.
type WorkerOption func(*workerOptions)

type workerOptions struct {
	routes       []string
	pullInterval time.Duration
	lockTimeout  time.Duration
	concurrency  int
	logger       *slog.Logger
}

// WithRoutes sets the routes the worker claims jobs from.
func WithRoutes(routes ...string) WorkerOption {
	return func(o *workerOptions) {
		if len(routes) > 0 {
			o.routes = routes
		}
	}
}

// WithPullInterval sets how often the worker polls for due jobs.
func WithPullInterval(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.pullInterval = d
		}
	}
}

// WithLockTimeout bounds how long a claimed job stays locked to one worker.
func WithLockTimeout(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.lockTimeout = d
		}
	}
}

// WithConcurrency sets how many jobs the worker processes at once.
func WithConcurrency(n int) WorkerOption {
	return func(o *workerOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLogger sets the worker's logger.
func WithLogger(logger *slog.Logger) WorkerOption {
	return func(o *workerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
