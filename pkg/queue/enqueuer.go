package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnqueuerRepository is the storage capability the Enqueuer depends on.
type EnqueuerRepository interface {
	CreateJob(ctx context.Context, job *Job) error
}

// Enqueuer stores payloads as jobs. It is the write side of the queue; the
// acknowledgement of Enqueue is the only thing producers wait for.
type Enqueuer struct {
	repo         EnqueuerRepository
	defaultRoute string
}

// NewEnqueuer creates an Enqueuer backed by repo.
func NewEnqueuer(repo EnqueuerRepository, opts ...EnqueuerOption) (*Enqueuer, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	options := &enqueuerOptions{defaultRoute: DefaultRoute}
	for _, opt := range opts {
		opt(options)
	}

	return &Enqueuer{
		repo:         repo,
		defaultRoute: options.defaultRoute,
	}, nil
}

// Enqueue serializes payload and stores it as a pending job. The job name
// defaults to the payload's qualified type name so workers can match it to a
// typed handler.
func (e *Enqueuer) Enqueue(ctx context.Context, payload any, opts ...EnqueueOption) error {
	if payload == nil {
		return ErrPayloadNil
	}

	options := &enqueueOptions{
		route:       e.defaultRoute,
		maxAttempts: 3,
	}
	for _, opt := range opts {
		opt(options)
	}

	job, err := buildJob(payload, options)
	if err != nil {
		return err
	}

	if err := e.repo.CreateJob(ctx, job); err != nil {
		return fmt.Errorf("queue: create job %q on route %q: %w", job.Name, job.Route, err)
	}
	return nil
}

func buildJob(payload any, options *enqueueOptions) (*Job, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal payload of type %T: %w", payload, err)
	}

	name := options.name
	if name == "" {
		name = qualifiedStructName(payload)
	}

	now := time.Now()
	scheduledAt := now
	if options.scheduledAt != nil {
		scheduledAt = *options.scheduledAt
	} else if options.delay > 0 {
		scheduledAt = now.Add(options.delay)
	}

	return &Job{
		ID:          uuid.New(),
		Route:       options.route,
		Name:        name,
		Payload:     body,
		Status:      JobStatusPending,
		MaxAttempts: options.maxAttempts,
		ScheduledAt: scheduledAt,
		CreatedAt:   now,
	}, nil
}
