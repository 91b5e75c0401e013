package queue

import (
	"context"
	"encoding/json"
)

// Handler consumes jobs whose name matches Name().
type Handler interface {
	Name() string
	Handle(ctx context.Context, payload json.RawMessage) error
}

// JobHandlerFunc processes one decoded payload of type T.
type JobHandlerFunc[T any] func(ctx context.Context, payload T) error

// NewJobHandler wraps a typed function as a Handler. The handler name is the
// payload's qualified type name, matching what Enqueue derives for the same
// type, so producer and consumer agree without sharing constants.
func NewJobHandler[T any](fn JobHandlerFunc[T]) Handler {
	var zero T
	return &jobHandler[T]{name: qualifiedStructName(zero), fn: fn}
}

type jobHandler[T any] struct {
	name string
	fn   JobHandlerFunc[T]
}

func (h *jobHandler[T]) Name() string { return h.name }

func (h *jobHandler[T]) Handle(ctx context.Context, payload json.RawMessage) error {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return err
	}
	return h.fn(ctx, v)
}
