package notify

import (
	"context"

	"github.com/neoxlab/notify/pkg/queue"
)

// QueueGateway is the enqueue-with-delay-and-routing capability behind the
// deferral and forced-transport gates. *queue.Enqueuer satisfies it directly;
// any broker client with the same acknowledgement semantics can stand in.
//
// The facade never retries a gateway call: an enqueue error surfaces as a
// failed outcome.
type QueueGateway interface {
	Enqueue(ctx context.Context, payload any, opts ...queue.EnqueueOption) error
}
