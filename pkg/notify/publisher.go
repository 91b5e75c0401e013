package notify

import "context"

// StatusPublisher mirrors finalized outcomes to an external channel (message
// bus, audit stream). Publishing is best-effort: the facade swallows errors
// and panics from it, and the dispatch outcome is never affected.
type StatusPublisher interface {
	Publish(ctx context.Context, out Outcome) error
}
