package notify

import "context"

// DedupeRepository is the key→expiry ledger behind the dedup gate. An entry
// is present iff a prior Remember for the key has not yet expired.
// Implementations must be safe for concurrent use.
type DedupeRepository interface {
	// Remember records key for ttlSeconds (floored at one second).
	Remember(ctx context.Context, key string, ttlSeconds int) error

	// Exists reports whether key was remembered and has not expired.
	Exists(ctx context.Context, key string) (bool, error)
}

// AtomicDedupeRepository collapses the Exists+Remember pair into one
// conditional insert. The facade prefers it when the configured repository
// implements it, closing the race where two concurrent dispatches with the
// same key both pass the gate.
type AtomicDedupeRepository interface {
	// RememberIfAbsent records key for ttlSeconds unless it is already
	// present, returning true when this call inserted it.
	RememberIfAbsent(ctx context.Context, key string, ttlSeconds int) (bool, error)
}
