// Package dedupe provides deduplication key stores for the notify facade:
// an in-process Memory store for tests and single-node deployments, and a
// Redis-backed store for anything distributed.
//
// Both implement notify.DedupeRepository and the atomic
// notify.AtomicDedupeRepository upgrade.
package dedupe
