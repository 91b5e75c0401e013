// Package queue provides the route-addressed work queue behind deferred and
// forced-transport notification dispatch.
//
// Three pieces cooperate through small repository interfaces:
//
//   - Enqueuer — serializes a payload and stores it as a Job with an optional
//     delivery delay and a target route
//   - Worker   — claims due jobs on its routes and dispatches them to a
//     registered Handler
//   - MemoryStorage — an in-process implementation of both repository
//     interfaces for tests and single-node deployments
//
// A route is a named delivery lane ("async", "sync", a broker queue name).
// Producers pick the route per job; workers subscribe to the routes they
// serve. Persistence is pluggable: back the queue with any store by
// implementing EnqueuerRepository and WorkerRepository.
//
// Jobs are one-shot and immutable once stored. A failing handler consumes one
// attempt and the job is rescheduled with a linear backoff until its attempt
// budget is spent, after which it stays failed for inspection.
package queue
