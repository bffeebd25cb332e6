// Package orchestrator accepts job requests from the library monitors,
// queues them in arrival order, and feeds them to the workflow runner one at
// a time. A single worker keeps scratchpad and disk contention predictable;
// deduplication prevents the same file from being queued twice while a prior
// request for it is still pending.
package orchestrator
