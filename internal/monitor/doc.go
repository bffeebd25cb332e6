// Package monitor watches library directories for files matching their
// workflow's extensions and submits job requests to the orchestrator. Each
// library gets its own scan goroutine; scans are plain recursive walks on a
// fixed interval, so files are rediscovered until a run commits a change or
// they disappear. The orchestrator's deduplication absorbs the repeats.
package monitor
