// Package workflow defines the data model shared by the monitor,
// orchestrator, and runner: workflows, their ordered tasks, and the job
// requests that flow between components.
//
// A Workflow is loaded once from configuration and treated as read-only;
// each job receives its own clone. Tasks are a closed tagged union of
// user-defined script tasks and builtin tasks with native logic. JobRequest
// equality (library + file path + workflow identity) is the deduplication
// key used by the orchestrator.
package workflow
