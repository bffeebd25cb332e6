package workflow

import "fmt"

// TaskKind discriminates the task union. The set is closed: dispatch happens
// by switching on the kind, not by open-ended interfaces.
type TaskKind int

const (
	// TaskCustom is a user-defined task whose probe and command are shell
	// scripts from configuration.
	TaskCustom TaskKind = iota
	// TaskBuiltin is a task with fixed native logic selected by BuiltinKind.
	TaskBuiltin
)

// BuiltinKind names a builtin task implementation.
type BuiltinKind string

// BuiltinTranscodeH265 re-encodes the staged file's video stream to H.265
// unless it already is.
const BuiltinTranscodeH265 BuiltinKind = "transcode-h265"

// KnownBuiltin reports whether the identifier names a builtin task. Used by
// configuration loading so unknown builtins are rejected before the daemon
// starts.
func KnownBuiltin(kind BuiltinKind) bool {
	return kind == BuiltinTranscodeH265
}

// Task is one unit of work in a workflow. Exactly one arm of the union is
// populated, selected by Kind. Ordering within a workflow is significant.
type Task struct {
	Kind TaskKind

	// Custom task fields.
	ID          string
	Description string
	Probe       string // empty means the task always runs
	Command     string

	// Builtin task selector.
	Builtin BuiltinKind
}

// NewCustomTask builds a user-defined script task.
func NewCustomTask(id, description, probe, command string) Task {
	return Task{
		Kind:        TaskCustom,
		ID:          id,
		Description: description,
		Probe:       probe,
		Command:     command,
	}
}

// NewBuiltinTask builds a builtin task for a known kind.
func NewBuiltinTask(kind BuiltinKind) Task {
	return Task{Kind: TaskBuiltin, Builtin: kind}
}

// Label returns a human-readable identifier for logs and reports.
func (t Task) Label() string {
	switch t.Kind {
	case TaskBuiltin:
		return fmt.Sprintf("builtin:%s", t.Builtin)
	default:
		if t.Description != "" {
			return t.Description
		}
		return t.ID
	}
}
