package runner

import "time"

// ProbeDecision is the outcome of probing a single task.
type ProbeDecision int

const (
	// ProbeRun schedules the task for execution.
	ProbeRun ProbeDecision = iota
	// ProbeSkip drops the task from the run.
	ProbeSkip
	// ProbeAbort fails the entire run before any task executes.
	ProbeAbort
)

// String returns the decision label used in logs.
func (d ProbeDecision) String() string {
	switch d {
	case ProbeRun:
		return "run"
	case ProbeSkip:
		return "skip"
	case ProbeAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// TaskReport captures the observable outcome of one executed task.
type TaskReport struct {
	TaskLabel string
	ExitCode  *int
	Stdout    string
	Stderr    string
	Err       error
	Produced  bool
	Duration  time.Duration
}

// Failed reports whether the task process exited nonzero or could not run.
func (r TaskReport) Failed() bool {
	if r.Err != nil {
		return true
	}
	return r.ExitCode != nil && *r.ExitCode != 0
}

// WorkflowReport summarizes a completed workflow run.
type WorkflowReport struct {
	Workflow     string
	SourcePath   string
	StagedPath   string
	Tasks        []TaskReport
	SkippedTasks []string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns the wall-clock time the run took.
func (r WorkflowReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
