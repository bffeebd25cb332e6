package orchestrator

import (
	"omzet/internal/runner"
	"omzet/internal/workflow"
)

// runningJob is the join handle for the in-flight worker goroutine. The
// worker closes done exactly once after populating report and err.
type runningJob struct {
	req    workflow.JobRequest
	done   chan struct{}
	report *runner.WorkflowReport
	err    error
}

// finished reports whether the worker goroutine has completed.
func (j *runningJob) finished() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// wait blocks until the worker goroutine completes.
func (j *runningJob) wait() {
	<-j.done
}
