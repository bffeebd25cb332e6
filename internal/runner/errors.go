package runner

import "errors"

// Sentinel errors classifying where a workflow run failed. Callers match
// with errors.Is to distinguish staging problems from probe aborts and
// commit failures.
var (
	// ErrPreparationFailed indicates the scratchpad or staged copy could
	// not be created. The source file is untouched.
	ErrPreparationFailed = errors.New("workflow preparation failed")

	// ErrProbeAborted indicates a probe process could not be spawned. No
	// task of the run executed.
	ErrProbeAborted = errors.New("workflow probe aborted")

	// ErrCompletionFailed indicates the staged artifact could not be
	// moved back over the source path.
	ErrCompletionFailed = errors.New("workflow completion failed")
)
