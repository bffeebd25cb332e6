package runner

import (
	"context"
	"log/slog"
	"time"

	"omzet/internal/logging"
	"omzet/internal/workflow"
)

// probeCustom runs the task's probe script. Tasks without a probe always
// run. A probe exiting nonzero skips the task; a probe that cannot be
// spawned aborts the whole run.
func (r *Runner) probeCustom(ctx context.Context, task workflow.Task, scratchpad, inputPath string) (ProbeDecision, error) {
	if task.Probe == "" {
		return ProbeRun, nil
	}

	env := map[string]string{
		envInput: inputPath,
		envTask:  task.Label(),
	}
	result := runScript(ctx, r.shell, task.Probe, scratchpad, env)
	if result.spawnErr != nil {
		return ProbeAbort, result.spawnErr
	}
	if result.succeeded() {
		return ProbeRun, nil
	}
	return ProbeSkip, nil
}

// runCustom executes the task command with the staged input and the derived
// output path exposed through the environment.
func (r *Runner) runCustom(ctx context.Context, task workflow.Task, scratchpad, inputPath, outputPath string, logger *slog.Logger) TaskReport {
	env := map[string]string{
		envInput:  inputPath,
		envOutput: outputPath,
	}

	started := time.Now()
	result := runScript(ctx, r.shell, task.Command, scratchpad, env)
	report := TaskReport{
		TaskLabel: task.Label(),
		ExitCode:  result.exitCode,
		Stdout:    result.stdout,
		Stderr:    result.stderr,
		Err:       result.spawnErr,
		Duration:  time.Since(started),
	}
	if result.spawnErr != nil {
		logger.Error("task process failed to start",
			logging.String(logging.FieldTask, task.Label()),
			logging.Error(result.spawnErr))
	} else if report.Failed() {
		logger.Warn("task exited nonzero",
			logging.String(logging.FieldTask, task.Label()),
			logging.Int("exit_code", *result.exitCode),
			logging.String("stderr", result.stderr))
	}
	return report
}
