package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"omzet/internal/fileutil"
	"omzet/internal/logging"
	"omzet/internal/workflow"
)

// Environment variables exposed to probes and task commands.
const (
	envInput  = "OMZET_INPUT"
	envOutput = "OMZET_OUTPUT"
	envTask   = "OMZET_TASK"
)

// Runner executes workflows. It is safe to share a single Runner across
// sequential runs; the orchestrator never invokes it concurrently.
type Runner struct {
	shell      string
	ffprobeBin string
	ffmpegBin  string
	logger     *slog.Logger
}

// Option customizes a Runner.
type Option func(*Runner)

// WithShell overrides the shell used for custom probes and commands.
func WithShell(shell string) Option {
	return func(r *Runner) {
		if shell != "" {
			r.shell = shell
		}
	}
}

// WithFFprobe overrides the ffprobe binary used by builtin probes.
func WithFFprobe(binary string) Option {
	return func(r *Runner) {
		if binary != "" {
			r.ffprobeBin = binary
		}
	}
}

// WithFFmpeg overrides the ffmpeg binary used by builtin tasks.
func WithFFmpeg(binary string) Option {
	return func(r *Runner) {
		if binary != "" {
			r.ffmpegBin = binary
		}
	}
}

// New constructs a Runner with the default binaries.
func New(logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		shell:      "sh",
		ffprobeBin: "ffprobe",
		ffmpegBin:  "ffmpeg",
		logger:     logging.NewComponentLogger(logger, "runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// plannedTask pairs a task with the probe decision made for it.
type plannedTask struct {
	task     workflow.Task
	decision ProbeDecision
}

// RunWorkflow executes wf against sourcePath. The protocol is strict:
// stage the source into the scratchpad, probe every task before running
// any, execute the surviving tasks in order, then atomically move the final
// artifact back over the source. On any error before completion the source
// file is left exactly as it was.
func (r *Runner) RunWorkflow(ctx context.Context, wf workflow.Workflow, sourcePath string) (*WorkflowReport, error) {
	logger := r.logger.With(
		logging.String(logging.FieldWorkflow, wf.Name),
		logging.String(logging.FieldSourceFile, sourcePath),
	)

	report := &WorkflowReport{
		Workflow:   wf.Name,
		SourcePath: sourcePath,
		StartedAt:  time.Now(),
	}

	stagedPath, err := r.prepare(wf, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPreparationFailed, err)
	}
	report.StagedPath = stagedPath
	logger.Info("staged source file", logging.String("staged_path", stagedPath))

	// Probe everything up front. An abort must fire before any task has a
	// chance to run.
	planned, err := r.probeTasks(ctx, wf, stagedPath, logger)
	if err != nil {
		r.discardStaged(stagedPath, logger)
		return nil, fmt.Errorf("%w: %v", ErrProbeAborted, err)
	}

	inputPath := stagedPath
	outputPath := filepath.Join(wf.ScratchpadDir, outputFileName(filepath.Base(stagedPath)))
	for _, plan := range planned {
		if plan.decision == ProbeSkip {
			report.SkippedTasks = append(report.SkippedTasks, plan.task.Label())
			logger.Info("task skipped by probe", logging.String(logging.FieldTask, plan.task.Label()))
			continue
		}

		taskReport := r.runTask(ctx, plan.task, wf.ScratchpadDir, inputPath, outputPath, logger)
		taskReport.Produced = fileExists(outputPath)
		report.Tasks = append(report.Tasks, taskReport)

		if taskReport.Produced {
			if err := os.Rename(outputPath, inputPath); err != nil {
				// Same handling as a missing output: the input
				// passes through unchanged to the next task.
				logger.Warn("failed to promote task output, passing input through",
					logging.String(logging.FieldTask, plan.task.Label()),
					logging.Error(err))
			}
		} else {
			logger.Warn("task produced no output, passing input through",
				logging.String(logging.FieldTask, plan.task.Label()))
		}
	}

	if err := r.complete(inputPath, sourcePath); err != nil {
		// The transformed artifact stays in the scratchpad for manual
		// recovery; the source file is untouched.
		logger.Error("commit failed, staged artifact left in scratchpad",
			logging.String("staged_path", inputPath),
			logging.Error(err))
		return report, fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	report.FinishedAt = time.Now()
	logger.Info("workflow committed",
		logging.Int("tasks_run", len(report.Tasks)),
		logging.Int("tasks_skipped", len(report.SkippedTasks)),
		logging.Duration("duration", report.Duration()))
	return report, nil
}

// prepare creates the scratchpad and copies the source into it under a
// collision-free name.
func (r *Runner) prepare(wf workflow.Workflow, sourcePath string) (string, error) {
	if wf.ScratchpadDir == "" {
		return "", errors.New("workflow has no scratchpad directory")
	}
	if err := os.MkdirAll(wf.ScratchpadDir, 0o755); err != nil {
		return "", fmt.Errorf("create scratchpad: %w", err)
	}
	stagedPath := filepath.Join(wf.ScratchpadDir, stagingFileName(sourcePath))
	if err := fileutil.CopyFile(sourcePath, stagedPath); err != nil {
		return "", fmt.Errorf("stage source: %w", err)
	}
	return stagedPath, nil
}

// probeTasks evaluates every task's probe against the staged input. The
// first abort fails the whole plan.
func (r *Runner) probeTasks(ctx context.Context, wf workflow.Workflow, stagedPath string, logger *slog.Logger) ([]plannedTask, error) {
	planned := make([]plannedTask, 0, len(wf.Tasks))
	for _, task := range wf.Tasks {
		var decision ProbeDecision
		var err error
		switch task.Kind {
		case workflow.TaskBuiltin:
			decision, err = r.probeBuiltin(ctx, task, stagedPath)
		default:
			decision, err = r.probeCustom(ctx, task, wf.ScratchpadDir, stagedPath)
		}
		if decision == ProbeAbort {
			return nil, fmt.Errorf("probe for task %s: %w", task.Label(), err)
		}
		logger.Debug("task probed",
			logging.String(logging.FieldTask, task.Label()),
			logging.String("decision", decision.String()))
		planned = append(planned, plannedTask{task: task, decision: decision})
	}
	return planned, nil
}

// runTask dispatches on the task kind.
func (r *Runner) runTask(ctx context.Context, task workflow.Task, scratchpad, inputPath, outputPath string, logger *slog.Logger) TaskReport {
	if task.Kind == workflow.TaskBuiltin {
		return r.runBuiltin(ctx, task, scratchpad, inputPath, outputPath, logger)
	}
	return r.runCustom(ctx, task, scratchpad, inputPath, outputPath, logger)
}

// complete moves the staged artifact back over the source path. Rename is
// atomic when scratchpad and library share a filesystem; when they do not,
// fall back to a verified copy followed by removal of the staged file.
func (r *Runner) complete(stagedPath, sourcePath string) error {
	if err := os.Rename(stagedPath, sourcePath); err == nil {
		return nil
	}
	if err := fileutil.CopyFileVerified(stagedPath, sourcePath); err != nil {
		return fmt.Errorf("copy staged artifact: %w", err)
	}
	return os.Remove(stagedPath)
}

// discardStaged removes scratchpad debris after a failed run. Failure to
// clean up is logged and otherwise ignored; the next run uses fresh names.
func (r *Runner) discardStaged(path string, logger *slog.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove staged file", logging.Error(err))
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
