package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"omzet/internal/logging"
	"omzet/internal/media/ffprobe"
	"omzet/internal/workflow"
)

// probeBuiltin decides whether a builtin task applies. The transcode task
// inspects the staged file's video codec and skips files that already carry
// HEVC. A failed inspection aborts the run since running ffmpeg blind could
// destroy a file the probe never understood.
func (r *Runner) probeBuiltin(ctx context.Context, task workflow.Task, inputPath string) (ProbeDecision, error) {
	switch task.Builtin {
	case workflow.BuiltinTranscodeH265:
		result, err := ffprobe.Inspect(ctx, r.ffprobeBin, inputPath)
		if err != nil {
			return ProbeAbort, err
		}
		codec, ok := result.VideoCodec()
		if !ok {
			return ProbeAbort, fmt.Errorf("no video stream in %s", inputPath)
		}
		if codec == "hevc" {
			return ProbeSkip, nil
		}
		return ProbeRun, nil
	default:
		return ProbeAbort, fmt.Errorf("unknown builtin task %q", task.Builtin)
	}
}

// runBuiltin executes a builtin task against the staged input.
func (r *Runner) runBuiltin(ctx context.Context, task workflow.Task, scratchpad, inputPath, outputPath string, logger *slog.Logger) TaskReport {
	switch task.Builtin {
	case workflow.BuiltinTranscodeH265:
		return r.runTranscodeH265(ctx, task, scratchpad, inputPath, outputPath, logger)
	default:
		return TaskReport{
			TaskLabel: task.Label(),
			Err:       fmt.Errorf("unknown builtin task %q", task.Builtin),
		}
	}
}

// runTranscodeH265 re-encodes the video stream to H.265 while copying audio
// and subtitle streams unchanged.
func (r *Runner) runTranscodeH265(ctx context.Context, task workflow.Task, scratchpad, inputPath, outputPath string, logger *slog.Logger) TaskReport {
	args := []string{
		"-y", "-nostdin", "-hide_banner",
		"-i", inputPath,
		"-map", "0",
		"-c:v", "libx265",
		"-c:a", "copy",
		"-c:s", "copy",
		outputPath,
	}

	started := time.Now()
	result := runBinary(ctx, r.ffmpegBin, args, scratchpad)
	report := TaskReport{
		TaskLabel: task.Label(),
		ExitCode:  result.exitCode,
		Stdout:    result.stdout,
		Stderr:    result.stderr,
		Err:       result.spawnErr,
		Duration:  time.Since(started),
	}
	if result.spawnErr != nil {
		logger.Error("ffmpeg failed to start",
			logging.String(logging.FieldTask, task.Label()),
			logging.Error(result.spawnErr))
	} else if report.Failed() {
		logger.Warn("ffmpeg exited nonzero",
			logging.String(logging.FieldTask, task.Label()),
			logging.Int("exit_code", *result.exitCode),
			logging.String("stderr", result.stderr))
	}
	return report
}
