package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"omzet/internal/logging"
	"omzet/internal/workflow"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mkv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func newWorkflow(t *testing.T, tasks ...workflow.Task) workflow.Workflow {
	t.Helper()
	return workflow.Workflow{
		Name:               "test",
		ScratchpadDir:      t.TempDir(),
		IncludedExtensions: []string{"mkv"},
		Tasks:              tasks,
	}
}

func TestRunWorkflowTransformsSource(t *testing.T) {
	source := writeSource(t, "original\n")
	wf := newWorkflow(t, workflow.NewCustomTask("append", "", "",
		`cat "$OMZET_INPUT" > "$OMZET_OUTPUT" && echo transformed >> "$OMZET_OUTPUT"`))

	r := New(logging.NewNop())
	report, err := r.RunWorkflow(context.Background(), wf, source)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := readFile(t, source); got != "original\ntransformed\n" {
		t.Fatalf("unexpected committed content: %q", got)
	}
	if len(report.Tasks) != 1 {
		t.Fatalf("expected 1 executed task, got %d", len(report.Tasks))
	}
	if !report.Tasks[0].Produced {
		t.Fatal("task should have produced output")
	}
}

func TestRunWorkflowChainsTaskOutputs(t *testing.T) {
	source := writeSource(t, "base\n")
	wf := newWorkflow(t,
		workflow.NewCustomTask("one", "", "",
			`cat "$OMZET_INPUT" > "$OMZET_OUTPUT" && echo one >> "$OMZET_OUTPUT"`),
		workflow.NewCustomTask("two", "", "",
			`cat "$OMZET_INPUT" > "$OMZET_OUTPUT" && echo two >> "$OMZET_OUTPUT"`),
	)

	r := New(logging.NewNop())
	if _, err := r.RunWorkflow(context.Background(), wf, source); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := readFile(t, source); got != "base\none\ntwo\n" {
		t.Fatalf("second task did not see first task's output: %q", got)
	}
}

func TestRunWorkflowSourceUntouchedDuringTasks(t *testing.T) {
	source := writeSource(t, "untouched\n")
	// The task inspects the library copy while the run is in flight.
	script := `if [ "$(cat ` + source + `)" != "untouched" ]; then exit 9; fi; cat "$OMZET_INPUT" > "$OMZET_OUTPUT"; echo done >> "$OMZET_OUTPUT"`
	wf := newWorkflow(t, workflow.NewCustomTask("check", "", "", script))

	r := New(logging.NewNop())
	report, err := r.RunWorkflow(context.Background(), wf, source)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if report.Tasks[0].Failed() {
		t.Fatalf("source was modified before commit: %+v", report.Tasks[0])
	}
	if got := readFile(t, source); got != "untouched\ndone\n" {
		t.Fatalf("unexpected committed content: %q", got)
	}
}

func TestRunWorkflowProbeSkips(t *testing.T) {
	source := writeSource(t, "keep\n")
	wf := newWorkflow(t, workflow.NewCustomTask("skipped", "", "exit 1",
		`echo never > "$OMZET_OUTPUT"`))

	r := New(logging.NewNop())
	report, err := r.RunWorkflow(context.Background(), wf, source)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(report.Tasks) != 0 {
		t.Fatalf("skipped task must not execute: %+v", report.Tasks)
	}
	if len(report.SkippedTasks) != 1 {
		t.Fatalf("expected 1 skipped task, got %d", len(report.SkippedTasks))
	}
	if got := readFile(t, source); got != "keep\n" {
		t.Fatalf("skipped run must leave content unchanged: %q", got)
	}
}

func TestRunWorkflowProbeAbortShortCircuits(t *testing.T) {
	source := writeSource(t, "safe\n")
	marker := filepath.Join(t.TempDir(), "ran")
	wf := newWorkflow(t,
		workflow.NewCustomTask("first", "", "", `touch `+marker),
		workflow.NewCustomTask("second", "", "true", "true"),
	)

	// A shell that cannot be spawned turns every probe into an abort.
	r := New(logging.NewNop(), WithShell("/nonexistent/omzet-shell"))
	_, err := r.RunWorkflow(context.Background(), wf, source)
	if !errors.Is(err, ErrProbeAborted) {
		t.Fatalf("expected ErrProbeAborted, got %v", err)
	}
	if _, statErr := os.Stat(marker); !os.IsNotExist(statErr) {
		t.Fatal("no task may run when a probe aborts")
	}
	if got := readFile(t, source); got != "safe\n" {
		t.Fatalf("aborted run must leave source unchanged: %q", got)
	}
}

func TestRunWorkflowMissingOutputTolerated(t *testing.T) {
	source := writeSource(t, "passthrough\n")
	wf := newWorkflow(t,
		workflow.NewCustomTask("silent", "", "", "true"),
		workflow.NewCustomTask("append", "", "",
			`cat "$OMZET_INPUT" > "$OMZET_OUTPUT" && echo after >> "$OMZET_OUTPUT"`),
	)

	r := New(logging.NewNop())
	report, err := r.RunWorkflow(context.Background(), wf, source)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if report.Tasks[0].Produced {
		t.Fatal("silent task should report no output")
	}
	if got := readFile(t, source); got != "passthrough\nafter\n" {
		t.Fatalf("later task must receive the passed-through input: %q", got)
	}
}

func TestRunWorkflowNonzeroExitRecordedNotFatal(t *testing.T) {
	source := writeSource(t, "resilient\n")
	wf := newWorkflow(t, workflow.NewCustomTask("failing", "", "", "exit 7"))

	r := New(logging.NewNop())
	report, err := r.RunWorkflow(context.Background(), wf, source)
	if err != nil {
		t.Fatalf("nonzero task exit must not fail the run: %v", err)
	}
	task := report.Tasks[0]
	if !task.Failed() {
		t.Fatal("task should report failure")
	}
	if task.ExitCode == nil || *task.ExitCode != 7 {
		t.Fatalf("expected exit code 7, got %+v", task.ExitCode)
	}
	if got := readFile(t, source); got != "resilient\n" {
		t.Fatalf("failed task must pass input through: %q", got)
	}
}

func TestRunWorkflowEmptyWorkflowCommits(t *testing.T) {
	source := writeSource(t, "noop\n")
	wf := newWorkflow(t)

	r := New(logging.NewNop())
	report, err := r.RunWorkflow(context.Background(), wf, source)
	if err != nil {
		t.Fatalf("empty workflow must still commit: %v", err)
	}
	if len(report.Tasks) != 0 || len(report.SkippedTasks) != 0 {
		t.Fatalf("unexpected task activity: %+v", report)
	}
	if got := readFile(t, source); got != "noop\n" {
		t.Fatalf("content changed during no-op run: %q", got)
	}
}

func TestRunWorkflowScratchpadLeftCleanAfterCommit(t *testing.T) {
	source := writeSource(t, "tidy\n")
	wf := newWorkflow(t, workflow.NewCustomTask("copy", "", "",
		`cat "$OMZET_INPUT" > "$OMZET_OUTPUT"`))

	r := New(logging.NewNop())
	if _, err := r.RunWorkflow(context.Background(), wf, source); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	entries, err := os.ReadDir(wf.ScratchpadDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("scratchpad should be empty after commit, found %d entries", len(entries))
	}
}

func TestRunWorkflowProbeEnvironment(t *testing.T) {
	source := writeSource(t, "probe-env\n")
	record := filepath.Join(t.TempDir(), "probe-env.txt")
	probe := `printf '%s|%s|%s' "$OMZET_TASK" "$OMZET_INPUT" "$OMZET_OUTPUT" > ` + record
	wf := newWorkflow(t, workflow.NewCustomTask("env-check", "", probe, "true"))

	r := New(logging.NewNop())
	if _, err := r.RunWorkflow(context.Background(), wf, source); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	fields := strings.SplitN(readFile(t, record), "|", 3)
	if fields[0] != "env-check" {
		t.Fatalf("probe missing OMZET_TASK: %q", fields[0])
	}
	if !strings.HasPrefix(filepath.Base(fields[1]), "clip-") {
		t.Fatalf("probe OMZET_INPUT should point at staged copy: %q", fields[1])
	}
	if fields[2] != "" {
		t.Fatalf("probe must not receive OMZET_OUTPUT: %q", fields[2])
	}
}

func TestRunWorkflowTaskEnvironment(t *testing.T) {
	source := writeSource(t, "task-env\n")
	record := filepath.Join(t.TempDir(), "task-env.txt")
	command := `printf '%s|%s|%s' "$OMZET_TASK" "$OMZET_INPUT" "$OMZET_OUTPUT" > ` + record
	wf := newWorkflow(t, workflow.NewCustomTask("env-check", "", "", command))

	r := New(logging.NewNop())
	if _, err := r.RunWorkflow(context.Background(), wf, source); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	fields := strings.SplitN(readFile(t, record), "|", 3)
	if fields[0] != "" {
		t.Fatalf("task must not receive OMZET_TASK: %q", fields[0])
	}
	if fields[1] == "" || fields[2] == "" {
		t.Fatalf("task must receive input and output paths: %q", fields)
	}
	if !strings.Contains(filepath.Base(fields[2]), ".out.") {
		t.Fatalf("output path should carry the .out marker: %q", fields[2])
	}
}

func TestRunWorkflowCommitFailureStrandsArtifact(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not constrain root")
	}
	source := writeSource(t, "original\n")
	sourceDir := filepath.Dir(source)
	t.Cleanup(func() { _ = os.Chmod(sourceDir, 0o755) })

	// The task revokes write access to the library directory, so both the
	// commit rename and the copy fallback must fail.
	script := `cat "$OMZET_INPUT" > "$OMZET_OUTPUT" && echo transformed >> "$OMZET_OUTPUT" && chmod 0555 ` + sourceDir
	wf := newWorkflow(t, workflow.NewCustomTask("lockout", "", "", script))

	r := New(logging.NewNop())
	_, err := r.RunWorkflow(context.Background(), wf, source)
	if !errors.Is(err, ErrCompletionFailed) {
		t.Fatalf("expected ErrCompletionFailed, got %v", err)
	}

	if err := os.Chmod(sourceDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, source); got != "original\n" {
		t.Fatalf("failed commit must leave source bytes unchanged: %q", got)
	}

	entries, err := os.ReadDir(wf.ScratchpadDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected the staged artifact to be stranded, found %d entries", len(entries))
	}
	staged := readFile(t, filepath.Join(wf.ScratchpadDir, entries[0].Name()))
	if staged != "original\ntransformed\n" {
		t.Fatalf("stranded artifact lost the transformation: %q", staged)
	}
}

func TestRunWorkflowPromoteFailureTolerated(t *testing.T) {
	source := writeSource(t, "original\n")
	marker := filepath.Join(t.TempDir(), "second-ran")
	// The first task destroys its staged input, so promoting the output
	// over it cannot succeed.
	wf := newWorkflow(t,
		workflow.NewCustomTask("sabotage", "", "",
			`rm "$OMZET_INPUT" && mkdir "$OMZET_INPUT" && echo new > "$OMZET_OUTPUT"`),
		workflow.NewCustomTask("witness", "", "", `touch `+marker),
	)

	r := New(logging.NewNop())
	_, err := r.RunWorkflow(context.Background(), wf, source)
	if !errors.Is(err, ErrCompletionFailed) {
		t.Fatalf("promote failure must surface as a completion failure, got %v", err)
	}
	if _, statErr := os.Stat(marker); statErr != nil {
		t.Fatal("run must continue past a failed promote")
	}
	if got := readFile(t, source); got != "original\n" {
		t.Fatalf("source must be unchanged: %q", got)
	}
	outputs, globErr := filepath.Glob(filepath.Join(wf.ScratchpadDir, "*.out.*"))
	if globErr != nil {
		t.Fatal(globErr)
	}
	if len(outputs) != 1 {
		t.Fatalf("unpromoted output must stay in the scratchpad: %v", outputs)
	}
}

func TestRunWorkflowMissingSource(t *testing.T) {
	wf := newWorkflow(t)
	r := New(logging.NewNop())
	_, err := r.RunWorkflow(context.Background(), wf, filepath.Join(t.TempDir(), "absent.mkv"))
	if !errors.Is(err, ErrPreparationFailed) {
		t.Fatalf("expected ErrPreparationFailed, got %v", err)
	}
}

func TestRunWorkflowCommandRunsInScratchpad(t *testing.T) {
	source := writeSource(t, "cwd\n")
	record := filepath.Join(t.TempDir(), "cwd.txt")
	wf := newWorkflow(t, workflow.NewCustomTask("pwd", "", "", `pwd > `+record))

	r := New(logging.NewNop())
	if _, err := r.RunWorkflow(context.Background(), wf, source); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	got := strings.TrimSpace(readFile(t, record))
	want, err := filepath.EvalSymlinks(wf.ScratchpadDir)
	if err != nil {
		t.Fatal(err)
	}
	gotResolved, err := filepath.EvalSymlinks(got)
	if err != nil {
		t.Fatal(err)
	}
	if gotResolved != want {
		t.Fatalf("task ran in %q, want scratchpad %q", gotResolved, want)
	}
}
