package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
)

// scriptResult holds everything a probe or task invocation produced.
type scriptResult struct {
	exitCode *int
	stdout   string
	stderr   string
	spawnErr error
}

// succeeded reports whether the process ran and exited zero.
func (r scriptResult) succeeded() bool {
	return r.spawnErr == nil && r.exitCode != nil && *r.exitCode == 0
}

// runScript executes a shell snippet inside the scratchpad with the omzet
// environment variables appended to the ambient environment. A nonzero exit
// is not an error here; it is reported through exitCode so probes can treat
// it as a skip and tasks can record it. Only a failure to start the process
// at all populates spawnErr.
func runScript(ctx context.Context, shell, script, dir string, env map[string]string) scriptResult {
	cmd := exec.CommandContext(ctx, shell, "-c", script)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	for key, value := range env {
		cmd.Env = append(cmd.Env, key+"="+value)
	}
	return collect(cmd)
}

// runBinary executes a binary directly with explicit arguments. Used by
// builtin tasks so their invocations never pass through a shell.
func runBinary(ctx context.Context, binary string, args []string, dir string) scriptResult {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir
	return collect(cmd)
}

// collect runs the prepared command and folds the outcome into a
// scriptResult.
func collect(cmd *exec.Cmd) scriptResult {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := scriptResult{
		stdout: strings.TrimRight(stdout.String(), "\n"),
		stderr: strings.TrimRight(stderr.String(), "\n"),
	}
	if err == nil {
		zero := 0
		result.exitCode = &zero
		return result
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		result.exitCode = &code
		return result
	}

	result.spawnErr = err
	return result
}
