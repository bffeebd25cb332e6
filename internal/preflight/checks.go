package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"

	"omzet/internal/config"
	"omzet/internal/deps"
	"omzet/internal/workflow"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable check for the given config: library
// directories, workflow scratchpads, and the external binaries workflows
// rely on.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	for _, name := range sortedKeys(cfg.Libraries) {
		library := cfg.Libraries[name]
		results = append(results, CheckDirectoryAccess(
			fmt.Sprintf("Library %q", name), library.Directory))
	}
	for _, name := range sortedKeys(cfg.Workflows) {
		wf := cfg.Workflows[name]
		results = append(results, CheckScratchpadAccess(
			fmt.Sprintf("Scratchpad for %q", name), wf.ScratchpadDir))
	}
	for _, status := range CheckSystemDeps(ctx, cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Command
		} else if status.Optional && !configUsesBuiltins(cfg) {
			// Workflows without builtin tasks never shell out to
			// ffmpeg or ffprobe.
			result.Passed = true
			result.Detail = status.Detail + " (unused by configured workflows)"
		}
		results = append(results, result)
	}

	return results
}

// AllPassed reports whether every check succeeded.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckScratchpadAccess is CheckDirectoryAccess that tolerates a missing
// directory, since the runner creates scratchpads on demand. The parent
// must exist and be writable instead.
func CheckScratchpadAccess(name, path string) Result {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		parentResult := CheckDirectoryAccess(name, filepath.Dir(path))
		if !parentResult.Passed {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: parent not writable: %s)", path, parentResult.Detail)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	return CheckDirectoryAccess(name, path)
}

// CheckSystemDeps evaluates the external binaries for the given config.
// Both the daemon and the CLI deps command use this to avoid duplicating
// the requirements list.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	_ = ctx
	return deps.CheckBinaries(deps.Defaults(cfg.ShellBinary(), cfg.FFmpegBinary(), cfg.FFprobeBinary()))
}

func configUsesBuiltins(cfg *config.Config) bool {
	for _, wf := range cfg.Workflows {
		for _, task := range wf.Tasks {
			if workflow.KnownBuiltin(workflow.BuiltinKind(task.Builtin)) {
				return true
			}
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

