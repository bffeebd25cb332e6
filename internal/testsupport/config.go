// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"omzet/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Orchestrator.PollInterval = 1
	cfgVal.Monitor.ScanInterval = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLibrary registers a library directory (created under the test temp
// root) bound to the named workflow.
func WithLibrary(name, workflowName string) ConfigOption {
	return func(b *configBuilder) {
		dir := filepath.Join(b.baseDir, "libraries", name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			b.t.Fatalf("create library dir: %v", err)
		}
		if b.cfg.Libraries == nil {
			b.cfg.Libraries = map[string]config.Library{}
		}
		b.cfg.Libraries[name] = config.Library{Directory: dir, Workflow: workflowName}
	}
}

// WithWorkflow registers a workflow with a scratchpad under the test temp
// root.
func WithWorkflow(name string, extensions []string, tasks ...config.TaskDef) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Workflows == nil {
			b.cfg.Workflows = map[string]config.WorkflowDef{}
		}
		b.cfg.Workflows[name] = config.WorkflowDef{
			ScratchpadDir:      filepath.Join(b.baseDir, "scratch", name),
			IncludedExtensions: extensions,
			Tasks:              tasks,
		}
	}
}
