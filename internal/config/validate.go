package config

import (
	"fmt"
	"strings"

	"omzet/internal/workflow"
)

// Validate checks structural consistency: every library references a defined
// workflow, every workflow has a usable scratchpad and extension list, and
// every task definition resolves to a known variant.
func (c *Config) Validate() error {
	for name, lib := range c.Libraries {
		if strings.TrimSpace(lib.Directory) == "" {
			return fmt.Errorf("library %q: directory is required", name)
		}
		if lib.Workflow == "" {
			return fmt.Errorf("library %q: workflow is required", name)
		}
		if _, ok := c.Workflows[lib.Workflow]; !ok {
			return fmt.Errorf("library %q references workflow %q which does not exist", name, lib.Workflow)
		}
	}

	for name, def := range c.Workflows {
		if strings.TrimSpace(def.ScratchpadDir) == "" {
			return fmt.Errorf("workflow %q: scratchpad_directory is required", name)
		}
		if len(def.IncludedExtensions) == 0 {
			return fmt.Errorf("workflow %q: included_extensions must not be empty", name)
		}
		for i, task := range def.Tasks {
			if err := validateTask(task); err != nil {
				return fmt.Errorf("workflow %q task %d: %w", name, i+1, err)
			}
		}
	}

	return nil
}

func validateTask(task TaskDef) error {
	if task.Builtin != "" {
		if task.ID != "" || task.Command != "" || task.Probe != "" {
			return fmt.Errorf("builtin task %q must not define id, probe, or command", task.Builtin)
		}
		if !workflow.KnownBuiltin(workflow.BuiltinKind(task.Builtin)) {
			return fmt.Errorf("unknown builtin task %q", task.Builtin)
		}
		return nil
	}
	if task.ID == "" {
		return fmt.Errorf("custom task requires an id")
	}
	if strings.TrimSpace(task.Command) == "" {
		return fmt.Errorf("custom task %q requires a command", task.ID)
	}
	return nil
}

// ResolveWorkflow builds the runtime workflow value for a configured name.
// Task resolution happens here so the runner only ever sees validated tasks.
func (c *Config) ResolveWorkflow(name string) (workflow.Workflow, error) {
	def, ok := c.Workflows[name]
	if !ok {
		return workflow.Workflow{}, fmt.Errorf("workflow %q does not exist", name)
	}

	tasks := make([]workflow.Task, 0, len(def.Tasks))
	for _, task := range def.Tasks {
		if task.Builtin != "" {
			tasks = append(tasks, workflow.NewBuiltinTask(workflow.BuiltinKind(task.Builtin)))
			continue
		}
		tasks = append(tasks, workflow.NewCustomTask(task.ID, task.Description, task.Probe, task.Command))
	}

	return workflow.Workflow{
		Name:               name,
		ScratchpadDir:      def.ScratchpadDir,
		IncludedExtensions: append([]string(nil), def.IncludedExtensions...),
		Tasks:              tasks,
	}, nil
}
