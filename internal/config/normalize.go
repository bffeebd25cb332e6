package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return err
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	if c.Orchestrator.PollInterval <= 0 {
		c.Orchestrator.PollInterval = defaultOrchestratorPollInterval
	}
	if c.Monitor.ScanInterval <= 0 {
		c.Monitor.ScanInterval = defaultMonitorScanInterval
	}
	if c.Monitor.RequestBuffer <= 0 {
		c.Monitor.RequestBuffer = defaultMonitorRequestBuffer
	}

	for name, lib := range c.Libraries {
		lib.Workflow = strings.TrimSpace(lib.Workflow)
		if lib.Directory, err = expandPath(strings.TrimSpace(lib.Directory)); err != nil {
			return fmt.Errorf("library %q: %w", name, err)
		}
		c.Libraries[name] = lib
	}

	for name, def := range c.Workflows {
		if def.ScratchpadDir, err = expandPath(strings.TrimSpace(def.ScratchpadDir)); err != nil {
			return fmt.Errorf("workflow %q: %w", name, err)
		}
		exts := make([]string, 0, len(def.IncludedExtensions))
		for _, ext := range def.IncludedExtensions {
			cleaned := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
			if cleaned != "" {
				exts = append(exts, cleaned)
			}
		}
		def.IncludedExtensions = exts
		for i, task := range def.Tasks {
			task.Builtin = strings.TrimSpace(task.Builtin)
			task.ID = strings.TrimSpace(task.ID)
			def.Tasks[i] = task
		}
		c.Workflows[name] = def
	}

	return nil
}
