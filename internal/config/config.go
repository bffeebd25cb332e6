package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for daemon state and logs.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Orchestrator contains configuration for the job orchestrator control loop.
type Orchestrator struct {
	// PollInterval is the control-loop tick cadence in seconds.
	PollInterval int `toml:"poll_interval"`
	// DedupInFlight controls whether a request equal to the currently
	// running job is dropped. When false, such a request queues a
	// follow-up pass.
	DedupInFlight bool `toml:"dedup_in_flight"`
}

// Monitor contains configuration for library scanning.
type Monitor struct {
	// ScanInterval is the per-library scan cadence in seconds.
	ScanInterval int `toml:"scan_interval"`
	// RequestBuffer is the capacity of the channel between monitors and
	// the orchestrator. Sends beyond it are dropped and retried on the
	// next scan.
	RequestBuffer int `toml:"request_buffer"`
}

// Library registers a watched directory and the workflow applied to its files.
type Library struct {
	Directory string `toml:"directory"`
	Workflow  string `toml:"workflow"`
}

// TaskDef is the on-disk shape of one workflow task. Either Builtin names a
// builtin task, or ID/Command (plus optional Probe) define a custom one.
type TaskDef struct {
	Builtin     string `toml:"builtin"`
	ID          string `toml:"id"`
	Description string `toml:"description"`
	Probe       string `toml:"probe"`
	Command     string `toml:"command"`
}

// WorkflowDef is the on-disk shape of a workflow.
type WorkflowDef struct {
	ScratchpadDir      string    `toml:"scratchpad_directory"`
	IncludedExtensions []string  `toml:"included_extensions"`
	Tasks              []TaskDef `toml:"tasks"`
}

// Config encapsulates all configuration values for omzet.
type Config struct {
	Paths        Paths                  `toml:"paths"`
	Logging      Logging                `toml:"logging"`
	Orchestrator Orchestrator           `toml:"orchestrator"`
	Monitor      Monitor                `toml:"monitor"`
	Libraries    map[string]Library     `toml:"libraries"`
	Workflows    map[string]WorkflowDef `toml:"workflows"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/omzet/omzet.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path, the third whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("omzet.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// Workflow scratchpads are created lazily by the runner, so only log and
// state directories are handled here.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFprobeBinary returns the ffprobe executable name used for codec probing.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// FFmpegBinary returns the ffmpeg executable name used by builtin transcode
// tasks.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// ShellBinary returns the shell used to execute custom probes and commands.
func (c *Config) ShellBinary() string {
	return "sh"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if pathValue[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
