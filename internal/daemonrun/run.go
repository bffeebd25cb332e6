// Package daemonrun assembles and runs the omzet daemon process: logging,
// preflight, state store, monitors, orchestrator, and signal handling. Both
// the omzetd binary and the CLI daemon command call into Run.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"omzet/internal/config"
	"omzet/internal/daemon"
	"omzet/internal/logging"
	"omzet/internal/monitor"
	"omzet/internal/orchestrator"
	"omzet/internal/preflight"
	"omzet/internal/runner"
	"omzet/internal/state"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the omzet daemon runtime loop and blocks until SIGINT or
// SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("omzet-%s.log", runID))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)

	results := preflight.RunAll(signalCtx, cfg)
	for _, result := range results {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
			continue
		}
		logger.Error("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "fix the path or install the binary, then restart"))
	}
	if !preflight.AllPassed(results) {
		return fmt.Errorf("preflight checks failed")
	}

	pidPath := filepath.Join(cfg.Paths.StateDir, "omzet.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := state.Open(cfg.Paths.StateDir)
	if err != nil {
		logger.Error("open state store", logging.Error(err))
		return err
	}
	defer store.Close()

	libraries, err := assembleLibraries(cfg)
	if err != nil {
		return err
	}

	run := runner.New(logger,
		runner.WithShell(cfg.ShellBinary()),
		runner.WithFFprobe(cfg.FFprobeBinary()),
		runner.WithFFmpeg(cfg.FFmpegBinary()))

	orch, requests := orchestrator.New(run, store, logger, orchestrator.Options{
		Tick:          time.Duration(cfg.Orchestrator.PollInterval) * time.Second,
		RequestBuffer: cfg.Monitor.RequestBuffer,
		DedupInFlight: cfg.Orchestrator.DedupInFlight,
	})
	mon := monitor.New(libraries, requests,
		time.Duration(cfg.Monitor.ScanInterval)*time.Second, logger)

	d, err := daemon.New(cfg, store, logger, orch, mon)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("omzet daemon shutting down")
	return nil
}

// assembleLibraries resolves each configured library into a monitor entry
// with its workflow fully expanded.
func assembleLibraries(cfg *config.Config) ([]monitor.Library, error) {
	names := make([]string, 0, len(cfg.Libraries))
	for name := range cfg.Libraries {
		names = append(names, name)
	}
	sort.Strings(names)

	libraries := make([]monitor.Library, 0, len(names))
	for _, name := range names {
		library := cfg.Libraries[name]
		wf, err := cfg.ResolveWorkflow(library.Workflow)
		if err != nil {
			return nil, fmt.Errorf("library %q: %w", name, err)
		}
		libraries = append(libraries, monitor.Library{
			Name:      name,
			Directory: library.Directory,
			Workflow:  wf,
		})
	}
	return libraries, nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	shell := cfg.ShellBinary()
	ffmpeg := cfg.FFmpegBinary()
	ffprobe := cfg.FFprobeBinary()
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("shell_available", binaryAvailable(shell)),
		logging.String("shell_binary", shell),
		logging.Bool("ffmpeg_available", binaryAvailable(ffmpeg)),
		logging.String("ffmpeg_binary", ffmpeg),
		logging.Bool("ffprobe_available", binaryAvailable(ffprobe)),
		logging.String("ffprobe_binary", ffprobe),
		logging.Int("libraries", len(cfg.Libraries)),
		logging.Int("workflows", len(cfg.Workflows)),
	)
}

func binaryAvailable(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
