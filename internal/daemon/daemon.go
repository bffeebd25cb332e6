package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"omzet/internal/config"
	"omzet/internal/logging"
	"omzet/internal/monitor"
	"omzet/internal/orchestrator"
	"omzet/internal/state"
)

// Daemon coordinates the library monitors and the orchestrator and enforces
// single-instance execution through a lock file in the state directory.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *state.Store
	orch   *orchestrator.Orchestrator
	mon    *monitor.Monitor

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	StateDBPath  string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *state.Store, logger *slog.Logger, orch *orchestrator.Orchestrator, mon *monitor.Monitor) (*Daemon, error) {
	if cfg == nil || logger == nil || orch == nil || mon == nil {
		return nil, errors.New("daemon requires config, logger, orchestrator, and monitor")
	}

	lockPath := filepath.Join(cfg.Paths.StateDir, "omzetd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		orch:     orch,
		mon:      mon,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the monitors and the
// orchestrator loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another omzet daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.orch.Start(runCtx)
	}()
	d.mon.Start(runCtx)

	d.running.Store(true)
	d.logger.Info("omzet daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock. It blocks
// until the monitors and any in-flight job have wound down.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mon.Wait()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("omzet daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		LockFilePath: d.lockPath,
	}
	if d.store != nil {
		status.StateDBPath = d.store.Path()
	}
	return status
}
